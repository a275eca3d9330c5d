// Package event 实体变更事件总线。
//
// 写操作提交后发布 EntityChanged，缓存失效与审计等订阅者在各自的 goroutine 中独立消费：
// 订阅者的错误或 panic 只记录日志，不影响请求响应，也不影响其他订阅者。
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EntityChanged 实体变更事件
type EntityChanged struct {
	EntityType string
	EntityID   string
	YearID     string
	Action     string // create | edit | delete | sort
	Actor      string
	ActorType  string
	Payload    any    // 审计载荷，序列化为 JSON
	RequestID  string // 触发变更的请求追踪 ID
	OccurredAt time.Time
}

// Handler 订阅者处理函数
type Handler func(ctx context.Context, evt EntityChanged) error

type subscriber struct {
	name    string
	handler Handler
}

// DefaultTimeout 单个订阅者处理超时
const DefaultTimeout = 5 * time.Second

// Bus 进程内事件总线
type Bus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	wg          sync.WaitGroup
	timeout     time.Duration
	logger      *zap.Logger
}

// NewBus 创建事件总线
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{timeout: DefaultTimeout, logger: logger}
}

// Subscribe 注册订阅者
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscriber{name: name, handler: h})
}

// Publish 异步投递事件给所有订阅者，立即返回
func (b *Bus) Publish(ctx context.Context, evt EntityChanged) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	// 投递不随请求取消
	base := context.WithoutCancel(ctx)

	b.mu.RLock()
	subs := make([]subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, s := range subs {
		b.wg.Add(1)
		go b.deliver(base, s, evt)
	}
}

func (b *Bus) deliver(ctx context.Context, s subscriber, evt EntityChanged) {
	defer b.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	fields := []zap.Field{
		zap.String("subscriber", s.name),
		zap.String("entity_type", evt.EntityType),
		zap.String("entity_id", evt.EntityID),
		zap.String("action", evt.Action),
		zap.String("request_id", evt.RequestID),
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("事件订阅者 panic", append(fields, zap.String("panic", fmt.Sprint(r)))...)
		}
	}()

	if err := s.handler(ctx, evt); err != nil {
		b.logger.Warn("事件订阅者处理失败", append(fields, zap.Error(err))...)
	}
}

// Wait 等待所有在途投递完成
func (b *Bus) Wait() {
	b.wg.Wait()
}
