package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"catalog-cms/internal/event"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
)

// 请求未携带操作者时的默认值
const (
	AnonymousActor   = "anonymous"
	DefaultActorType = "editor"
)

// AuditRecorder 订阅变更事件并追加审计日志，失败不向调用方传播
type AuditRecorder struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditRecorder 创建审计订阅者
func NewAuditRecorder(repo repository.AuditRepository, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, logger: logger}
}

// Handle 实现 event.Handler
func (r *AuditRecorder) Handle(ctx context.Context, evt event.EntityChanged) error {
	payload := ""
	if evt.Payload != nil {
		raw, err := json.Marshal(evt.Payload)
		if err != nil {
			// 载荷无法序列化时仍记录动作本身
			r.logger.Warn("审计载荷序列化失败", zap.String("entity_id", evt.EntityID), zap.Error(err))
		} else {
			payload = string(raw)
		}
	}

	entry := &model.AuditLog{
		Actor:      evt.Actor,
		ActorType:  evt.ActorType,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		Action:     evt.Action,
		Payload:    payload,
		RequestID:  evt.RequestID,
		OccurredAt: evt.OccurredAt.UTC(),
	}
	if entry.Actor == "" {
		entry.Actor = AnonymousActor
	}
	if entry.ActorType == "" {
		entry.ActorType = DefaultActorType
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("写入审计日志失败 (request_id=%s): %w", evt.RequestID, err)
	}
	return nil
}
