package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalog-cms/config"
)

// Client Redis 客户端封装
// 用于派生读缓存（按标签批量失效）与写操作限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Wrap 基于已有连接构造 Client（测试中配合 miniredis 使用）
func Wrap(rdb *goredis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── 标签缓存 ──

const (
	cachePrefix   = "catalog:cache:"
	tagPrefix     = "catalog:tag:"
	versionPrefix = "catalog:ver:"

	// versionTTL 标签版本号保留时长，需远大于缓存 TTL
	versionTTL = 7 * 24 * time.Hour
)

// TagVersion 返回标签当前版本号，从未失效过的标签为 0。
// 读穿缓存在读库之前取得版本号并拼入缓存键：读库期间若发生失效，
// 版本号已递增，随后写入的旧结果落在不会再被读取的键上
func (c *Client) TagVersion(ctx context.Context, tag string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionPrefix+tag).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return v, err
}

// GetJSON 读取缓存并反序列化到 dst；未命中返回 false
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, cachePrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("缓存反序列化失败: %w", err)
	}
	return true, nil
}

// SetJSON 写入缓存并登记到各标签的成员集合，标签集合 TTL 随每次写入刷新
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("缓存序列化失败: %w", err)
	}

	fullKey := cachePrefix + key
	_, err = c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, fullKey, raw, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagPrefix+tag, fullKey)
			if ttl > 0 {
				pipe.Expire(ctx, tagPrefix+tag, ttl)
			}
		}
		return nil
	})
	return err
}

// InvalidateTags 递增各标签版本号，并删除登记在标签下的全部缓存键以及标签集合本身
func (c *Client) InvalidateTags(ctx context.Context, tags []string) error {
	var errs []error
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, tag := range tags {
			pipe.Incr(ctx, versionPrefix+tag)
			pipe.Expire(ctx, versionPrefix+tag, versionTTL)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("递增标签版本失败: %w", err))
	}
	for _, tag := range tags {
		tagKey := tagPrefix + tag
		keys, err := c.rdb.SMembers(ctx, tagKey).Result()
		if err != nil {
			errs = append(errs, fmt.Errorf("读取标签 %s 失败: %w", tag, err))
			continue
		}
		if err := c.rdb.Del(ctx, append(keys, tagKey)...).Err(); err != nil {
			errs = append(errs, fmt.Errorf("删除标签 %s 失败: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

// ── 限流 ──

const rateLimitPrefix = "catalog:ratelimit:"

// CheckRateLimit 滑动窗口限流：窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	fullKey := rateLimitPrefix + key
	windowStart := now.Add(-window).UnixNano()

	var card *goredis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, fullKey, "0", strconv.FormatInt(windowStart, 10))
		pipe.ZAdd(ctx, fullKey, goredis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		card = pipe.ZCard(ctx, fullKey)
		pipe.Expire(ctx, fullKey, window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return card.Val() <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
