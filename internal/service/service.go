package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"catalog-cms/config"
	"catalog-cms/internal/event"
	"catalog-cms/internal/repository"
)

// Publisher 写操作提交后发布变更事件（*event.Bus 实现）
type Publisher interface {
	Publish(ctx context.Context, evt event.EntityChanged)
}

// Cache 派生读缓存（*redis.Client 实现）；为 nil 时不缓存
type Cache interface {
	TagVersion(ctx context.Context, tag string) (int64, error)
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error
	InvalidateTags(ctx context.Context, tags []string) error
}

// Deps Service 层公共依赖
type Deps struct {
	Repo      *repository.Repository
	Publisher Publisher
	Cache     Cache
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Year       YearService
	Location   LocationService
	Collection CollectionService
	Asset      AssetService
	Audit      AuditService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, pub Publisher, cache Cache, logger *zap.Logger) *Service {
	d := Deps{
		Repo:      repo,
		Publisher: pub,
		Cache:     cache,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    logger,
	}
	return &Service{
		Year:       NewYearService(d),
		Location:   NewLocationService(d),
		Collection: NewCollectionService(d),
		Asset:      NewAssetService(d),
		Audit:      NewAuditService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
