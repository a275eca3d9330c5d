package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"catalog-cms/internal/event"
)

const cacheTagCatalog = "catalog"

func yearTag(yearID string) string { return "year:" + yearID }

// listCacheKey 年份下列表的缓存键，带年份标签版本号
func listCacheKey(kind, yearID string, version int64) string {
	return fmt.Sprintf("%s:year:%s:v%d", kind, yearID, version)
}

// readThrough 按年份缓存列表读取结果；缓存不可用时直接读库。
// 版本号在读库之前取得，读库期间发生的失效会使本次写入的键作废
func readThrough[T any](ctx context.Context, d Deps, kind, yearID string, load func(ctx context.Context) (T, error)) (T, error) {
	if d.Cache == nil {
		return load(ctx)
	}

	tag := yearTag(yearID)
	version, err := d.Cache.TagVersion(ctx, tag)
	if err != nil {
		d.Logger.Warn("读取缓存版本失败", zap.String("tag", tag), zap.Error(err))
		return load(ctx)
	}

	key := listCacheKey(kind, yearID, version)
	var cached T
	hit, err := d.Cache.GetJSON(ctx, key, &cached)
	if err != nil {
		d.Logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	result, err := load(ctx)
	if err != nil {
		return result, err
	}
	if err := d.Cache.SetJSON(ctx, key, result, d.CacheTTL, cacheTagCatalog, tag); err != nil {
		d.Logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// CacheTags 一次变更需要失效的缓存标签
func CacheTags(evt event.EntityChanged) []string {
	tags := []string{cacheTagCatalog}
	if evt.YearID != "" {
		tags = append(tags, yearTag(evt.YearID))
	}
	if evt.EntityType != "" && evt.EntityID != "" {
		tags = append(tags, evt.EntityType+":"+evt.EntityID)
	}
	return tags
}

// CacheInvalidator 订阅变更事件并失效派生读缓存。
// 失败只返回给事件总线记录日志，不会影响已提交的写操作。
type CacheInvalidator struct {
	cache  Cache
	logger *zap.Logger
}

// NewCacheInvalidator cache 为 nil 时退化为空操作
func NewCacheInvalidator(cache Cache, logger *zap.Logger) *CacheInvalidator {
	if cache == nil {
		logger.Warn("缓存不可用，缓存失效订阅者将不执行任何操作")
	}
	return &CacheInvalidator{cache: cache, logger: logger}
}

// Handle 实现 event.Handler
func (c *CacheInvalidator) Handle(ctx context.Context, evt event.EntityChanged) error {
	if c.cache == nil {
		return nil
	}
	tags := CacheTags(evt)
	if err := c.cache.InvalidateTags(ctx, tags); err != nil {
		return err
	}
	c.logger.Debug("缓存已失效", zap.Strings("tags", tags))
	return nil
}
