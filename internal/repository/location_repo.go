package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"catalog-cms/internal/model"
)

// LocationRepository 地点数据访问接口
// 查询结果均带有实时的 CollectionCount；排序由上层按解析后的排序标记完成
type LocationRepository interface {
	Create(ctx context.Context, loc *model.Location) error
	// GetByID 地点不存在或不属于该年份时返回 ErrNotFound
	GetByID(ctx context.Context, yearID, id string) (*model.Location, error)
	// FindByID 不限定年份
	FindByID(ctx context.Context, id string) (*model.Location, error)
	FindBySlug(ctx context.Context, yearID, slug string) (*model.Location, error)
	ListByYear(ctx context.Context, yearID string) ([]model.Location, error)
	ListOrderIndexes(ctx context.Context, yearID string) ([]string, error)
	Update(ctx context.Context, loc *model.Location) error
	Delete(ctx context.Context, yearID, id string) error
	// Reorder 在单个事务内写入 id → 排序标记，任一失败整体回滚
	Reorder(ctx context.Context, yearID string, indexes map[string]string, actorID string) error
}

const locationCountSelect = "locations.*, " +
	"(SELECT COUNT(*) FROM collections c WHERE c.location_id = locations.location_id) AS collection_count"

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepo 创建 LocationRepository 实例
func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, loc *model.Location) error {
	return translate(r.db.WithContext(ctx).Create(loc).Error)
}

func (r *locationRepo) GetByID(ctx context.Context, yearID, id string) (*model.Location, error) {
	return r.first(ctx, "locations.location_id = ? AND locations.year_id = ?", id, yearID)
}

func (r *locationRepo) FindByID(ctx context.Context, id string) (*model.Location, error) {
	return r.first(ctx, "locations.location_id = ?", id)
}

func (r *locationRepo) FindBySlug(ctx context.Context, yearID, slug string) (*model.Location, error) {
	return r.first(ctx, "locations.year_id = ? AND locations.slug = ?", yearID, slug)
}

func (r *locationRepo) first(ctx context.Context, query string, args ...interface{}) (*model.Location, error) {
	var loc model.Location
	err := r.db.WithContext(ctx).
		Select(locationCountSelect).
		Where(query, args...).
		Take(&loc).Error
	if err != nil {
		return nil, translate(err)
	}
	loc.NormalizeTimes()
	return &loc, nil
}

func (r *locationRepo) ListByYear(ctx context.Context, yearID string) ([]model.Location, error) {
	var locations []model.Location
	err := r.db.WithContext(ctx).
		Select(locationCountSelect).
		Where("locations.year_id = ?", yearID).
		Find(&locations).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range locations {
		locations[i].NormalizeTimes()
	}
	return locations, nil
}

func (r *locationRepo) ListOrderIndexes(ctx context.Context, yearID string) ([]string, error) {
	var indexes []string
	err := r.db.WithContext(ctx).
		Model(&model.Location{}).
		Where("year_id = ?", yearID).
		Pluck("order_index", &indexes).Error
	return indexes, translate(err)
}

func (r *locationRepo) Update(ctx context.Context, loc *model.Location) error {
	loc.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&model.Location{}).
		Where("location_id = ? AND year_id = ?", loc.LocationID, loc.YearID).
		Updates(map[string]interface{}{
			"name":           loc.Name,
			"slug":           loc.Slug,
			"summary":        loc.Summary,
			"cover_asset_id": loc.CoverAssetID,
			"order_index":    loc.OrderIndex,
			"updated_at":     loc.UpdatedAt,
			"updated_by":     loc.UpdatedBy,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *locationRepo) Delete(ctx context.Context, yearID, id string) error {
	res := r.db.WithContext(ctx).
		Where("location_id = ? AND year_id = ?", id, yearID).
		Delete(&model.Location{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *locationRepo) Reorder(ctx context.Context, yearID string, indexes map[string]string, actorID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, idx := range indexes {
			res := tx.Model(&model.Location{}).
				Where("location_id = ? AND year_id = ?", id, yearID).
				Updates(map[string]interface{}{
					"order_index": idx,
					"updated_at":  now,
					"updated_by":  actorID,
				})
			if res.Error != nil {
				return translate(res.Error)
			}
			if res.RowsAffected != 1 {
				return ErrNotFound
			}
		}
		return nil
	})
}
