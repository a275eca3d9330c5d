package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"catalog-cms/internal/model"
)

// CollectionRepository 合集数据访问接口，结构与 LocationRepository 一致
type CollectionRepository interface {
	Create(ctx context.Context, col *model.Collection) error
	GetByID(ctx context.Context, yearID, id string) (*model.Collection, error)
	FindByID(ctx context.Context, id string) (*model.Collection, error)
	FindBySlug(ctx context.Context, yearID, slug string) (*model.Collection, error)
	ListByYear(ctx context.Context, yearID string) ([]model.Collection, error)
	ListOrderIndexes(ctx context.Context, yearID string) ([]string, error)
	Update(ctx context.Context, col *model.Collection) error
	// Delete 同一事务内删除合集及其资源关联
	Delete(ctx context.Context, yearID, id string) error
	Reorder(ctx context.Context, yearID string, indexes map[string]string, actorID string) error
}

const collectionCountSelect = "collections.*, " +
	"(SELECT COUNT(*) FROM collection_assets ca WHERE ca.collection_id = collections.collection_id) AS asset_count"

type collectionRepo struct {
	db *gorm.DB
}

// NewCollectionRepo 创建 CollectionRepository 实例
func NewCollectionRepo(db *gorm.DB) CollectionRepository {
	return &collectionRepo{db: db}
}

func (r *collectionRepo) Create(ctx context.Context, col *model.Collection) error {
	return translate(r.db.WithContext(ctx).Create(col).Error)
}

func (r *collectionRepo) GetByID(ctx context.Context, yearID, id string) (*model.Collection, error) {
	return r.first(ctx, "collections.collection_id = ? AND collections.year_id = ?", id, yearID)
}

func (r *collectionRepo) FindByID(ctx context.Context, id string) (*model.Collection, error) {
	return r.first(ctx, "collections.collection_id = ?", id)
}

func (r *collectionRepo) FindBySlug(ctx context.Context, yearID, slug string) (*model.Collection, error) {
	return r.first(ctx, "collections.year_id = ? AND collections.slug = ?", yearID, slug)
}

func (r *collectionRepo) first(ctx context.Context, query string, args ...interface{}) (*model.Collection, error) {
	var col model.Collection
	err := r.db.WithContext(ctx).
		Select(collectionCountSelect).
		Where(query, args...).
		Take(&col).Error
	if err != nil {
		return nil, translate(err)
	}
	col.NormalizeTimes()
	return &col, nil
}

func (r *collectionRepo) ListByYear(ctx context.Context, yearID string) ([]model.Collection, error) {
	var cols []model.Collection
	err := r.db.WithContext(ctx).
		Select(collectionCountSelect).
		Where("collections.year_id = ?", yearID).
		Find(&cols).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range cols {
		cols[i].NormalizeTimes()
	}
	return cols, nil
}

func (r *collectionRepo) ListOrderIndexes(ctx context.Context, yearID string) ([]string, error) {
	var indexes []string
	err := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("year_id = ?", yearID).
		Pluck("order_index", &indexes).Error
	return indexes, translate(err)
}

func (r *collectionRepo) Update(ctx context.Context, col *model.Collection) error {
	col.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&model.Collection{}).
		Where("collection_id = ? AND year_id = ?", col.CollectionID, col.YearID).
		Updates(map[string]interface{}{
			"location_id":    col.LocationID,
			"slug":           col.Slug,
			"title":          col.Title,
			"summary":        col.Summary,
			"cover_asset_id": col.CoverAssetID,
			"status":         col.Status,
			"order_index":    col.OrderIndex,
			"updated_at":     col.UpdatedAt,
			"updated_by":     col.UpdatedBy,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *collectionRepo) Delete(ctx context.Context, yearID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&model.CollectionAsset{}).Error; err != nil {
			return translate(err)
		}
		res := tx.Where("collection_id = ? AND year_id = ?", id, yearID).Delete(&model.Collection{})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *collectionRepo) Reorder(ctx context.Context, yearID string, indexes map[string]string, actorID string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, idx := range indexes {
			res := tx.Model(&model.Collection{}).
				Where("collection_id = ? AND year_id = ?", id, yearID).
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
