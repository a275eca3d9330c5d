package repository

import (
	"context"

	"gorm.io/gorm"

	"catalog-cms/internal/model"
)

// AssetRepository 资源与合集关联的数据访问接口
type AssetRepository interface {
	CreateAsset(ctx context.Context, asset *model.Asset) error
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	// ListByCollection 返回关联记录（含 Asset），排序由上层完成
	ListByCollection(ctx context.Context, collectionID string) ([]model.CollectionAsset, error)
	ListOrderIndexes(ctx context.Context, collectionID string) ([]string, error)
	// Attach 重复关联返回 ErrDuplicate
	Attach(ctx context.Context, link *model.CollectionAsset) error
	Detach(ctx context.Context, collectionID, assetID string) error
	// Reorder 在单个事务内写入 assetID → 排序标记
	Reorder(ctx context.Context, collectionID string, indexes map[string]string) error
}

type assetRepo struct {
	db *gorm.DB
}

// NewAssetRepo 创建 AssetRepository 实例
func NewAssetRepo(db *gorm.DB) AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) CreateAsset(ctx context.Context, asset *model.Asset) error {
	return translate(r.db.WithContext(ctx).Create(asset).Error)
}

func (r *assetRepo) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var asset model.Asset
	if err := r.db.WithContext(ctx).Where("asset_id = ?", id).Take(&asset).Error; err != nil {
		return nil, translate(err)
	}
	asset.CreatedAt = asset.CreatedAt.UTC()
	return &asset, nil
}

func (r *assetRepo) ListByCollection(ctx context.Context, collectionID string) ([]model.CollectionAsset, error) {
	var links []model.CollectionAsset
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("collection_id = ?", collectionID).
		Find(&links).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range links {
		links[i].CreatedAt = links[i].CreatedAt.UTC()
		if links[i].Asset != nil {
			links[i].Asset.CreatedAt = links[i].Asset.CreatedAt.UTC()
		}
	}
	return links, nil
}

func (r *assetRepo) ListOrderIndexes(ctx context.Context, collectionID string) ([]string, error) {
	var indexes []string
	err := r.db.WithContext(ctx).
		Model(&model.CollectionAsset{}).
		Where("collection_id = ?", collectionID).
		Pluck("order_index", &indexes).Error
	return indexes, translate(err)
}

func (r *assetRepo) Attach(ctx context.Context, link *model.CollectionAsset) error {
	return translate(r.db.WithContext(ctx).Omit("Asset").Create(link).Error)
}

func (r *assetRepo) Detach(ctx context.Context, collectionID, assetID string) error {
	res := r.db.WithContext(ctx).
		Where("collection_id = ? AND asset_id = ?", collectionID, assetID).
		Delete(&model.CollectionAsset{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepo) Reorder(ctx context.Context, collectionID string, indexes map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for assetID, idx := range indexes {
			res := tx.Model(&model.CollectionAsset{}).
				Where("collection_id = ? AND asset_id = ?", collectionID, assetID).
				Update("order_index", idx)
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
