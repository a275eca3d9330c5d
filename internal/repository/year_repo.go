package repository

import (
	"context"

	"gorm.io/gorm"

	"catalog-cms/internal/model"
)

// YearRepository 年份数据访问接口
type YearRepository interface {
	Create(ctx context.Context, year *model.Year) error
	GetByID(ctx context.Context, id string) (*model.Year, error)
	List(ctx context.Context) ([]model.Year, error)
	ListOrderIndexes(ctx context.Context) ([]string, error)
}

type yearRepo struct {
	db *gorm.DB
}

// NewYearRepo 创建 YearRepository 实例
func NewYearRepo(db *gorm.DB) YearRepository {
	return &yearRepo{db: db}
}

func (r *yearRepo) Create(ctx context.Context, year *model.Year) error {
	return translate(r.db.WithContext(ctx).Create(year).Error)
}

func (r *yearRepo) GetByID(ctx context.Context, id string) (*model.Year, error) {
	var year model.Year
	err := r.db.WithContext(ctx).
		Where("year_id = ?", id).
		First(&year).Error
	if err != nil {
		return nil, translate(err)
	}
	year.NormalizeTimes()
	return &year, nil
}

func (r *yearRepo) List(ctx context.Context) ([]model.Year, error) {
	var years []model.Year
	if err := r.db.WithContext(ctx).Find(&years).Error; err != nil {
		return nil, translate(err)
	}
	for i := range years {
		years[i].NormalizeTimes()
	}
	return years, nil
}

func (r *yearRepo) ListOrderIndexes(ctx context.Context) ([]string, error) {
	var indexes []string
	err := r.db.WithContext(ctx).
		Model(&model.Year{}).
		Pluck("order_index", &indexes).Error
	return indexes, translate(err)
}
