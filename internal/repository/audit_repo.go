package repository

import (
	"context"

	"gorm.io/gorm"

	"catalog-cms/internal/model"
)

// AuditFilter 审计日志查询条件，空字段表示不过滤
type AuditFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}

// AuditRepository 审计日志数据访问接口（只追加）
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditLog) error
	// List 按发生时间倒序
	List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, error)
}

// DefaultAuditLimit 审计查询默认条数
const DefaultAuditLimit = 100

type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Append(ctx context.Context, entry *model.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *auditRepo) List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, error) {
	db := r.db.WithContext(ctx)
	if filter.EntityType != "" {
		db = db.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		db = db.Where("entity_id = ?", filter.EntityID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultAuditLimit
	}

	var entries []model.AuditLog
	if err := db.Order("occurred_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, translate(err)
	}
	for i := range entries {
		entries[i].OccurredAt = entries[i].OccurredAt.UTC()
	}
	return entries, nil
}
