package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ── 后端无关的存储错误 ──
// 两种存储后端都必须把底层错误翻译为以下哨兵，上层只依赖这些错误做判断

var (
	ErrNotFound  = errors.New("记录不存在")
	ErrDuplicate = errors.New("唯一约束冲突")
	// ErrReferenced 删除被外键引用的记录
	ErrReferenced = errors.New("记录仍被引用")
)

// 后端标识
const (
	BackendORM       = "orm"
	BackendDirectSQL = "direct-sql"
)

// Repository 所有 Repository 的聚合入口
// 字段均为接口，调用方不感知具体后端
type Repository struct {
	Backend    string
	Year       YearRepository
	Location   LocationRepository
	Collection CollectionRepository
	Asset      AssetRepository
	Audit      AuditRepository
}

// NewRepository 创建基于 GORM 的 Repository 聚合（ORM 后端）
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Backend:    BackendORM,
		Year:       NewYearRepo(db),
		Location:   NewLocationRepo(db),
		Collection: NewCollectionRepo(db),
		Asset:      NewAssetRepo(db),
		Audit:      NewAuditRepo(db),
	}
}

// translate 将 GORM 错误翻译为后端无关的哨兵
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReferenced
	default:
		return err
	}
}
