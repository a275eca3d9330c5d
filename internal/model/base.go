package model

import (
	"time"

	"github.com/google/uuid"
)

// ── 状态枚举 ──

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// ValidStatus 是否为合法的发布状态
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null"           json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(100)"  json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null"           json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(100)"  json:"updated_by,omitempty"`
}

// Stamp 设置创建/更新人
func (b *BaseModel) Stamp(actorID string, creating bool) {
	if creating {
		b.CreatedBy = &actorID
	}
	b.UpdatedBy = &actorID
}

// NormalizeTimes 将时间统一为 UTC，两种存储后端读出后都会调用
func (b *BaseModel) NormalizeTimes() {
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
}

// NewID 生成实体 UUID
func NewID() string {
	return uuid.NewString()
}

// Actor 发起变更的操作者
type Actor struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"` // 请求追踪 ID，随事件写入审计日志
}
