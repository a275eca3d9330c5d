package model

import (
	"time"

	"gorm.io/gorm"
)

// ── 审计动作 ──

const (
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionSort   = "sort"
)

// ── 实体类型 ──

const (
	EntityYear       = "year"
	EntityLocation   = "location"
	EntityCollection = "collection"
)

// AuditLog 审计日志表：对应 audit_logs，只追加不修改
type AuditLog struct {
	ID         string    `gorm:"type:uuid;primaryKey"       json:"id"`
	Actor      string    `gorm:"type:varchar(100);not null" json:"actor"`
	ActorType  string    `gorm:"type:varchar(40);not null"  json:"actor_type"`
	EntityType string    `gorm:"type:varchar(40);not null"  json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(64);not null"  json:"entity_id"`
	Action     string    `gorm:"type:varchar(20);not null"  json:"action"`
	Payload    string    `gorm:"type:text"                  json:"payload"` // JSON 文本
	RequestID  string    `gorm:"type:varchar(64);not null"  json:"request_id"`
	OccurredAt time.Time `gorm:"not null"                   json:"occurred_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }

// BeforeCreate 未指定主键时生成 UUID
func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
