package model

import (
	"time"

	"gorm.io/gorm"
)

// Asset 内容资源（照片等），上传流程不在本服务内
type Asset struct {
	AssetID    string    `gorm:"type:uuid;primaryKey"       json:"asset_id"`
	Title      string    `gorm:"type:varchar(200);not null" json:"title"`
	StorageKey string    `gorm:"type:varchar(500);not null" json:"storage_key"`
	CreatedAt  time.Time `gorm:"not null"                   json:"created_at"`
}

// TableName 指定表名
func (Asset) TableName() string { return "assets" }

// BeforeCreate 未指定主键时生成 UUID
func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.AssetID == "" {
		a.AssetID = NewID()
	}
	return nil
}

// CollectionAsset 合集与资源的关联，排序标记作用域为所属合集
type CollectionAsset struct {
	ID           string    `gorm:"type:uuid;primaryKey"       json:"id"`
	CollectionID string    `gorm:"type:uuid;not null;index"   json:"collection_id"`
	AssetID      string    `gorm:"type:uuid;not null"         json:"asset_id"`
	OrderIndex   string    `gorm:"type:varchar(64);not null"  json:"order_index"`
	CreatedAt    time.Time `gorm:"not null"                   json:"created_at"`
	Asset        *Asset    `gorm:"foreignKey:AssetID;references:AssetID" json:"asset,omitempty"`
}

// TableName 指定表名
func (CollectionAsset) TableName() string { return "collection_assets" }

// BeforeCreate 未指定主键时生成 UUID
func (ca *CollectionAsset) BeforeCreate(*gorm.DB) error {
	if ca.ID == "" {
		ca.ID = NewID()
	}
	return nil
}
