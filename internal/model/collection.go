package model

import "gorm.io/gorm"

// Collection 合集表：对应 collections；slug 在年份内唯一，与地点无关
type Collection struct {
	CollectionID string  `gorm:"type:uuid;primaryKey"                      json:"collection_id"`
	YearID       string  `gorm:"type:uuid;not null;index"                  json:"year_id"`
	LocationID   *string `gorm:"type:uuid;index"                           json:"location_id,omitempty"` // 可为空：未分配地点
	Slug         string  `gorm:"type:varchar(120);not null"                json:"slug"`
	Title        string  `gorm:"type:varchar(200);not null"                json:"title"`
	Summary      *string `gorm:"type:text"                                 json:"summary,omitempty"`
	CoverAssetID *string `gorm:"type:uuid"                                 json:"cover_asset_id,omitempty"`
	Status       string  `gorm:"type:varchar(20);not null;default:'draft'" json:"status"` // draft | published
	OrderIndex   string  `gorm:"type:varchar(64);not null"                 json:"order_index"`
	// AssetCount 只读派生列
	AssetCount int64 `gorm:"->;-:migration" json:"asset_count"`
	BaseModel
}

// TableName 指定表名
func (Collection) TableName() string { return "collections" }

// BeforeCreate 未指定主键时生成 UUID
func (c *Collection) BeforeCreate(*gorm.DB) error {
	if c.CollectionID == "" {
		c.CollectionID = NewID()
	}
	return nil
}
