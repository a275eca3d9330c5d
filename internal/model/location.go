package model

import "gorm.io/gorm"

// Location 地点表：对应 locations，隶属于唯一的 Year
type Location struct {
	LocationID   string  `gorm:"type:uuid;primaryKey"        json:"location_id"`
	YearID       string  `gorm:"type:uuid;not null;index"    json:"year_id"`
	Name         string  `gorm:"type:varchar(200);not null"  json:"name"`
	Slug         string  `gorm:"type:varchar(120);not null"  json:"slug"`
	Summary      *string `gorm:"type:text"                   json:"summary,omitempty"`
	CoverAssetID *string `gorm:"type:uuid"                   json:"cover_asset_id,omitempty"`
	OrderIndex   string  `gorm:"type:varchar(64);not null"   json:"order_index"`
	// CollectionCount 只读派生列：挂在该地点下的合集数量
	CollectionCount int64 `gorm:"->;-:migration" json:"collection_count"`
	BaseModel
}

// TableName 指定表名
func (Location) TableName() string { return "locations" }

// BeforeCreate 未指定主键时生成 UUID
func (l *Location) BeforeCreate(*gorm.DB) error {
	if l.LocationID == "" {
		l.LocationID = NewID()
	}
	return nil
}
