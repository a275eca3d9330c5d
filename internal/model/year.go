package model

import "gorm.io/gorm"

// Year 年份表：对应 years，目录树的根
type Year struct {
	YearID     string `gorm:"type:uuid;primaryKey"                      json:"year_id"`
	Label      string `gorm:"type:varchar(40);not null"                 json:"label"`
	OrderIndex string `gorm:"type:varchar(64);not null"                 json:"order_index"`
	Status     string `gorm:"type:varchar(20);not null;default:'draft'" json:"status"` // draft | published
	BaseModel
}

// TableName 指定表名
func (Year) TableName() string { return "years" }

// BeforeCreate 未指定主键时生成 UUID
func (y *Year) BeforeCreate(*gorm.DB) error {
	if y.YearID == "" {
		y.YearID = NewID()
	}
	return nil
}
