package model

import (
	"time"

	"gorm.io/gorm"
)

type Brand struct {
	ID          uint           `gorm:"primarykey" json:"Id"`
	Name        string         `gorm:"not null" json:"Name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"Slug"`
	Country     string         `json:"Country"`
	LogoURL     string         `json:"LogoUrl"`
	Description string         `gorm:"type:text" json:"Description"`
	CreatedAt   time.Time      `json:"CreatedAt"`
	UpdatedAt   time.Time      `json:"UpdatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Brand) TableName() string {
	return "brands"
}

type Category struct {
	ID          uint           `gorm:"primarykey" json:"Id"`
	Name        string         `gorm:"not null" json:"Name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"Slug"`
	Description string         `gorm:"type:text" json:"Description"`
	CreatedAt   time.Time      `json:"CreatedAt"`
	UpdatedAt   time.Time      `json:"UpdatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
