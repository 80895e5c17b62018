package model

import (
	"time"
)

// SkinType is a quiz outcome bucket. Buckets are matched in ascending ID order.
type SkinType struct {
	ID          uint      `gorm:"primarykey" json:"Id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"Name"`
	Description string    `gorm:"type:text" json:"Description"`
	MinScore    int       `gorm:"not null" json:"MinScore"`
	MaxScore    int       `gorm:"not null" json:"MaxScore"`
	CreatedAt   time.Time `json:"CreatedAt"`
	UpdatedAt   time.Time `json:"UpdatedAt"`
}

func (SkinType) TableName() string {
	return "skin_types"
}

// Matches reports whether score falls inside the inclusive range
func (s SkinType) Matches(score int) bool {
	return score >= s.MinScore && score <= s.MaxScore
}
