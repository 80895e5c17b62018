package model

import (
	"time"
)

type RoutinePeriod string

const (
	PeriodMorning RoutinePeriod = "morning"
	PeriodEvening RoutinePeriod = "evening"
)

func (p RoutinePeriod) Valid() bool {
	return p == PeriodMorning || p == PeriodEvening
}

type Routine struct {
	ID          uint          `gorm:"primarykey" json:"Id"`
	SkinTypeID  uint          `gorm:"index;not null" json:"SkinTypeId"`
	Period      RoutinePeriod `gorm:"type:varchar(20);not null" json:"Period"`
	Title       string        `gorm:"not null" json:"Title"`
	Description string        `gorm:"type:text" json:"Description"`
	CreatedAt   time.Time     `json:"CreatedAt"`
	UpdatedAt   time.Time     `json:"UpdatedAt"`

	SkinType SkinType      `gorm:"foreignKey:SkinTypeID;constraint:OnDelete:CASCADE" json:"SkinType,omitempty"`
	Steps    []RoutineStep `gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE" json:"Steps,omitempty"`
}

func (Routine) TableName() string {
	return "routines"
}

type RoutineStep struct {
	ID          uint      `gorm:"primarykey" json:"Id"`
	RoutineID   uint      `gorm:"index;not null" json:"RoutineId"`
	StepOrder   int       `gorm:"not null" json:"StepOrder"`
	Name        string    `gorm:"not null" json:"Name"`
	Instruction string    `gorm:"type:text" json:"Instruction"`
	CreatedAt   time.Time `json:"CreatedAt"`
	UpdatedAt   time.Time `json:"UpdatedAt"`

	Products []RoutineProduct `gorm:"foreignKey:RoutineStepID;constraint:OnDelete:CASCADE" json:"Products,omitempty"`
}

func (RoutineStep) TableName() string {
	return "routine_steps"
}

type RoutineProduct struct {
	ID            uint `gorm:"primarykey" json:"Id"`
	RoutineStepID uint `gorm:"index;not null" json:"RoutineStepId"`
	ProductID     uint `gorm:"index;not null" json:"ProductId"`

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"Product,omitempty"`
}

func (RoutineProduct) TableName() string {
	return "routine_products"
}
