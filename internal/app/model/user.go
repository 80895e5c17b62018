package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer" // storefront customer
	RoleStaff    UserRole = "staff"    // backoffice staff
	RoleAdmin    UserRole = "admin"    // backoffice administrator
)

// IsBackoffice reports whether the role may use admin endpoints
func (r UserRole) IsBackoffice() bool {
	return r == RoleStaff || r == RoleAdmin
}

type User struct {
	ID           uint           `gorm:"primarykey" json:"Id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"Email"`
	PasswordHash string         `json:"-"` // empty for OAuth-only accounts
	Name         string         `gorm:"not null" json:"Name"`
	Phone        string         `json:"Phone"`
	Address      string         `json:"Address"`
	AvatarURL    string         `json:"AvatarUrl"`
	Role         UserRole       `gorm:"type:varchar(20);default:'customer'" json:"Role"`
	GoogleID     *string        `gorm:"uniqueIndex" json:"-"`
	FacebookID   *string        `gorm:"uniqueIndex" json:"-"`
	SkinTypeID   *uint          `gorm:"index" json:"SkinTypeId,omitempty"` // latest quiz result
	IsActive     bool           `gorm:"default:true" json:"IsActive"`
	CreatedAt    time.Time      `json:"CreatedAt"`
	UpdatedAt    time.Time      `json:"UpdatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	SkinType *SkinType `gorm:"foreignKey:SkinTypeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"SkinType,omitempty"`
}

func (User) TableName() string {
	return "users"
}
