package model

import (
	"time"
)

type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"Id"`
	Email     string    `gorm:"size:255;not null;index" json:"Email"`
	Token     string    `gorm:"size:255;not null;unique;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"ExpiresAt"`
	Used      bool      `gorm:"default:false" json:"Used"`
	CreatedAt time.Time `json:"CreatedAt"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

// Usable reports whether the token can still reset a password at the given time
func (p *PasswordReset) Usable(now time.Time) bool {
	return !p.Used && now.Before(p.ExpiresAt)
}
