package model

import (
	"time"
)

type RatingFeedback struct {
	ID        uint      `gorm:"primarykey" json:"Id"`
	UserID    uint      `gorm:"uniqueIndex:idx_rating_user_product;not null" json:"UserId"`
	ProductID uint      `gorm:"uniqueIndex:idx_rating_user_product;index;not null" json:"ProductId"`
	Rating    int       `gorm:"not null" json:"Rating"` // 1..5
	Comment   string    `gorm:"type:text" json:"Comment"`
	IsVisible bool      `gorm:"default:true" json:"IsVisible"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`

	User    User                  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"User,omitempty"`
	Product Product               `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Images  []RatingFeedbackImage `gorm:"foreignKey:RatingFeedbackID;constraint:OnDelete:CASCADE" json:"Images,omitempty"`
}

func (RatingFeedback) TableName() string {
	return "rating_feedbacks"
}

type RatingFeedbackImage struct {
	ID               uint      `gorm:"primarykey" json:"Id"`
	RatingFeedbackID uint      `gorm:"index;not null" json:"RatingFeedbackId"`
	URL              string    `gorm:"not null" json:"Url"`
	CreatedAt        time.Time `json:"CreatedAt"`
}

func (RatingFeedbackImage) TableName() string {
	return "rating_feedback_images"
}
