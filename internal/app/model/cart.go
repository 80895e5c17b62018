package model

import (
	"time"
)

type CartItem struct {
	ID                 uint      `gorm:"primarykey" json:"Id"`
	UserID             uint      `gorm:"not null;index" json:"UserId"`
	ProductID          uint      `gorm:"not null;index" json:"ProductId"`
	ProductVariationID *uint     `gorm:"index" json:"ProductVariationId,omitempty"`
	Quantity           int       `gorm:"not null;default:1" json:"Quantity"`
	Selected           bool      `gorm:"default:true" json:"Selected"` // only selected lines are totalled and ordered
	CreatedAt          time.Time `json:"CreatedAt"`
	UpdatedAt          time.Time `json:"UpdatedAt"`

	// Relationships
	User             User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Product          Product           `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"Product,omitempty"`
	ProductVariation *ProductVariation `gorm:"foreignKey:ProductVariationID;constraint:OnDelete:CASCADE" json:"ProductVariation,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// UnitPrices returns the list and effective unit price of the line
func (c CartItem) UnitPrices() (listPrice, effective float64) {
	if c.ProductVariation != nil {
		return c.ProductVariation.Price, c.ProductVariation.EffectivePrice()
	}
	return c.Product.Price, c.Product.EffectivePrice()
}
