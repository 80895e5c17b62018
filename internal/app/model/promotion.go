package model

import (
	"time"
)

type PromotionType string

const (
	PromotionTypeProduct PromotionType = "Product" // discount on linked products
	PromotionTypeOrder   PromotionType = "Order"   // discount on the whole order
)

// Promotion rows are hard deleted; orders referencing one keep their row with PromotionID nulled.
type Promotion struct {
	ID                uint          `gorm:"primarykey" json:"Id"`
	Code              string        `gorm:"uniqueIndex;not null" json:"Code"`
	Name              string        `gorm:"not null" json:"Name"`
	Description       string        `gorm:"type:text" json:"Description"`
	Type              PromotionType `gorm:"type:varchar(20);not null;index" json:"Type"`
	DiscountPercent   float64       `gorm:"not null" json:"DiscountPercent"`
	MaxDiscountAmount float64       `gorm:"default:0" json:"MaxDiscountAmount"` // 0 = uncapped
	MinOrderAmount    float64       `gorm:"default:0" json:"MinOrderAmount"`
	StartDate         time.Time     `gorm:"not null" json:"StartDate"`
	EndDate           time.Time     `gorm:"not null" json:"EndDate"`
	IsActive          bool          `gorm:"default:true;index" json:"IsActive"`
	UsageLimit        int           `gorm:"default:0" json:"UsageLimit"` // 0 = unlimited
	UsedCount         int           `gorm:"default:0" json:"UsedCount"`
	CreatedAt         time.Time     `json:"CreatedAt"`
	UpdatedAt         time.Time     `json:"UpdatedAt"`

	Products  []PromotionProduct  `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE" json:"Products,omitempty"`
	Customers []PromotionCustomer `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE" json:"Customers,omitempty"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// IsRunning reports whether the promotion can be applied at the given time
func (p *Promotion) IsRunning(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	return p.UsageLimit == 0 || p.UsedCount < p.UsageLimit
}

type PromotionProduct struct {
	ID          uint `gorm:"primarykey" json:"Id"`
	PromotionID uint `gorm:"uniqueIndex:idx_promotion_product;not null" json:"PromotionId"`
	ProductID   uint `gorm:"uniqueIndex:idx_promotion_product;not null" json:"ProductId"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"Product,omitempty"`
}

func (PromotionProduct) TableName() string {
	return "promotion_products"
}

type PromotionCustomer struct {
	ID          uint `gorm:"primarykey" json:"Id"`
	PromotionID uint `gorm:"uniqueIndex:idx_promotion_customer;not null" json:"PromotionId"`
	UserID      uint `gorm:"uniqueIndex:idx_promotion_customer;not null" json:"UserId"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PromotionCustomer) TableName() string {
	return "promotion_customers"
}
