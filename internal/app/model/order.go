package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodMomo    PaymentMethod = "momo"
	PaymentMethodVnPay   PaymentMethod = "vnpay"
	PaymentMethodZaloPay PaymentMethod = "zalopay"
)

// IsOnline reports whether the method settles through a payment gateway
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodMomo || m == PaymentMethodVnPay || m == PaymentMethodZaloPay
}

type Order struct {
	ID              uint           `gorm:"primarykey" json:"Id"`
	UserID          uint           `gorm:"not null;index" json:"UserId"`
	PromotionID     *uint          `gorm:"index" json:"PromotionId,omitempty"`
	TotalPrice      float64        `gorm:"not null" json:"TotalPrice"`     // sum of list prices
	TotalPriceSale  float64        `gorm:"not null" json:"TotalPriceSale"` // amount charged, never above TotalPrice
	DiscountAmount  float64        `gorm:"default:0" json:"DiscountAmount"`
	ShippingAddress string         `gorm:"type:text" json:"ShippingAddress"`
	Phone           string         `json:"Phone"`
	Note            string         `gorm:"type:text" json:"Note"`
	Status          OrderStatus    `gorm:"type:varchar(20);default:'pending';index" json:"Status"`
	PaymentMethod   PaymentMethod  `gorm:"type:varchar(20);default:'cod'" json:"PaymentMethod"`
	PaymentStatus   PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"PaymentStatus"`
	IsPaid          bool           `gorm:"default:false;index" json:"IsPaid"`
	PaidAt          *time.Time     `json:"PaidAt,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"CreatedAt"`
	UpdatedAt       time.Time      `json:"UpdatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User          User           `gorm:"foreignKey:UserID" json:"User,omitempty"`
	Promotion     *Promotion     `gorm:"foreignKey:PromotionID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"Promotion,omitempty"`
	OrderProducts []OrderProduct `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"OrderProducts,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderProduct struct {
	ID                 uint      `gorm:"primarykey" json:"Id"`
	OrderID            uint      `gorm:"not null;index" json:"OrderId"`
	ProductID          uint      `gorm:"not null;index" json:"ProductId"`
	ProductVariationID *uint     `gorm:"index" json:"ProductVariationId,omitempty"`
	Quantity           int       `gorm:"not null" json:"Quantity"`
	UnitPrice          float64   `gorm:"not null" json:"UnitPrice"` // list price snapshot
	SalePrice          float64   `gorm:"not null" json:"SalePrice"` // effective price snapshot
	CreatedAt          time.Time `json:"CreatedAt"`

	Product          Product           `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"Product,omitempty"`
	ProductVariation *ProductVariation `gorm:"foreignKey:ProductVariationID;constraint:OnDelete:SET NULL" json:"ProductVariation,omitempty"`
}

func (OrderProduct) TableName() string {
	return "order_products"
}
