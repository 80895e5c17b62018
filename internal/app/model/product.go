package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID            uint           `gorm:"primarykey" json:"Id"`
	Name          string         `gorm:"not null" json:"Name"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"Slug"`
	Description   string         `gorm:"type:text" json:"Description"`
	BrandID       *uint          `gorm:"index" json:"BrandId,omitempty"`
	CategoryID    *uint          `gorm:"index" json:"CategoryId,omitempty"`
	Price         float64        `gorm:"not null" json:"Price"`      // list price
	SalePrice     float64        `gorm:"default:0" json:"SalePrice"` // 0 means not on sale
	StockQuantity int            `gorm:"default:0" json:"StockQuantity"`
	IsActive      bool           `gorm:"default:true;index" json:"IsActive"`
	AverageRating float64        `gorm:"default:0" json:"AverageRating"`
	RatingCount   int            `gorm:"default:0" json:"RatingCount"`
	CreatedAt     time.Time      `json:"CreatedAt"`
	UpdatedAt     time.Time      `json:"UpdatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Brand             *Brand                    `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"Brand,omitempty"`
	Category          *Category                 `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"Category,omitempty"`
	Variations        []ProductVariation        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"Variations,omitempty"`
	Pictures          []ProductPicture          `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"Pictures,omitempty"`
	Usages            []ProductUsage            `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"Usages,omitempty"`
	SkinTypes         []ProductForSkinType      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"SkinTypes,omitempty"`
	MainIngredients   []ProductMainIngredient   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"MainIngredients,omitempty"`
	DetailIngredients []ProductDetailIngredient `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"DetailIngredients,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the sale price when one is set, the list price otherwise
func (p Product) EffectivePrice() float64 {
	return effectivePrice(p.Price, p.SalePrice)
}

type ProductVariation struct {
	ID            uint           `gorm:"primarykey" json:"Id"`
	ProductID     uint           `gorm:"index;not null" json:"ProductId"`
	Name          string         `gorm:"not null" json:"Name"` // e.g. "50ml"
	SKU           string         `gorm:"index" json:"Sku"`
	Price         float64        `gorm:"not null" json:"Price"`
	SalePrice     float64        `gorm:"default:0" json:"SalePrice"`
	StockQuantity int            `gorm:"default:0" json:"StockQuantity"`
	IsActive      bool           `gorm:"default:true" json:"IsActive"`
	CreatedAt     time.Time      `json:"CreatedAt"`
	UpdatedAt     time.Time      `json:"UpdatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProductVariation) TableName() string {
	return "product_variations"
}

func (v ProductVariation) EffectivePrice() float64 {
	return effectivePrice(v.Price, v.SalePrice)
}

type ProductPicture struct {
	ID        uint      `gorm:"primarykey" json:"Id"`
	ProductID uint      `gorm:"index;not null" json:"ProductId"`
	URL       string    `gorm:"not null" json:"Url"`
	SortOrder int       `gorm:"default:0" json:"SortOrder"`
	CreatedAt time.Time `json:"CreatedAt"`
}

func (ProductPicture) TableName() string {
	return "product_pictures"
}

type ProductUsage struct {
	ID          uint   `gorm:"primarykey" json:"Id"`
	ProductID   uint   `gorm:"index;not null" json:"ProductId"`
	Instruction string `gorm:"type:text;not null" json:"Instruction"`
	SortOrder   int    `gorm:"default:0" json:"SortOrder"`
}

func (ProductUsage) TableName() string {
	return "product_usages"
}

type ProductForSkinType struct {
	ID         uint `gorm:"primarykey" json:"Id"`
	ProductID  uint `gorm:"uniqueIndex:idx_product_skin_type;not null" json:"ProductId"`
	SkinTypeID uint `gorm:"uniqueIndex:idx_product_skin_type;not null" json:"SkinTypeId"`

	SkinType SkinType `gorm:"foreignKey:SkinTypeID;constraint:OnDelete:CASCADE" json:"SkinType,omitempty"`
}

func (ProductForSkinType) TableName() string {
	return "product_for_skin_types"
}

type ProductMainIngredient struct {
	ID          uint   `gorm:"primarykey" json:"Id"`
	ProductID   uint   `gorm:"index;not null" json:"ProductId"`
	Name        string `gorm:"not null" json:"Name"`
	Description string `gorm:"type:text" json:"Description"`
}

func (ProductMainIngredient) TableName() string {
	return "product_main_ingredients"
}

type ProductDetailIngredient struct {
	ID         uint    `gorm:"primarykey" json:"Id"`
	ProductID  uint    `gorm:"index;not null" json:"ProductId"`
	Name       string  `gorm:"not null" json:"Name"`
	Percentage float64 `gorm:"default:0" json:"Percentage"`
}

func (ProductDetailIngredient) TableName() string {
	return "product_detail_ingredients"
}

func effectivePrice(price, salePrice float64) float64 {
	if salePrice > 0 {
		return salePrice
	}
	return price
}
