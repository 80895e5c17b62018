package repository

import (
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(cartItem *model.CartItem) error
	FindByUserID(userID uint) ([]model.CartItem, error)
	FindSelectedByUserID(userID uint) ([]model.CartItem, error)
	FindByID(id uint) (*model.CartItem, error)
	FindLine(userID, productID uint, variationID *uint) (*model.CartItem, error)
	Update(cartItem *model.CartItem) error
	SetSelected(userID uint, itemIDs []uint, selected bool) error
	Delete(id uint) error
	DeleteByUserID(userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) withProducts(db *gorm.DB) *gorm.DB {
	return db.Preload("Product").Preload("Product.Pictures", func(pdb *gorm.DB) *gorm.DB {
		return pdb.Order("product_pictures.sort_order ASC")
	}).Preload("ProductVariation")
}

func (r *cartRepository) Create(cartItem *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"user_id":      cartItem.UserID,
		"product_id":   cartItem.ProductID,
		"variation_id": cartItem.ProductVariationID,
		"quantity":     cartItem.Quantity,
	})

	if err := r.db.Omit("User", "Product", "ProductVariation").Create(cartItem).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"user_id":    cartItem.UserID,
			"product_id": cartItem.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindByUserID(userID uint) ([]model.CartItem, error) {
	logger.Debug("Finding cart items by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cartItems []model.CartItem
	if err := r.withProducts(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cartItems).Error; err != nil {
		logger.Error("Failed to find cart items by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cartItems, nil
}

func (r *cartRepository) FindSelectedByUserID(userID uint) ([]model.CartItem, error) {
	var cartItems []model.CartItem
	if err := r.withProducts(r.db).
		Where("user_id = ? AND selected = ?", userID, true).
		Order("created_at ASC").
		Find(&cartItems).Error; err != nil {
		logger.Error("Failed to find selected cart items in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cartItems, nil
}

func (r *cartRepository) FindByID(id uint) (*model.CartItem, error) {
	var cartItem model.CartItem
	if err := r.withProducts(r.db).First(&cartItem, id).Error; err != nil {
		return nil, err
	}
	return &cartItem, nil
}

// FindLine finds the cart line for a product and optional variation
func (r *cartRepository) FindLine(userID, productID uint, variationID *uint) (*model.CartItem, error) {
	query := r.db.Where("user_id = ? AND product_id = ?", userID, productID)
	if variationID != nil {
		query = query.Where("product_variation_id = ?", *variationID)
	} else {
		query = query.Where("product_variation_id IS NULL")
	}

	var cartItem model.CartItem
	if err := query.First(&cartItem).Error; err != nil {
		return nil, err
	}
	return &cartItem, nil
}

func (r *cartRepository) Update(cartItem *model.CartItem) error {
	if err := r.db.Model(&model.CartItem{}).Where("id = ?", cartItem.ID).
		Updates(map[string]interface{}{
			"quantity": cartItem.Quantity,
			"selected": cartItem.Selected,
		}).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": cartItem.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) SetSelected(userID uint, itemIDs []uint, selected bool) error {
	query := r.db.Model(&model.CartItem{}).Where("user_id = ?", userID)
	if len(itemIDs) > 0 {
		query = query.Where("id IN ?", itemIDs)
	}
	if err := query.Update("selected", selected).Error; err != nil {
		logger.Error("Failed to update cart selection in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.CartItem{}, id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to clear cart in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
