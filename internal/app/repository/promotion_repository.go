package repository

import (
	"errors"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrUsageLimitReached is returned when a promotion has been used up
var ErrUsageLimitReached = errors.New("promotion usage limit reached")

type PromotionRepository interface {
	Create(promotion *model.Promotion) error
	FindAll() ([]model.Promotion, error)
	FindByID(id uint) (*model.Promotion, error)
	FindByCode(code string) (*model.Promotion, error)
	FindActiveByType(promotionType model.PromotionType, now time.Time) ([]model.Promotion, error)
	Update(promotion *model.Promotion) error
	Delete(id uint) error
	ReplaceProducts(promotionID uint, productIDs []uint) error
	ReplaceCustomers(promotionID uint, userIDs []uint) error
	IncrementUsage(tx *gorm.DB, id uint) error
}

type promotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Products").Preload("Customers")
}

func (r *promotionRepository) Create(promotion *model.Promotion) error {
	logger.Debug("Creating promotion in database", map[string]interface{}{
		"code": promotion.Code,
		"type": promotion.Type,
	})

	if err := r.db.Create(promotion).Error; err != nil {
		logger.Error("Failed to create promotion in database", err, map[string]interface{}{
			"code": promotion.Code,
		})
		return err
	}
	return nil
}

func (r *promotionRepository) FindAll() ([]model.Promotion, error) {
	var promotions []model.Promotion
	if err := r.preload(r.db).Order("start_date DESC").Find(&promotions).Error; err != nil {
		logger.Error("Failed to list promotions", err)
		return nil, err
	}
	return promotions, nil
}

func (r *promotionRepository) FindByID(id uint) (*model.Promotion, error) {
	var promotion model.Promotion
	if err := r.preload(r.db).First(&promotion, id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *promotionRepository) FindByCode(code string) (*model.Promotion, error) {
	var promotion model.Promotion
	if err := r.preload(r.db).Where("UPPER(code) = UPPER(?)", code).First(&promotion).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *promotionRepository) FindActiveByType(promotionType model.PromotionType, now time.Time) ([]model.Promotion, error) {
	logger.Debug("Finding active promotions by type", map[string]interface{}{
		"type": promotionType,
	})

	var promotions []model.Promotion
	if err := r.preload(r.db).
		Where("type = ? AND is_active = ?", promotionType, true).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("usage_limit = 0 OR used_count < usage_limit").
		Order("discount_percent DESC").
		Find(&promotions).Error; err != nil {
		logger.Error("Failed to find active promotions", err, map[string]interface{}{
			"type": promotionType,
		})
		return nil, err
	}
	return promotions, nil
}

func (r *promotionRepository) Update(promotion *model.Promotion) error {
	if err := r.db.Omit("Products", "Customers").Save(promotion).Error; err != nil {
		logger.Error("Failed to update promotion in database", err, map[string]interface{}{
			"promotion_id": promotion.ID,
		})
		return err
	}
	return nil
}

// Delete hard deletes the promotion; orders keep their rows with promotion_id set to NULL
func (r *promotionRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Promotion{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete promotion from database", result.Error, map[string]interface{}{
			"promotion_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promotionRepository) ReplaceProducts(promotionID uint, productIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promotionID).Delete(&model.PromotionProduct{}).Error; err != nil {
			return err
		}
		links := make([]model.PromotionProduct, 0, len(productIDs))
		for _, id := range uniqueIDs(productIDs) {
			links = append(links, model.PromotionProduct{PromotionID: promotionID, ProductID: id})
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Omit("Product").Create(&links).Error
	})
}

func (r *promotionRepository) ReplaceCustomers(promotionID uint, userIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", promotionID).Delete(&model.PromotionCustomer{}).Error; err != nil {
			return err
		}
		links := make([]model.PromotionCustomer, 0, len(userIDs))
		for _, id := range uniqueIDs(userIDs) {
			links = append(links, model.PromotionCustomer{PromotionID: promotionID, UserID: id})
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Omit("User").Create(&links).Error
	})
}

// IncrementUsage bumps used_count inside the caller's transaction. It returns
// ErrUsageLimitReached when the promotion has no uses left.
func (r *promotionRepository) IncrementUsage(tx *gorm.DB, id uint) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.Model(&model.Promotion{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		logger.Error("Failed to increment promotion usage", result.Error, map[string]interface{}{
			"promotion_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUsageLimitReached
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
