package repository

import (
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type RatingStats struct {
	Average float64
	Count   int64
}

type RatingRepository interface {
	Create(rating *model.RatingFeedback) error
	FindByID(id uint) (*model.RatingFeedback, error)
	FindByUserAndProduct(userID, productID uint) (*model.RatingFeedback, error)
	FindByProductID(productID uint, visibleOnly bool, limit, offset int) ([]model.RatingFeedback, int64, error)
	Update(rating *model.RatingFeedback) error
	ReplaceImages(ratingID uint, urls []string) error
	Delete(id uint) error
	StatsForProduct(productID uint) (RatingStats, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *model.RatingFeedback) error {
	logger.Debug("Creating rating feedback in database", map[string]interface{}{
		"user_id":    rating.UserID,
		"product_id": rating.ProductID,
		"rating":     rating.Rating,
	})

	if err := r.db.Omit("User", "Product").Create(rating).Error; err != nil {
		logger.Error("Failed to create rating feedback in database", err, map[string]interface{}{
			"user_id":    rating.UserID,
			"product_id": rating.ProductID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) FindByID(id uint) (*model.RatingFeedback, error) {
	var rating model.RatingFeedback
	if err := r.db.Preload("User").Preload("Images").First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByUserAndProduct(userID, productID uint) (*model.RatingFeedback, error) {
	var rating model.RatingFeedback
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByProductID(productID uint, visibleOnly bool, limit, offset int) ([]model.RatingFeedback, int64, error) {
	query := r.db.Model(&model.RatingFeedback{}).Where("product_id = ?", productID)
	if visibleOnly {
		query = query.Where("is_visible = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count product ratings", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var ratings []model.RatingFeedback
	if err := query.Preload("User").Preload("Images").
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		logger.Error("Failed to find product ratings", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, 0, err
	}
	return ratings, total, nil
}

func (r *ratingRepository) Update(rating *model.RatingFeedback) error {
	if err := r.db.Omit("User", "Product", "Images").Save(rating).Error; err != nil {
		logger.Error("Failed to update rating feedback in database", err, map[string]interface{}{
			"rating_id": rating.ID,
		})
		return err
	}
	return nil
}

func (r *ratingRepository) ReplaceImages(ratingID uint, urls []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rating_feedback_id = ?", ratingID).Delete(&model.RatingFeedbackImage{}).Error; err != nil {
			return err
		}
		if len(urls) == 0 {
			return nil
		}
		images := make([]model.RatingFeedbackImage, 0, len(urls))
		for _, url := range urls {
			images = append(images, model.RatingFeedbackImage{RatingFeedbackID: ratingID, URL: url})
		}
		return tx.Create(&images).Error
	})
}

func (r *ratingRepository) Delete(id uint) error {
	result := r.db.Delete(&model.RatingFeedback{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete rating feedback from database", result.Error, map[string]interface{}{
			"rating_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StatsForProduct averages visible ratings of a product
func (r *ratingRepository) StatsForProduct(productID uint) (RatingStats, error) {
	var stats RatingStats
	if err := r.db.Model(&model.RatingFeedback{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND is_visible = ?", productID, true).
		Scan(&stats).Error; err != nil {
		logger.Error("Failed to compute product rating stats", err, map[string]interface{}{
			"product_id": productID,
		})
		return RatingStats{}, err
	}
	return stats, nil
}
