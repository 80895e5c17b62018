package service

import (
	"errors"
	"math"
	"strings"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrRatingNotFound     = errors.New("rating not found")
	ErrRatingOutOfRange   = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated       = errors.New("product already rated by this user")
	ErrNotPurchased       = errors.New("only customers with a delivered order can rate this product")
	ErrRatingAccessDenied = errors.New("rating access denied")
)

const maxRatingImages = 5

type RatingInput struct {
	Rating    int
	Comment   string
	ImageURLs []string
}

type RatingPage struct {
	Items    []model.RatingFeedback `json:"Items"`
	Total    int64                  `json:"Total"`
	Page     int                    `json:"Page"`
	PageSize int                    `json:"PageSize"`
}

type RatingService interface {
	CreateRating(userID, productID uint, input RatingInput) (*model.RatingFeedback, error)
	GetProductRatings(productID uint, includeHidden bool, page, pageSize int) (*RatingPage, error)
	GetRatingByID(id uint) (*model.RatingFeedback, error)
	UpdateRating(userID, ratingID uint, input RatingInput) (*model.RatingFeedback, error)
	DeleteRating(userID uint, role model.UserRole, ratingID uint) error
	SetVisibility(ratingID uint, visible bool) (*model.RatingFeedback, error)
}

type ratingService struct {
	ratingRepo  repository.RatingRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) RatingService {
	return &ratingService{
		ratingRepo:  ratingRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

func cleanImageURLs(urls []string) []string {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
		if len(cleaned) == maxRatingImages {
			break
		}
	}
	return cleaned
}

// refreshStats recomputes the product's average over visible ratings
func (s *ratingService) refreshStats(productID uint) error {
	stats, err := s.ratingRepo.StatsForProduct(productID)
	if err != nil {
		return err
	}
	average := math.Round(stats.Average*10) / 10
	if err := s.productRepo.UpdateRatingStats(productID, average, int(stats.Count)); err != nil {
		logger.Error("Failed to update product rating stats", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	return nil
}

func (s *ratingService) CreateRating(userID, productID uint, input RatingInput) (*model.RatingFeedback, error) {
	fields := map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	}

	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrRatingOutOfRange
	}
	if _, err := s.productRepo.FindByID(productID); err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}

	delivered, err := s.orderRepo.HasDeliveredProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		logger.Warn("Rating rejected: product not delivered to user", fields)
		return nil, ErrNotPurchased
	}

	if _, err := s.ratingRepo.FindByUserAndProduct(userID, productID); err == nil {
		return nil, ErrAlreadyRated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rating := &model.RatingFeedback{
		UserID:    userID,
		ProductID: productID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		IsVisible: true,
	}
	for _, u := range cleanImageURLs(input.ImageURLs) {
		rating.Images = append(rating.Images, model.RatingFeedbackImage{URL: u})
	}
	if err := s.ratingRepo.Create(rating); err != nil {
		return nil, err
	}
	if err := s.refreshStats(productID); err != nil {
		return nil, err
	}

	logger.Info("Rating created", map[string]interface{}{
		"rating_id":  rating.ID,
		"product_id": productID,
		"rating":     rating.Rating,
	})
	return s.GetRatingByID(rating.ID)
}

func (s *ratingService) GetProductRatings(productID uint, includeHidden bool, page, pageSize int) (*RatingPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	ratings, total, err := s.ratingRepo.FindByProductID(productID, !includeHidden, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &RatingPage{
		Items:    ratings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *ratingService) GetRatingByID(id uint) (*model.RatingFeedback, error) {
	rating, err := s.ratingRepo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrRatingNotFound)
	}
	return rating, nil
}

func (s *ratingService) UpdateRating(userID, ratingID uint, input RatingInput) (*model.RatingFeedback, error) {
	rating, err := s.GetRatingByID(ratingID)
	if err != nil {
		return nil, err
	}
	if rating.UserID != userID {
		return nil, ErrRatingAccessDenied
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrRatingOutOfRange
	}

	rating.Rating = input.Rating
	rating.Comment = strings.TrimSpace(input.Comment)
	if err := s.ratingRepo.Update(rating); err != nil {
		return nil, err
	}
	if input.ImageURLs != nil {
		if err := s.ratingRepo.ReplaceImages(ratingID, cleanImageURLs(input.ImageURLs)); err != nil {
			return nil, err
		}
	}
	if err := s.refreshStats(rating.ProductID); err != nil {
		return nil, err
	}
	return s.GetRatingByID(ratingID)
}

func (s *ratingService) DeleteRating(userID uint, role model.UserRole, ratingID uint) error {
	rating, err := s.GetRatingByID(ratingID)
	if err != nil {
		return err
	}
	if rating.UserID != userID && role != model.RoleAdmin {
		return ErrRatingAccessDenied
	}
	if err := s.ratingRepo.Delete(ratingID); err != nil {
		return notFoundAs(err, ErrRatingNotFound)
	}

	logger.Info("Rating deleted", map[string]interface{}{
		"rating_id":  ratingID,
		"product_id": rating.ProductID,
		"by_user_id": userID,
	})
	return s.refreshStats(rating.ProductID)
}

func (s *ratingService) SetVisibility(ratingID uint, visible bool) (*model.RatingFeedback, error) {
	rating, err := s.GetRatingByID(ratingID)
	if err != nil {
		return nil, err
	}
	rating.IsVisible = visible
	if err := s.ratingRepo.Update(rating); err != nil {
		return nil, err
	}
	if err := s.refreshStats(rating.ProductID); err != nil {
		return nil, err
	}
	return rating, nil
}
