package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrPromotionNotFound       = errors.New("promotion not found")
	ErrPromotionNotActive      = errors.New("promotion is not active")
	ErrPromotionUsageExhausted = errors.New("promotion usage limit reached")
	ErrPromotionNotEligible    = errors.New("promotion does not apply to this order")
	ErrPromotionBelowMinimum   = errors.New("order total is below the promotion minimum")
	ErrInvalidPromotion        = errors.New("invalid promotion")
)

type PromotionInput struct {
	Code              string
	Name              string
	Description       string
	Type              model.PromotionType
	DiscountPercent   float64
	MaxDiscountAmount float64
	MinOrderAmount    float64
	StartDate         time.Time
	EndDate           time.Time
	IsActive          *bool
	UsageLimit        int
	ProductIDs        []uint
	CustomerIDs       []uint
}

// DiscountLine is the effective amount of one order line
type DiscountLine struct {
	ProductID uint
	Amount    float64
}

type PromotionService interface {
	GetAllPromotions() ([]model.Promotion, error)
	GetPromotionByID(id uint) (*model.Promotion, error)
	GetPromotionByCode(code string) (*model.Promotion, error)
	GetActivePromotionsByType(promotionType model.PromotionType, now time.Time) ([]model.Promotion, error)
	CreatePromotion(input PromotionInput) (*model.Promotion, error)
	UpdatePromotion(id uint, input PromotionInput) (*model.Promotion, error)
	DeletePromotion(id uint) error
	AssignProducts(promotionID uint, productIDs []uint) (*model.Promotion, error)
	AssignCustomers(promotionID uint, userIDs []uint) (*model.Promotion, error)

	ValidateForOrder(code string, userID uint, subtotal float64, productIDs []uint, now time.Time) (*model.Promotion, error)
	CalculateDiscount(promotion *model.Promotion, lines []DiscountLine, subtotal float64) float64
}

type promotionService struct {
	repo repository.PromotionRepository
}

func NewPromotionService(repo repository.PromotionRepository) PromotionService {
	return &promotionService{repo: repo}
}

func validatePromotionInput(input PromotionInput) error {
	switch {
	case strings.TrimSpace(input.Code) == "":
		return fmt.Errorf("%w: code is required", ErrInvalidPromotion)
	case strings.TrimSpace(input.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidPromotion)
	case input.Type != model.PromotionTypeProduct && input.Type != model.PromotionTypeOrder:
		return fmt.Errorf("%w: type must be Product or Order", ErrInvalidPromotion)
	case input.DiscountPercent <= 0 || input.DiscountPercent > 100:
		return fmt.Errorf("%w: discount percent must be in (0, 100]", ErrInvalidPromotion)
	case input.MaxDiscountAmount < 0 || input.MinOrderAmount < 0 || input.UsageLimit < 0:
		return fmt.Errorf("%w: amounts and usage limit must not be negative", ErrInvalidPromotion)
	case !input.EndDate.After(input.StartDate):
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidPromotion)
	}
	return nil
}

func applyPromotionInput(p *model.Promotion, input PromotionInput) {
	p.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Type = input.Type
	p.DiscountPercent = input.DiscountPercent
	p.MaxDiscountAmount = input.MaxDiscountAmount
	p.MinOrderAmount = input.MinOrderAmount
	p.StartDate = input.StartDate
	p.EndDate = input.EndDate
	p.UsageLimit = input.UsageLimit
}

func (s *promotionService) GetAllPromotions() ([]model.Promotion, error) {
	return s.repo.FindAll()
}

func (s *promotionService) GetPromotionByID(id uint) (*model.Promotion, error) {
	promotion, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrPromotionNotFound)
	}
	return promotion, nil
}

func (s *promotionService) GetPromotionByCode(code string) (*model.Promotion, error) {
	promotion, err := s.repo.FindByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, notFoundAs(err, ErrPromotionNotFound)
	}
	return promotion, nil
}

func (s *promotionService) GetActivePromotionsByType(promotionType model.PromotionType, now time.Time) ([]model.Promotion, error) {
	return s.repo.FindActiveByType(promotionType, now)
}

func (s *promotionService) CreatePromotion(input PromotionInput) (*model.Promotion, error) {
	if err := validatePromotionInput(input); err != nil {
		return nil, err
	}

	promotion := &model.Promotion{IsActive: true}
	applyPromotionInput(promotion, input)
	if err := s.repo.Create(promotion); err != nil {
		return nil, err
	}
	if input.IsActive != nil && !*input.IsActive {
		promotion.IsActive = false
		if err := s.repo.Update(promotion); err != nil {
			return nil, err
		}
	}
	if len(input.ProductIDs) > 0 {
		if err := s.repo.ReplaceProducts(promotion.ID, input.ProductIDs); err != nil {
			return nil, err
		}
	}
	if len(input.CustomerIDs) > 0 {
		if err := s.repo.ReplaceCustomers(promotion.ID, input.CustomerIDs); err != nil {
			return nil, err
		}
	}

	logger.Info("Promotion created", map[string]interface{}{
		"promotion_id": promotion.ID,
		"code":         promotion.Code,
		"type":         promotion.Type,
	})
	return s.GetPromotionByID(promotion.ID)
}

// UpdatePromotion replaces scalar fields; linked products and customers are
// only replaced when the input lists are non-nil
func (s *promotionService) UpdatePromotion(id uint, input PromotionInput) (*model.Promotion, error) {
	if err := validatePromotionInput(input); err != nil {
		return nil, err
	}
	promotion, err := s.GetPromotionByID(id)
	if err != nil {
		return nil, err
	}

	applyPromotionInput(promotion, input)
	if input.IsActive != nil {
		promotion.IsActive = *input.IsActive
	}
	if err := s.repo.Update(promotion); err != nil {
		return nil, err
	}
	if input.ProductIDs != nil {
		if err := s.repo.ReplaceProducts(id, input.ProductIDs); err != nil {
			return nil, err
		}
	}
	if input.CustomerIDs != nil {
		if err := s.repo.ReplaceCustomers(id, input.CustomerIDs); err != nil {
			return nil, err
		}
	}

	logger.Info("Promotion updated", map[string]interface{}{
		"promotion_id": id,
	})
	return s.GetPromotionByID(id)
}

func (s *promotionService) DeletePromotion(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return notFoundAs(err, ErrPromotionNotFound)
	}
	logger.Info("Promotion deleted", map[string]interface{}{
		"promotion_id": id,
	})
	return nil
}

func (s *promotionService) AssignProducts(promotionID uint, productIDs []uint) (*model.Promotion, error) {
	if _, err := s.GetPromotionByID(promotionID); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceProducts(promotionID, productIDs); err != nil {
		return nil, err
	}
	return s.GetPromotionByID(promotionID)
}

func (s *promotionService) AssignCustomers(promotionID uint, userIDs []uint) (*model.Promotion, error) {
	if _, err := s.GetPromotionByID(promotionID); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceCustomers(promotionID, userIDs); err != nil {
		return nil, err
	}
	return s.GetPromotionByID(promotionID)
}

func linkedProducts(promotion *model.Promotion) map[uint]bool {
	linked := make(map[uint]bool, len(promotion.Products))
	for _, pp := range promotion.Products {
		linked[pp.ProductID] = true
	}
	return linked
}

func (s *promotionService) ValidateForOrder(code string, userID uint, subtotal float64, productIDs []uint, now time.Time) (*model.Promotion, error) {
	fields := map[string]interface{}{
		"code":    code,
		"user_id": userID,
	}

	promotion, err := s.GetPromotionByCode(code)
	if err != nil {
		return nil, err
	}

	if !promotion.IsActive || now.Before(promotion.StartDate) || now.After(promotion.EndDate) {
		logger.Warn("Promotion rejected: not active", fields)
		return nil, ErrPromotionNotActive
	}
	if promotion.UsageLimit > 0 && promotion.UsedCount >= promotion.UsageLimit {
		logger.Warn("Promotion rejected: usage exhausted", fields)
		return nil, ErrPromotionUsageExhausted
	}

	// an empty customer list means every customer is eligible
	if len(promotion.Customers) > 0 {
		eligible := false
		for _, pc := range promotion.Customers {
			if pc.UserID == userID {
				eligible = true
				break
			}
		}
		if !eligible {
			logger.Warn("Promotion rejected: customer not eligible", fields)
			return nil, ErrPromotionNotEligible
		}
	}

	if subtotal < promotion.MinOrderAmount {
		logger.Warn("Promotion rejected: below minimum order", fields)
		return nil, ErrPromotionBelowMinimum
	}

	if promotion.Type == model.PromotionTypeProduct {
		linked := linkedProducts(promotion)
		applies := false
		for _, id := range productIDs {
			if linked[id] {
				applies = true
				break
			}
		}
		if !applies {
			logger.Warn("Promotion rejected: no linked product in order", fields)
			return nil, ErrPromotionNotEligible
		}
	}

	return promotion, nil
}

// CalculateDiscount returns the discount in whole currency units. It never
// exceeds the amount the promotion applies to nor MaxDiscountAmount when set.
func (s *promotionService) CalculateDiscount(promotion *model.Promotion, lines []DiscountLine, subtotal float64) float64 {
	if promotion == nil {
		return 0
	}

	applicable := decimal.NewFromFloat(subtotal)
	if promotion.Type == model.PromotionTypeProduct {
		linked := linkedProducts(promotion)
		applicable = decimal.Zero
		for _, line := range lines {
			if linked[line.ProductID] {
				applicable = applicable.Add(decimal.NewFromFloat(line.Amount))
			}
		}
	}
	if !applicable.IsPositive() {
		return 0
	}

	discount := applicable.
		Mul(decimal.NewFromFloat(promotion.DiscountPercent)).
		Div(decimal.NewFromInt(100)).
		Round(0)

	if promotion.MaxDiscountAmount > 0 {
		discount = decimal.Min(discount, decimal.NewFromFloat(promotion.MaxDiscountAmount))
	}
	discount = decimal.Min(discount, applicable)

	return discount.InexactFloat64()
}
