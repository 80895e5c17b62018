package service

import (
	"errors"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("no selected items in cart")
)

// CartTotals covers selected lines only
type CartTotals struct {
	TotalPrice     float64 `json:"TotalPrice"`
	TotalPriceSale float64 `json:"TotalPriceSale"`
	Saved          float64 `json:"Saved"`
	ItemCount      int     `json:"ItemCount"`
}

type CartView struct {
	Items  []model.CartItem `json:"Items"`
	Totals CartTotals       `json:"Totals"`
}

type CartService interface {
	GetCart(userID uint) (*CartView, error)
	AddToCart(userID, productID uint, variationID *uint, quantity int) (*model.CartItem, error)
	UpdateCartItem(userID, itemID uint, quantity int) (*model.CartItem, error)
	SetSelected(userID uint, itemIDs []uint, selected bool) (*CartView, error)
	RemoveFromCart(userID, itemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	events      EventPublisher
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	events EventPublisher,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		events:      publisherOrNoop(events),
	}
}

// CalculateCartTotals sums list and effective prices over the selected lines.
// A chosen variation overrides the product prices.
func CalculateCartTotals(items []model.CartItem) CartTotals {
	var totals CartTotals
	for _, item := range items {
		if !item.Selected {
			continue
		}
		listPrice, effective := item.UnitPrices()
		qty := float64(item.Quantity)
		totals.TotalPrice += listPrice * qty
		totals.TotalPriceSale += effective * qty
		totals.ItemCount += item.Quantity
	}
	// same ceiling CreateOrder applies
	if totals.TotalPriceSale > totals.TotalPrice {
		totals.TotalPriceSale = totals.TotalPrice
	}
	totals.Saved = totals.TotalPrice - totals.TotalPriceSale
	return totals
}

func (s *cartService) GetCart(userID uint) (*CartView, error) {
	items, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &CartView{Items: items, Totals: CalculateCartTotals(items)}, nil
}

// publish sends the fresh cart to every session of the user
func (s *cartService) publish(userID uint) *CartView {
	view, err := s.GetCart(userID)
	if err != nil {
		return nil
	}
	s.events.NotifyUser(userID, EventCartUpdated, view)
	return view
}

// availableStock returns the stock of the sellable unit and validates it
func (s *cartService) availableStock(productID uint, variationID *uint) (int, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return 0, notFoundAs(err, ErrProductNotFound)
	}
	if !product.IsActive {
		return 0, ErrProductInactive
	}
	if variationID == nil {
		return product.StockQuantity, nil
	}

	variation, err := s.productRepo.FindVariationByID(*variationID)
	if err != nil || variation.ProductID != productID {
		return 0, ErrVariationNotFound
	}
	if !variation.IsActive {
		return 0, ErrProductInactive
	}
	return variation.StockQuantity, nil
}

func (s *cartService) AddToCart(userID, productID uint, variationID *uint, quantity int) (*model.CartItem, error) {
	fields := map[string]interface{}{
		"user_id":      userID,
		"product_id":   productID,
		"variation_id": variationID,
		"quantity":     quantity,
	}
	logger.Info("Adding item to cart", fields)

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	stock, err := s.availableStock(productID, variationID)
	if err != nil {
		logger.Warn("Cannot add item to cart", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, err
	}

	existing, err := s.cartRepo.FindLine(userID, productID, variationID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > stock {
			logger.Warn("Insufficient stock for cart update", fields)
			return nil, ErrInsufficientStock
		}
		existing.Quantity = newQuantity
		existing.Selected = true
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		s.publish(userID)
		return existing, nil
	}

	if quantity > stock {
		logger.Warn("Insufficient stock for cart item", fields)
		return nil, ErrInsufficientStock
	}

	item := &model.CartItem{
		UserID:             userID,
		ProductID:          productID,
		ProductVariationID: variationID,
		Quantity:           quantity,
		Selected:           true,
	}
	if err := s.cartRepo.Create(item); err != nil {
		return nil, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"cart_item_id": item.ID,
		"user_id":      userID,
	})
	s.publish(userID)
	return item, nil
}

func (s *cartService) ownedItem(userID, itemID uint) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		return nil, notFoundAs(err, ErrCartItemNotFound)
	}
	// other users' lines look missing
	if item.UserID != userID {
		logger.Warn("Cart item belongs to another user", map[string]interface{}{
			"cart_item_id": itemID,
			"user_id":      userID,
		})
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

func (s *cartService) UpdateCartItem(userID, itemID uint, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.ownedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	stock, err := s.availableStock(item.ProductID, item.ProductVariationID)
	if err != nil {
		return nil, err
	}
	if quantity > stock {
		return nil, ErrInsufficientStock
	}

	item.Quantity = quantity
	if err := s.cartRepo.Update(item); err != nil {
		return nil, err
	}

	logger.Info("Cart item updated", map[string]interface{}{
		"cart_item_id": itemID,
		"quantity":     quantity,
	})
	s.publish(userID)
	return item, nil
}

// SetSelected toggles the given lines, or the whole cart when itemIDs is empty
func (s *cartService) SetSelected(userID uint, itemIDs []uint, selected bool) (*CartView, error) {
	if err := s.cartRepo.SetSelected(userID, itemIDs, selected); err != nil {
		return nil, err
	}
	view := s.publish(userID)
	if view == nil {
		return s.GetCart(userID)
	}
	return view, nil
}

func (s *cartService) RemoveFromCart(userID, itemID uint) error {
	if _, err := s.ownedItem(userID, itemID); err != nil {
		return err
	}
	if err := s.cartRepo.Delete(itemID); err != nil {
		return err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"cart_item_id": itemID,
		"user_id":      userID,
	})
	s.publish(userID)
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	logger.Info("Cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	s.publish(userID)
	return nil
}
