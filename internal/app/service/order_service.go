package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/mailer"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAccessDenied     = errors.New("order access denied")
	ErrInvalidOrderStatus    = errors.New("invalid order status transition")
	ErrOrderNotCancellable   = errors.New("only pending orders can be cancelled")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrPaymentMethodMismatch = errors.New("order uses a different payment method")
	ErrOrderNotPayable       = errors.New("order can no longer be paid")

	errOrderUnchanged = errors.New("order changed concurrently")
)

type CreateOrderInput struct {
	ShippingAddress string
	Phone           string
	Note            string
	PaymentMethod   model.PaymentMethod
	PromotionCode   string
}

type OrderListOptions struct {
	UserID        *uint
	Status        model.OrderStatus
	PaymentMethod model.PaymentMethod
	From          *time.Time
	To            *time.Time
	Page          int
	PageSize      int
}

type OrderPage struct {
	Items    []model.Order `json:"Items"`
	Total    int64         `json:"Total"`
	Page     int           `json:"Page"`
	PageSize int           `json:"PageSize"`
}

// OrderStatusEvent is pushed to clients when an order changes state
type OrderStatusEvent struct {
	OrderID       uint                `json:"OrderId"`
	UserID        uint                `json:"UserId"`
	Status        model.OrderStatus   `json:"Status"`
	PaymentStatus model.PaymentStatus `json:"PaymentStatus"`
	IsPaid        bool                `json:"IsPaid"`
}

type OrderService interface {
	CreateOrder(userID uint, input CreateOrderInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(orderID, userID uint, role model.UserRole) (*model.Order, error)
	GetAllOrders(opts OrderListOptions) (*OrderPage, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	CancelOrder(userID, orderID uint) (*model.Order, error)
	MarkPaid(orderID uint, method model.PaymentMethod) (*model.Order, error)
	CancelExpiredPayments(olderThan time.Time) (int, error)
}

type orderService struct {
	db               *gorm.DB
	orderRepo        repository.OrderRepository
	cartRepo         repository.CartRepository
	promotionRepo    repository.PromotionRepository
	promotionService PromotionService
	mailer           mailer.Mailer
	events           EventPublisher
	frontendURL      string
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	promotionRepo repository.PromotionRepository,
	promotionService PromotionService,
	m mailer.Mailer,
	events EventPublisher,
	frontendURL string,
) OrderService {
	return &orderService{
		db:               db,
		orderRepo:        orderRepo,
		cartRepo:         cartRepo,
		promotionRepo:    promotionRepo,
		promotionService: promotionService,
		mailer:           m,
		events:           publisherOrNoop(events),
		frontendURL:      frontendURL,
	}
}

// allowedTransitions lists the statuses reachable from each status
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusShipping, model.OrderStatusCancelled},
	model.OrderStatusShipping:  {model.OrderStatusDelivered},
}

func canTransition(from, to model.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validPaymentMethod(method model.PaymentMethod) bool {
	return method == model.PaymentMethodCOD || method.IsOnline()
}

func statusEvent(order *model.Order) OrderStatusEvent {
	return OrderStatusEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		IsPaid:        order.IsPaid,
	}
}

func (s *orderService) CreateOrder(userID uint, input CreateOrderInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":        userID,
		"payment_method": input.PaymentMethod,
		"promotion_code": input.PromotionCode,
	})

	if input.PaymentMethod == "" {
		input.PaymentMethod = model.PaymentMethodCOD
	}
	if !validPaymentMethod(input.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	cartItems, err := s.cartRepo.FindSelectedByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if len(cartItems) == 0 {
		logger.Warn("Order creation failed: no selected cart items", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrCartEmpty
	}

	// validate the promotion against current prices before taking locks
	var promotion *model.Promotion
	if input.PromotionCode != "" {
		subtotal := CalculateCartTotals(cartItems).TotalPriceSale
		productIDs := make([]uint, 0, len(cartItems))
		for _, item := range cartItems {
			productIDs = append(productIDs, item.ProductID)
		}
		promotion, err = s.promotionService.ValidateForOrder(input.PromotionCode, userID, subtotal, productIDs, time.Now())
		if err != nil {
			return nil, err
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		totalPrice    float64
		effective     float64
		orderProducts []model.OrderProduct
		discountLines []DiscountLine
		cartItemIDs   []uint
	)

	for _, cartItem := range cartItems {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if !product.IsActive {
			tx.Rollback()
			logger.Warn("Order creation failed: inactive product", map[string]interface{}{
				"product_id": product.ID,
			})
			return nil, ErrProductInactive
		}

		listPrice, salePrice := product.Price, product.EffectivePrice()
		stock := product.StockQuantity

		var variation *model.ProductVariation
		if cartItem.ProductVariationID != nil {
			variation = &model.ProductVariation{}
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(variation, *cartItem.ProductVariationID).Error; err != nil || variation.ProductID != product.ID {
				tx.Rollback()
				return nil, ErrVariationNotFound
			}
			if !variation.IsActive {
				tx.Rollback()
				return nil, ErrProductInactive
			}
			listPrice, salePrice = variation.Price, variation.EffectivePrice()
			stock = variation.StockQuantity
		}

		if stock < cartItem.Quantity {
			tx.Rollback()
			logger.Warn("Order creation failed: insufficient stock", map[string]interface{}{
				"user_id":      userID,
				"product_id":   product.ID,
				"variation_id": cartItem.ProductVariationID,
				"available":    stock,
				"requested":    cartItem.Quantity,
			})
			return nil, ErrInsufficientStock
		}

		if variation != nil {
			err = tx.Model(&model.ProductVariation{}).Where("id = ?", variation.ID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", cartItem.Quantity)).Error
		} else {
			err = tx.Model(&model.Product{}).Where("id = ?", product.ID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", cartItem.Quantity)).Error
		}
		if err != nil {
			tx.Rollback()
			logger.Error("Failed to decrement stock", err, map[string]interface{}{
				"product_id": product.ID,
			})
			return nil, err
		}

		qty := float64(cartItem.Quantity)
		totalPrice += listPrice * qty
		effective += salePrice * qty
		discountLines = append(discountLines, DiscountLine{ProductID: product.ID, Amount: salePrice * qty})
		cartItemIDs = append(cartItemIDs, cartItem.ID)
		orderProducts = append(orderProducts, model.OrderProduct{
			ProductID:          product.ID,
			ProductVariationID: cartItem.ProductVariationID,
			Quantity:           cartItem.Quantity,
			UnitPrice:          listPrice,
			SalePrice:          salePrice,
		})
	}

	discount := s.promotionService.CalculateDiscount(promotion, discountLines, effective)
	totalPriceSale := effective - discount
	if totalPriceSale < 0 {
		totalPriceSale = 0
	}
	// a sale price above the list price must never make the order cost more
	if totalPriceSale > totalPrice {
		totalPriceSale = totalPrice
	}

	order := &model.Order{
		UserID:          userID,
		TotalPrice:      totalPrice,
		TotalPriceSale:  totalPriceSale,
		DiscountAmount:  discount,
		ShippingAddress: input.ShippingAddress,
		Phone:           input.Phone,
		Note:            input.Note,
		Status:          model.OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		OrderProducts:   orderProducts,
	}
	if promotion != nil {
		order.PromotionID = &promotion.ID
	}

	if err := tx.Omit("User", "Promotion").Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if promotion != nil {
		if err := s.promotionRepo.IncrementUsage(tx, promotion.ID); err != nil {
			tx.Rollback()
			if errors.Is(err, repository.ErrUsageLimitReached) {
				logger.Warn("Order creation failed: promotion used up during checkout", map[string]interface{}{
					"user_id":      userID,
					"promotion_id": promotion.ID,
				})
				return nil, ErrPromotionUsageExhausted
			}
			return nil, err
		}
	}

	if err := tx.Where("id IN ?", cartItemIDs).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to remove ordered cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":         created.ID,
		"user_id":          userID,
		"total_price":      created.TotalPrice,
		"total_price_sale": created.TotalPriceSale,
		"discount":         created.DiscountAmount,
	})

	s.events.NotifyBackoffice(EventOrderCreated, statusEvent(created))
	s.events.NotifyUser(userID, EventCartUpdated, map[string]interface{}{"OrderId": created.ID})
	go s.sendConfirmation(*created)

	return created, nil
}

func (s *orderService) sendConfirmation(order model.Order) {
	if s.mailer == nil || order.User.Email == "" {
		return
	}

	lines := make([]mailer.OrderLine, 0, len(order.OrderProducts))
	for _, op := range order.OrderProducts {
		name := op.Product.Name
		if op.ProductVariation != nil {
			name = fmt.Sprintf("%s (%s)", name, op.ProductVariation.Name)
		}
		lines = append(lines, mailer.OrderLine{
			Name:      name,
			Quantity:  op.Quantity,
			UnitPrice: op.SalePrice,
		})
	}

	err := s.mailer.SendOrderConfirmation(order.User.Email, mailer.OrderConfirmation{
		CustomerName:   order.User.Name,
		OrderID:        order.ID,
		Lines:          lines,
		TotalPrice:     order.TotalPrice,
		DiscountAmount: order.DiscountAmount,
		TotalPriceSale: order.TotalPriceSale,
		PaymentMethod:  string(order.PaymentMethod),
		DetailLink:     fmt.Sprintf("%s/orders/%d", s.frontendURL, order.ID),
	})
	if err != nil {
		logger.Error("Failed to send order confirmation", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) findOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetOrderByID returns the order to its owner or to backoffice users
func (s *orderService) GetOrderByID(orderID, userID uint, role model.UserRole) (*model.Order, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !role.IsBackoffice() {
		logger.Warn("Order access denied", map[string]interface{}{
			"order_id": orderID,
			"user_id":  userID,
		})
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *orderService) GetAllOrders(opts OrderListOptions) (*OrderPage, error) {
	page, pageSize := normalizePage(opts.Page, opts.PageSize)

	orders, total, err := s.orderRepo.FindWithFilter(repository.OrderFilter{
		UserID:        opts.UserID,
		Status:        opts.Status,
		PaymentMethod: opts.PaymentMethod,
		From:          opts.From,
		To:            opts.To,
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
	})
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, err
	}

	return &OrderPage{Items: orders, Total: total, Page: page, PageSize: pageSize}, nil
}

// restoreStock gives the order's quantities back to products or variations
func restoreStock(tx *gorm.DB, order *model.Order) error {
	for _, op := range order.OrderProducts {
		var err error
		if op.ProductVariationID != nil {
			err = tx.Model(&model.ProductVariation{}).Where("id = ?", *op.ProductVariationID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", op.Quantity)).Error
		} else {
			err = tx.Model(&model.Product{}).Where("id = ?", op.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", op.Quantity)).Error
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// cancel moves the order to cancelled and returns its stock in one transaction
func (s *orderService) cancel(order *model.Order, paymentStatus model.PaymentStatus) error {
	if err := s.cancelWhere(order, paymentStatus, false); err != nil && !errors.Is(err, errOrderUnchanged) {
		return err
	}
	return nil
}

// cancelWhere flips the order to cancelled and returns its stock. With
// unpaidOnly set, an order paid in the meantime is left untouched.
func (s *orderService) cancelWhere(order *model.Order, paymentStatus model.PaymentStatus, unpaidOnly bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&model.Order{}).
			Where("id = ? AND status <> ?", order.ID, model.OrderStatusCancelled)
		if unpaidOnly {
			query = query.Where("is_paid = ?", false)
		}
		result := query.Updates(map[string]interface{}{
			"status":         model.OrderStatusCancelled,
			"payment_status": paymentStatus,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// cancelled or paid concurrently
			return errOrderUnchanged
		}
		return restoreStock(tx, order)
	})
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !canTransition(order.Status, status) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidOrderStatus
	}

	if status == model.OrderStatusCancelled {
		paymentStatus := model.PaymentStatusFailed
		if order.IsPaid {
			paymentStatus = model.PaymentStatusRefunded
		}
		err = s.cancel(order, paymentStatus)
	} else {
		err = s.orderRepo.UpdateStatus(orderID, status)
		// cash is collected on delivery
		if err == nil && status == model.OrderStatusDelivered && order.PaymentMethod == model.PaymentMethodCOD && !order.IsPaid {
			now := time.Now()
			err = s.db.Model(&model.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
				"is_paid":        true,
				"paid_at":        &now,
				"payment_status": model.PaymentStatusCompleted,
			}).Error
		}
	}
	if err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	updated, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	event := statusEvent(updated)
	s.events.NotifyUser(updated.UserID, EventOrderStatusChanged, event)
	s.events.NotifyBackoffice(EventOrderStatusChanged, event)
	return updated, nil
}

func (s *orderService) CancelOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	if order.Status != model.OrderStatusPending {
		logger.Warn("Order cancellation rejected", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotCancellable
	}

	paymentStatus := model.PaymentStatusFailed
	if order.IsPaid {
		paymentStatus = model.PaymentStatusRefunded
	}
	if err := s.cancel(order, paymentStatus); err != nil {
		return nil, err
	}

	logger.Info("Order cancelled by customer", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})

	updated, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	s.events.NotifyBackoffice(EventOrderStatusChanged, statusEvent(updated))
	return updated, nil
}

// MarkPaid records a successful gateway payment. Repeated calls are no-ops.
func (s *orderService) MarkPaid(orderID uint, method model.PaymentMethod) (*model.Order, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return order, nil
	}
	if order.PaymentMethod != method {
		logger.Warn("Payment method mismatch", map[string]interface{}{
			"order_id": orderID,
			"expected": order.PaymentMethod,
			"got":      method,
		})
		return nil, ErrPaymentMethodMismatch
	}
	if order.Status == model.OrderStatusCancelled {
		logger.Warn("Payment received for cancelled order", map[string]interface{}{
			"order_id": orderID,
		})
		return nil, ErrOrderNotPayable
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_paid":        true,
		"paid_at":        &now,
		"payment_status": model.PaymentStatusCompleted,
	}
	if order.Status == model.OrderStatusPending {
		updates["status"] = model.OrderStatusConfirmed
	}
	result := s.db.Model(&model.Order{}).
		Where("id = ? AND is_paid = ? AND status <> ?", orderID, false, model.OrderStatusCancelled).
		Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to mark order paid", result.Error, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// lost a race with another settlement or with the expiry sweep
		current, err := s.findOrder(orderID)
		if err != nil {
			return nil, err
		}
		if current.IsPaid {
			return current, nil
		}
		return nil, ErrOrderNotPayable
	}

	logger.Info("Order marked as paid", map[string]interface{}{
		"order_id": orderID,
		"method":   method,
	})

	updated, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	event := statusEvent(updated)
	s.events.NotifyUser(updated.UserID, EventPaymentCompleted, event)
	s.events.NotifyBackoffice(EventOrderStatusChanged, event)
	return updated, nil
}

// CancelExpiredPayments cancels unpaid online orders created before olderThan.
// Orders with a payment link that is still open are kept until that link expires.
func (s *orderService) CancelExpiredPayments(olderThan time.Time) (int, error) {
	var orders []model.Order
	query := s.db.Preload("OrderProducts").
		Where("is_paid = ? AND status = ? AND payment_method IN ? AND created_at < ?",
			false, model.OrderStatusPending,
			[]model.PaymentMethod{model.PaymentMethodMomo, model.PaymentMethodVnPay, model.PaymentMethodZaloPay},
			olderThan)
	for _, table := range []string{
		model.MomoPayment{}.TableName(),
		model.VnpayTransaction{}.TableName(),
		model.ZaloPayOrder{}.TableName(),
	} {
		query = query.Where(fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s g WHERE g.order_id = orders.id AND g.is_paid = ? AND g.is_expired = ? AND g.status = ?)",
			table), false, false, model.GatewayStatusPending)
	}
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to find expired unpaid orders", err)
		return 0, err
	}

	cancelled := 0
	for i := range orders {
		order := &orders[i]
		err := s.cancelWhere(order, model.PaymentStatusExpired, true)
		if errors.Is(err, errOrderUnchanged) {
			continue
		}
		if err != nil {
			logger.Error("Failed to cancel expired order", err, map[string]interface{}{
				"order_id": order.ID,
			})
			continue
		}
		cancelled++
		order.Status = model.OrderStatusCancelled
		order.PaymentStatus = model.PaymentStatusExpired
		event := statusEvent(order)
		s.events.NotifyUser(order.UserID, EventOrderStatusChanged, event)
		s.events.NotifyBackoffice(EventOrderStatusChanged, event)
	}

	if cancelled > 0 {
		logger.Info("Expired unpaid orders cancelled", map[string]interface{}{
			"count": cancelled,
		})
	}
	return cancelled, nil
}
