package repository

import (
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID        *uint
	Status        model.OrderStatus
	PaymentMethod model.PaymentMethod
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

type ProductSales struct {
	ProductID uint    `json:"ProductId"`
	Name      string  `json:"Name"`
	Quantity  int64   `json:"Quantity"`
	Revenue   float64 `json:"Revenue"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, int64, error)
	Update(order *model.Order) error
	UpdateStatus(id uint, status model.OrderStatus) error
	UpdatePaymentStatus(id uint, status model.PaymentStatus) error
	CountByStatus(from, to *time.Time) (map[model.OrderStatus]int64, error)
	SumPaidRevenue(from, to *time.Time) (float64, error)
	TopSellingProducts(from, to *time.Time, limit int) ([]ProductSales, error)
	HasDeliveredProduct(userID, productID uint) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderProducts", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Product").Preload("ProductVariation")
	}).Preload("User").Preload("Promotion")
}

func applyDateRange(query *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where(column+" >= ?", *from)
	}
	if to != nil {
		query = query.Where(column+" <= ?", *to)
	}
	return query
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":          order.UserID,
		"total_price":      order.TotalPrice,
		"total_price_sale": order.TotalPriceSale,
	})

	if err := r.db.Omit("User", "Promotion").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, int64, error) {
	query := r.db.Model(&model.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	query = applyDateRange(query, "created_at", filter.From, filter.To)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders with filter", err)
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.
		Preload("OrderProducts.Product").
		Preload("User").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders with filter", err)
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	if err := r.db.Omit("User", "Promotion", "OrderProducts").Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	result := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(id uint, status model.PaymentStatus) error {
	result := r.db.Model(&model.Order{}).Where("id = ?", id).Update("payment_status", status)
	if result.Error != nil {
		logger.Error("Failed to update payment status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) CountByStatus(from, to *time.Time) (map[model.OrderStatus]int64, error) {
	type row struct {
		Status model.OrderStatus
		Count  int64
	}

	var rows []row
	query := applyDateRange(r.db.Model(&model.Order{}), "created_at", from, to)
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		logger.Error("Failed to count orders by status", err)
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *orderRepository) SumPaidRevenue(from, to *time.Time) (float64, error) {
	var revenue float64
	query := applyDateRange(r.db.Model(&model.Order{}), "created_at", from, to)
	if err := query.Where("is_paid = ?", true).
		Select("COALESCE(SUM(total_price_sale), 0)").
		Scan(&revenue).Error; err != nil {
		logger.Error("Failed to sum paid revenue", err)
		return 0, err
	}
	return revenue, nil
}

func (r *orderRepository) TopSellingProducts(from, to *time.Time, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 5
	}

	query := r.db.Table("order_products").
		Select("order_products.product_id AS product_id, products.name AS name, SUM(order_products.quantity) AS quantity, SUM(order_products.quantity * order_products.sale_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_products.order_id AND orders.deleted_at IS NULL").
		Joins("JOIN products ON products.id = order_products.product_id").
		Where("orders.status <> ?", model.OrderStatusCancelled)
	query = applyDateRange(query, "orders.created_at", from, to)

	var sales []ProductSales
	if err := query.
		Group("order_products.product_id, products.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&sales).Error; err != nil {
		logger.Error("Failed to aggregate top selling products", err)
		return nil, err
	}
	return sales, nil
}

// HasDeliveredProduct reports whether the user received an order containing the product
func (r *orderRepository) HasDeliveredProduct(userID, productID uint) (bool, error) {
	var count int64
	if err := r.db.Table("order_products").
		Joins("JOIN orders ON orders.id = order_products.order_id AND orders.deleted_at IS NULL").
		Where("orders.user_id = ? AND orders.status = ? AND order_products.product_id = ?",
			userID, model.OrderStatusDelivered, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
