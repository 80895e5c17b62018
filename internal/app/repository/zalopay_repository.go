package repository

import (
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type ZaloPayRepository interface {
	CreateOrder(order *model.ZaloPayOrder) error
	FindByAppTransID(appTransID string) (*model.ZaloPayOrder, error)
	UpdateOrder(order *model.ZaloPayOrder) error
	CreateRedirect(redirect *model.ZaloPayRedirect) error
	FindPendingBefore(before time.Time) ([]model.ZaloPayOrder, error)
	MarkExpired(ids []uint) error
}

type zaloPayRepository struct {
	db *gorm.DB
}

func NewZaloPayRepository(db *gorm.DB) ZaloPayRepository {
	return &zaloPayRepository{db: db}
}

func (r *zaloPayRepository) CreateOrder(order *model.ZaloPayOrder) error {
	if err := r.db.Omit("Order").Create(order).Error; err != nil {
		logger.Error("Failed to create zalopay order in database", err, map[string]interface{}{
			"order_id":     order.OrderID,
			"app_trans_id": order.AppTransID,
		})
		return err
	}
	return nil
}

func (r *zaloPayRepository) FindByAppTransID(appTransID string) (*model.ZaloPayOrder, error) {
	var order model.ZaloPayOrder
	if err := r.db.Where("app_trans_id = ?", appTransID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *zaloPayRepository) UpdateOrder(order *model.ZaloPayOrder) error {
	if err := r.db.Omit("Order").Save(order).Error; err != nil {
		logger.Error("Failed to update zalopay order in database", err, map[string]interface{}{
			"app_trans_id": order.AppTransID,
		})
		return err
	}
	return nil
}

func (r *zaloPayRepository) CreateRedirect(redirect *model.ZaloPayRedirect) error {
	if err := r.db.Omit("ZaloPayOrder").Create(redirect).Error; err != nil {
		logger.Error("Failed to store zalopay redirect", err, map[string]interface{}{
			"app_trans_id": redirect.AppTransID,
		})
		return err
	}
	return nil
}

func (r *zaloPayRepository) FindPendingBefore(before time.Time) ([]model.ZaloPayOrder, error) {
	var orders []model.ZaloPayOrder
	if err := r.db.
		Where("status = ? AND is_paid = ? AND is_expired = ?", model.GatewayStatusPending, false, false).
		Where("created_at < ?", before).
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find pending zalopay orders", err)
		return nil, err
	}
	return orders, nil
}

func (r *zaloPayRepository) MarkExpired(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.ZaloPayOrder{}).
		Where("id IN ? AND is_paid = ?", ids, false).
		Updates(map[string]interface{}{
			"is_expired": true,
			"status":     model.GatewayStatusExpired,
		}).Error
}
