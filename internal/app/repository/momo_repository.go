package repository

import (
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type MomoRepository interface {
	CreatePayment(payment *model.MomoPayment) error
	FindByMomoOrderID(momoOrderID string) (*model.MomoPayment, error)
	FindByOrderID(orderID uint) ([]model.MomoPayment, error)
	UpdatePayment(payment *model.MomoPayment) error
	CreateCallback(callback *model.MomoCallback) error
	FindPendingBefore(before time.Time) ([]model.MomoPayment, error)
	MarkExpired(ids []uint) error
}

type momoRepository struct {
	db *gorm.DB
}

func NewMomoRepository(db *gorm.DB) MomoRepository {
	return &momoRepository{db: db}
}

func (r *momoRepository) CreatePayment(payment *model.MomoPayment) error {
	if err := r.db.Omit("Order").Create(payment).Error; err != nil {
		logger.Error("Failed to create momo payment in database", err, map[string]interface{}{
			"order_id":      payment.OrderID,
			"momo_order_id": payment.MomoOrderID,
		})
		return err
	}
	return nil
}

func (r *momoRepository) FindByMomoOrderID(momoOrderID string) (*model.MomoPayment, error) {
	var payment model.MomoPayment
	if err := r.db.Where("momo_order_id = ?", momoOrderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *momoRepository) FindByOrderID(orderID uint) ([]model.MomoPayment, error) {
	var payments []model.MomoPayment
	if err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *momoRepository) UpdatePayment(payment *model.MomoPayment) error {
	if err := r.db.Omit("Order").Save(payment).Error; err != nil {
		logger.Error("Failed to update momo payment in database", err, map[string]interface{}{
			"momo_payment_id": payment.ID,
		})
		return err
	}
	return nil
}

func (r *momoRepository) CreateCallback(callback *model.MomoCallback) error {
	if err := r.db.Omit("MomoPayment", "Order").Create(callback).Error; err != nil {
		logger.Error("Failed to store momo callback", err, map[string]interface{}{
			"momo_order_id": callback.MomoOrderID,
		})
		return err
	}
	return nil
}

func (r *momoRepository) FindPendingBefore(before time.Time) ([]model.MomoPayment, error) {
	var payments []model.MomoPayment
	if err := r.db.
		Where("status = ? AND is_paid = ? AND is_expired = ?", model.GatewayStatusPending, false, false).
		Where("created_at < ?", before).
		Find(&payments).Error; err != nil {
		logger.Error("Failed to find pending momo payments", err)
		return nil, err
	}
	return payments, nil
}

func (r *momoRepository) MarkExpired(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.MomoPayment{}).
		Where("id IN ? AND is_paid = ?", ids, false).
		Updates(map[string]interface{}{
			"is_expired": true,
			"status":     model.GatewayStatusExpired,
		}).Error
}
