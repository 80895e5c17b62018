package repository

import (
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type VnpayRepository interface {
	Create(txn *model.VnpayTransaction) error
	FindByTxnRef(txnRef string) (*model.VnpayTransaction, error)
	Update(txn *model.VnpayTransaction) error
	FindPendingBefore(before time.Time) ([]model.VnpayTransaction, error)
	MarkExpired(ids []uint) error
}

type vnpayRepository struct {
	db *gorm.DB
}

func NewVnpayRepository(db *gorm.DB) VnpayRepository {
	return &vnpayRepository{db: db}
}

func (r *vnpayRepository) Create(txn *model.VnpayTransaction) error {
	if err := r.db.Omit("Order").Create(txn).Error; err != nil {
		logger.Error("Failed to create vnpay transaction in database", err, map[string]interface{}{
			"order_id": txn.OrderID,
			"txn_ref":  txn.TxnRef,
		})
		return err
	}
	return nil
}

func (r *vnpayRepository) FindByTxnRef(txnRef string) (*model.VnpayTransaction, error) {
	var txn model.VnpayTransaction
	if err := r.db.Where("txn_ref = ?", txnRef).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *vnpayRepository) Update(txn *model.VnpayTransaction) error {
	if err := r.db.Omit("Order").Save(txn).Error; err != nil {
		logger.Error("Failed to update vnpay transaction in database", err, map[string]interface{}{
			"txn_ref": txn.TxnRef,
		})
		return err
	}
	return nil
}

func (r *vnpayRepository) FindPendingBefore(before time.Time) ([]model.VnpayTransaction, error) {
	var txns []model.VnpayTransaction
	if err := r.db.
		Where("status = ? AND is_paid = ? AND is_expired = ?", model.GatewayStatusPending, false, false).
		Where("created_at < ?", before).
		Find(&txns).Error; err != nil {
		logger.Error("Failed to find pending vnpay transactions", err)
		return nil, err
	}
	return txns, nil
}

func (r *vnpayRepository) MarkExpired(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.VnpayTransaction{}).
		Where("id IN ? AND is_paid = ?", ids, false).
		Updates(map[string]interface{}{
			"is_expired": true,
			"status":     model.GatewayStatusExpired,
		}).Error
}
