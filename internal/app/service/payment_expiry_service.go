package service

import (
	"context"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
)

// ExpirySummary counts what one sweep expired
type ExpirySummary struct {
	MomoPayments      int `json:"MomoPayments"`
	VnpayTransactions int `json:"VnpayTransactions"`
	ZaloPayOrders     int `json:"ZaloPayOrders"`
	CancelledOrders   int `json:"CancelledOrders"`
}

type PaymentExpiryService interface {
	SweepExpired(ctx context.Context, now time.Time) (*ExpirySummary, error)
}

type paymentExpiryService struct {
	momoRepo    repository.MomoRepository
	vnpayRepo   repository.VnpayRepository
	zaloPayRepo repository.ZaloPayRepository
	orders      OrderService
	expiryAfter time.Duration
}

func NewPaymentExpiryService(
	momoRepo repository.MomoRepository,
	vnpayRepo repository.VnpayRepository,
	zaloPayRepo repository.ZaloPayRepository,
	orders OrderService,
	expiryAfter time.Duration,
) PaymentExpiryService {
	return &paymentExpiryService{
		momoRepo:    momoRepo,
		vnpayRepo:   vnpayRepo,
		zaloPayRepo: zaloPayRepo,
		orders:      orders,
		expiryAfter: expiryAfter,
	}
}

// SweepExpired flags gateway records older than the expiry window and cancels
// their unpaid orders, restoring stock
func (s *paymentExpiryService) SweepExpired(ctx context.Context, now time.Time) (*ExpirySummary, error) {
	cutoff := now.Add(-s.expiryAfter)
	summary := &ExpirySummary{}

	momoPayments, err := s.momoRepo.FindPendingBefore(cutoff)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(momoPayments))
	for _, p := range momoPayments {
		ids = append(ids, p.ID)
	}
	if err := s.momoRepo.MarkExpired(ids); err != nil {
		return nil, err
	}
	summary.MomoPayments = len(ids)

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	vnpayTxns, err := s.vnpayRepo.FindPendingBefore(cutoff)
	if err != nil {
		return nil, err
	}
	ids = ids[:0]
	for _, t := range vnpayTxns {
		ids = append(ids, t.ID)
	}
	if err := s.vnpayRepo.MarkExpired(ids); err != nil {
		return nil, err
	}
	summary.VnpayTransactions = len(ids)

	zaloOrders, err := s.zaloPayRepo.FindPendingBefore(cutoff)
	if err != nil {
		return nil, err
	}
	ids = ids[:0]
	for _, o := range zaloOrders {
		ids = append(ids, o.ID)
	}
	if err := s.zaloPayRepo.MarkExpired(ids); err != nil {
		return nil, err
	}
	summary.ZaloPayOrders = len(ids)

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	cancelled, err := s.orders.CancelExpiredPayments(cutoff)
	if err != nil {
		return summary, err
	}
	summary.CancelledOrders = cancelled

	if summary.MomoPayments+summary.VnpayTransactions+summary.ZaloPayOrders+cancelled > 0 {
		logger.Info("Expired payments swept", map[string]interface{}{
			"cutoff":             cutoff,
			"momo_payments":      summary.MomoPayments,
			"vnpay_transactions": summary.VnpayTransactions,
			"zalopay_orders":     summary.ZaloPayOrders,
			"cancelled_orders":   cancelled,
		})
	}
	return summary, nil
}
