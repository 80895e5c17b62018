package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/payment/zalopay"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ZaloPayGateway is the part of the ZaloPay client the service relies on
type ZaloPayGateway interface {
	CreateOrder(ctx context.Context, req zalopay.CreateOrderRequest) (*zalopay.CreateOrderResponse, error)
	VerifyCallback(cb zalopay.Callback) (*zalopay.CallbackData, error)
	VerifyRedirect(r *zalopay.Redirect) error
}

type ZaloPayService interface {
	CreateOrder(ctx context.Context, userID, orderID uint) (*PaymentLink, error)
	HandleCallback(data, mac string) (*PaymentResult, error)
	HandleRedirect(query url.Values) (*PaymentResult, error)
}

type zaloPayService struct {
	client ZaloPayGateway
	repo   repository.ZaloPayRepository
	orders OrderService
}

func NewZaloPayService(client ZaloPayGateway, repo repository.ZaloPayRepository, orders OrderService) ZaloPayService {
	return &zaloPayService{
		client: client,
		repo:   repo,
		orders: orders,
	}
}

func zaloPayItems(order *model.Order) []zalopay.Item {
	items := make([]zalopay.Item, 0, len(order.OrderProducts))
	for _, line := range order.OrderProducts {
		items = append(items, zalopay.Item{
			ItemID:    strconv.FormatUint(uint64(line.ProductID), 10),
			ItemName:  line.Product.Name,
			ItemPrice: decimal.NewFromFloat(line.SalePrice).Round(0).IntPart(),
			Quantity:  line.Quantity,
		})
	}
	return items
}

func (s *zaloPayService) CreateOrder(ctx context.Context, userID, orderID uint) (*PaymentLink, error) {
	if s.client == nil {
		return nil, ErrGatewayUnavailable
	}
	order, amount, err := payableOrder(s.orders, userID, orderID, model.PaymentMethodZaloPay)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	appTransID := zalopay.NewAppTransID(now, fmt.Sprintf("%d%s", order.ID, uuid.NewString()[:8]))
	resp, err := s.client.CreateOrder(ctx, zalopay.CreateOrderRequest{
		AppTransID:  appTransID,
		AppUser:     strconv.FormatUint(uint64(userID), 10),
		Amount:      amount,
		AppTime:     now.UnixMilli(),
		Description: fmt.Sprintf("Thanh toan don hang #%d", order.ID),
		Items:       zaloPayItems(order),
	})
	if err != nil {
		logger.Error("ZaloPay create order failed", err, map[string]interface{}{
			"order_id": order.ID,
			"amount":   amount,
		})
		return nil, err
	}

	record := &model.ZaloPayOrder{
		OrderID:      order.ID,
		AppTransID:   appTransID,
		Amount:       amount,
		OrderURL:     resp.OrderURL,
		ZpTransToken: resp.ZpTransToken,
		Status:       model.GatewayStatusPending,
	}
	if err := s.repo.CreateOrder(record); err != nil {
		return nil, err
	}

	logger.Info("ZaloPay order created", map[string]interface{}{
		"order_id":     order.ID,
		"app_trans_id": appTransID,
		"amount":       amount,
	})
	return &PaymentLink{
		OrderID:   order.ID,
		Method:    model.PaymentMethodZaloPay,
		Reference: appTransID,
		Amount:    amount,
		PayURL:    resp.OrderURL,
	}, nil
}

// settle marks a pending ZaloPay order paid once its amount is confirmed
func (s *zaloPayService) settle(record *model.ZaloPayOrder, amount, zpTransID int64) (*PaymentResult, error) {
	result := &PaymentResult{
		OrderID:   record.OrderID,
		Method:    model.PaymentMethodZaloPay,
		Reference: record.AppTransID,
		Amount:    record.Amount,
		IsPaid:    record.IsPaid,
	}
	if record.IsPaid {
		return result, nil
	}
	fields := map[string]interface{}{
		"app_trans_id": record.AppTransID,
		"amount":       amount,
	}
	if record.IsExpired {
		logger.Warn("ZaloPay payment for expired order", fields)
		return result, ErrPaymentExpired
	}
	if amount != record.Amount {
		logger.Warn("ZaloPay amount mismatch", fields)
		return result, ErrPaymentAmountMismatch
	}

	if _, err := s.orders.MarkPaid(record.OrderID, model.PaymentMethodZaloPay); err != nil {
		logger.Error("Failed to mark order paid after zalopay payment", err, fields)
		return result, err
	}
	record.IsPaid = true
	record.Status = model.GatewayStatusSucceeded
	if zpTransID != 0 {
		record.ZpTransID = zpTransID
	}
	if err := s.repo.UpdateOrder(record); err != nil {
		return nil, err
	}

	result.IsPaid = true
	logger.Info("ZaloPay payment completed", fields)
	return result, nil
}

func (s *zaloPayService) findRecord(appTransID string) (*model.ZaloPayOrder, error) {
	record, err := s.repo.FindByAppTransID(appTransID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return record, nil
}

// HandleCallback processes ZaloPay's server callback, which is only sent for successful payments
func (s *zaloPayService) HandleCallback(data, mac string) (*PaymentResult, error) {
	if s.client == nil {
		return nil, ErrGatewayUnavailable
	}
	payload, err := s.client.VerifyCallback(zalopay.Callback{Data: data, MAC: mac})
	if err != nil {
		logger.Warn("ZaloPay callback rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrInvalidPaymentSignature
	}

	record, err := s.findRecord(payload.AppTransID)
	if err != nil {
		logger.Warn("ZaloPay callback for unknown order", map[string]interface{}{
			"app_trans_id": payload.AppTransID,
		})
		return nil, err
	}
	return s.settle(record, payload.Amount, payload.ZpTransID)
}

// HandleRedirect processes the browser redirect. Every redirect is stored.
func (s *zaloPayService) HandleRedirect(query url.Values) (*PaymentResult, error) {
	if s.client == nil {
		return nil, ErrGatewayUnavailable
	}
	redirect, err := zalopay.RedirectFromQuery(query)
	if err != nil {
		return nil, ErrInvalidPaymentSignature
	}

	record, err := s.repo.FindByAppTransID(redirect.AppTransID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	valid := s.client.VerifyRedirect(redirect) == nil

	entry := &model.ZaloPayRedirect{
		AppTransID: redirect.AppTransID,
		Status:     redirect.Status,
		Amount:     redirect.Amount,
		Checksum:   redirect.Checksum,
		IsValid:    valid,
	}
	if record != nil {
		entry.ZaloPayOrderID = &record.ID
	}
	if err := s.repo.CreateRedirect(entry); err != nil {
		return nil, err
	}

	if !valid {
		logger.Warn("ZaloPay redirect rejected: invalid checksum", map[string]interface{}{
			"app_trans_id": redirect.AppTransID,
		})
		return nil, ErrInvalidPaymentSignature
	}
	if record == nil {
		return nil, ErrPaymentNotFound
	}

	if !redirect.Succeeded() {
		if !record.IsPaid && record.Status == model.GatewayStatusPending {
			record.Status = model.GatewayStatusFailed
			if err := s.repo.UpdateOrder(record); err != nil {
				return nil, err
			}
		}
		return &PaymentResult{
			OrderID:   record.OrderID,
			Method:    model.PaymentMethodZaloPay,
			Reference: record.AppTransID,
			Amount:    record.Amount,
			IsPaid:    record.IsPaid,
		}, nil
	}
	return s.settle(record, redirect.Amount, 0)
}
