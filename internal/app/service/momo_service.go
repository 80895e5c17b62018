package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/payment/momo"
	"gorm.io/gorm"
)

// MomoGateway is the part of the Momo client the service relies on
type MomoGateway interface {
	CreatePayment(ctx context.Context, req momo.CreatePaymentRequest) (*momo.CreatePaymentResponse, error)
	VerifyNotification(n *momo.Notification) error
}

type MomoService interface {
	CreatePayment(ctx context.Context, userID, orderID uint) (*PaymentLink, error)
	HandleIPN(n *momo.Notification) (*PaymentResult, error)
	HandleReturn(query url.Values) (*PaymentResult, error)
}

type momoService struct {
	client MomoGateway
	repo   repository.MomoRepository
	orders OrderService
}

func NewMomoService(client MomoGateway, repo repository.MomoRepository, orders OrderService) MomoService {
	return &momoService{
		client: client,
		repo:   repo,
		orders: orders,
	}
}

func (s *momoService) CreatePayment(ctx context.Context, userID, orderID uint) (*PaymentLink, error) {
	if s.client == nil {
		return nil, ErrGatewayUnavailable
	}
	order, amount, err := payableOrder(s.orders, userID, orderID, model.PaymentMethodMomo)
	if err != nil {
		return nil, err
	}

	req := momo.CreatePaymentRequest{
		OrderID:   paymentReference(order.ID),
		RequestID: uuid.NewString(),
		Amount:    amount,
		OrderInfo: fmt.Sprintf("Thanh toan don hang #%d", order.ID),
	}
	resp, err := s.client.CreatePayment(ctx, req)
	if err != nil {
		logger.Error("Momo create payment failed", err, map[string]interface{}{
			"order_id": order.ID,
			"amount":   amount,
		})
		return nil, err
	}

	payment := &model.MomoPayment{
		OrderID:     order.ID,
		RequestID:   req.RequestID,
		MomoOrderID: req.OrderID,
		Amount:      amount,
		PayURL:      resp.PayURL,
		Status:      model.GatewayStatusPending,
	}
	if err := s.repo.CreatePayment(payment); err != nil {
		return nil, err
	}

	logger.Info("Momo payment created", map[string]interface{}{
		"order_id":      order.ID,
		"momo_order_id": payment.MomoOrderID,
		"amount":        amount,
	})
	return &PaymentLink{
		OrderID:   order.ID,
		Method:    model.PaymentMethodMomo,
		Reference: payment.MomoOrderID,
		Amount:    amount,
		PayURL:    resp.PayURL,
	}, nil
}

// HandleIPN processes the server-to-server notification. Every notification is stored.
func (s *momoService) HandleIPN(n *momo.Notification) (*PaymentResult, error) {
	if s.client == nil {
		return nil, ErrGatewayUnavailable
	}
	if n == nil {
		return nil, ErrInvalidPaymentSignature
	}

	payment, err := s.repo.FindByMomoOrderID(n.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	valid := s.client.VerifyNotification(n) == nil

	callback := &model.MomoCallback{
		PartnerCode:  n.PartnerCode,
		RequestID:    n.RequestID,
		MomoOrderID:  n.OrderID,
		Amount:       n.Amount,
		TransID:      n.TransID,
		ResultCode:   n.ResultCode,
		Message:      n.Message,
		PayType:      n.PayType,
		ResponseTime: n.ResponseTime,
		Signature:    n.Signature,
		IsValid:      valid,
	}
	if payment != nil {
		callback.MomoPaymentID = &payment.ID
		callback.OrderID = &payment.OrderID
	}
	if err := s.repo.CreateCallback(callback); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"momo_order_id": n.OrderID,
		"result_code":   n.ResultCode,
		"amount":        n.Amount,
	}
	if !valid {
		logger.Warn("Momo notification rejected: invalid signature", fields)
		return nil, ErrInvalidPaymentSignature
	}
	if payment == nil {
		logger.Warn("Momo notification for unknown payment", fields)
		return nil, ErrPaymentNotFound
	}

	result := &PaymentResult{
		OrderID:   payment.OrderID,
		Method:    model.PaymentMethodMomo,
		Reference: payment.MomoOrderID,
		Amount:    payment.Amount,
		IsPaid:    payment.IsPaid,
		Message:   n.Message,
	}
	if payment.IsPaid {
		return result, nil
	}
	if payment.IsExpired {
		logger.Warn("Momo notification for expired payment", fields)
		return result, ErrPaymentExpired
	}
	if n.Amount != payment.Amount {
		logger.Warn("Momo notification amount mismatch", fields)
		return result, ErrPaymentAmountMismatch
	}

	if !n.Succeeded() {
		payment.Status = model.GatewayStatusFailed
		if err := s.repo.UpdatePayment(payment); err != nil {
			return nil, err
		}
		logger.Info("Momo payment failed", fields)
		return result, nil
	}

	// The payment row only turns paid after the order does
	if _, err := s.orders.MarkPaid(payment.OrderID, model.PaymentMethodMomo); err != nil {
		logger.Error("Failed to mark order paid after momo payment", err, fields)
		return result, err
	}
	payment.Status = model.GatewayStatusSucceeded
	payment.IsPaid = true
	if err := s.repo.UpdatePayment(payment); err != nil {
		return nil, err
	}

	result.IsPaid = true
	logger.Info("Momo payment completed", fields)
	return result, nil
}

// HandleReturn processes the browser redirect, which carries the same signed fields
func (s *momoService) HandleReturn(query url.Values) (*PaymentResult, error) {
	n, err := momo.NotificationFromQuery(query)
	if err != nil {
		return nil, ErrInvalidPaymentSignature
	}
	return s.HandleIPN(n)
}
