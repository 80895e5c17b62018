package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrInvalidPaymentSignature = errors.New("invalid payment signature")
	ErrPaymentAmountMismatch   = errors.New("payment amount does not match the order")
	ErrOrderAlreadyPaid        = errors.New("order is already paid")
	ErrInvalidPaymentAmount    = errors.New("invalid payment amount")
	ErrGatewayUnavailable      = errors.New("payment gateway is not configured")
	ErrPaymentExpired          = errors.New("payment link has expired")
)

// PaymentLink is what the storefront needs to send the customer to a gateway
type PaymentLink struct {
	OrderID   uint                `json:"OrderId"`
	Method    model.PaymentMethod `json:"PaymentMethod"`
	Reference string              `json:"Reference"`
	Amount    int64               `json:"Amount"`
	PayURL    string              `json:"PayUrl"`
}

// PaymentResult summarizes a processed gateway notification
type PaymentResult struct {
	OrderID   uint                `json:"OrderId"`
	Method    model.PaymentMethod `json:"PaymentMethod"`
	Reference string              `json:"Reference"`
	Amount    int64               `json:"Amount"`
	IsPaid    bool                `json:"IsPaid"`
	Message   string              `json:"Message"`
}

// gatewayAmount converts the charged total to whole VND
func gatewayAmount(order *model.Order) int64 {
	return decimal.NewFromFloat(order.TotalPriceSale).Round(0).IntPart()
}

// paymentReference builds a merchant reference unique per checkout attempt
func paymentReference(orderID uint) string {
	return fmt.Sprintf("%d_%s", orderID, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// payableOrder loads the caller's order and checks it can start a payment with method
func payableOrder(orders OrderService, userID, orderID uint, method model.PaymentMethod) (*model.Order, int64, error) {
	order, err := orders.GetOrderByID(orderID, userID, model.RoleCustomer)
	if err != nil {
		return nil, 0, err
	}
	if order.PaymentMethod != method {
		return nil, 0, ErrPaymentMethodMismatch
	}
	if order.IsPaid {
		return nil, 0, ErrOrderAlreadyPaid
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, 0, ErrOrderNotPayable
	}
	amount := gatewayAmount(order)
	if amount <= 0 {
		return nil, 0, ErrInvalidPaymentAmount
	}
	return order, amount, nil
}
