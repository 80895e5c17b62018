package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/payment/vnpay"
	"gorm.io/gorm"
)

// VnpayGateway is the part of the VNPay client the service relies on
type VnpayGateway interface {
	BuildPaymentURL(req vnpay.PaymentRequest) (string, error)
	VerifyReturn(q url.Values) (*vnpay.ReturnResult, error)
}

type VnpayService interface {
	CreatePaymentURL(userID, orderID uint, clientIP string) (*PaymentLink, error)
	HandleReturn(query url.Values) (*PaymentResult, error)
	HandleIPN(query url.Values) vnpay.IPNResponse
}

type vnpayService struct {
	client    VnpayGateway
	repo      repository.VnpayRepository
	orders    OrderService
	expiresIn time.Duration
}

func NewVnpayService(client VnpayGateway, repo repository.VnpayRepository, orders OrderService, expiresIn time.Duration) VnpayService {
	return &vnpayService{
		client:    client,
		repo:      repo,
		orders:    orders,
		expiresIn: expiresIn,
	}
}

func (s *vnpayService) CreatePaymentURL(userID, orderID uint, clientIP string) (*PaymentLink, error) {
	if s.client == nil {
		return nil, ErrGatewayUnavailable
	}
	order, amount, err := payableOrder(s.orders, userID, orderID, model.PaymentMethodVnPay)
	if err != nil {
		return nil, err
	}

	txnRef := paymentReference(order.ID)
	payURL, err := s.client.BuildPaymentURL(vnpay.PaymentRequest{
		TxnRef:    txnRef,
		Amount:    amount,
		OrderInfo: fmt.Sprintf("Thanh toan don hang %d", order.ID),
		IPAddr:    clientIP,
		CreatedAt: time.Now(),
		ExpiresIn: s.expiresIn,
	})
	if err != nil {
		return nil, err
	}

	txn := &model.VnpayTransaction{
		OrderID:    order.ID,
		TxnRef:     txnRef,
		Amount:     amount,
		PaymentURL: payURL,
		Status:     model.GatewayStatusPending,
	}
	if err := s.repo.Create(txn); err != nil {
		return nil, err
	}

	logger.Info("VNPay payment URL created", map[string]interface{}{
		"order_id": order.ID,
		"txn_ref":  txnRef,
		"amount":   amount,
	})
	return &PaymentLink{
		OrderID:   order.ID,
		Method:    model.PaymentMethodVnPay,
		Reference: txnRef,
		Amount:    amount,
		PayURL:    payURL,
	}, nil
}

// process verifies and applies a return or IPN query
func (s *vnpayService) process(query url.Values) (result *PaymentResult, alreadyPaid bool, err error) {
	if s.client == nil {
		return nil, false, ErrGatewayUnavailable
	}
	ret, verr := s.client.VerifyReturn(query)
	if verr != nil {
		logger.Warn("VNPay query rejected", map[string]interface{}{
			"txn_ref": query.Get("vnp_TxnRef"),
			"error":   verr.Error(),
		})
		return nil, false, ErrInvalidPaymentSignature
	}

	fields := map[string]interface{}{
		"txn_ref":       ret.TxnRef,
		"response_code": ret.ResponseCode,
		"amount":        ret.Amount,
	}
	txn, err := s.repo.FindByTxnRef(ret.TxnRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("VNPay query for unknown transaction", fields)
			return nil, false, ErrPaymentNotFound
		}
		return nil, false, err
	}

	result = &PaymentResult{
		OrderID:   txn.OrderID,
		Method:    model.PaymentMethodVnPay,
		Reference: txn.TxnRef,
		Amount:    txn.Amount,
		IsPaid:    txn.IsPaid,
		Message:   ret.ResponseCode,
	}
	if txn.IsPaid {
		return result, true, nil
	}
	if txn.IsExpired {
		logger.Warn("VNPay query for expired transaction", fields)
		return result, false, ErrPaymentExpired
	}
	if ret.Amount != txn.Amount {
		logger.Warn("VNPay amount mismatch", fields)
		return result, false, ErrPaymentAmountMismatch
	}

	txn.BankCode = ret.BankCode
	txn.TransactionNo = ret.TransactionNo
	txn.ResponseCode = ret.ResponseCode
	txn.TransactionStatus = ret.TransactionStatus
	txn.PayDate = ret.PayDate

	if !ret.Succeeded() {
		txn.Status = model.GatewayStatusFailed
		if err := s.repo.Update(txn); err != nil {
			return nil, false, err
		}
		logger.Info("VNPay payment failed", fields)
		return result, false, nil
	}

	if _, err := s.orders.MarkPaid(txn.OrderID, model.PaymentMethodVnPay); err != nil {
		logger.Error("Failed to mark order paid after vnpay payment", err, fields)
		return result, false, err
	}
	txn.Status = model.GatewayStatusSucceeded
	txn.IsPaid = true
	if err := s.repo.Update(txn); err != nil {
		return nil, false, err
	}

	result.IsPaid = true
	logger.Info("VNPay payment completed", fields)
	return result, false, nil
}

func (s *vnpayService) HandleReturn(query url.Values) (*PaymentResult, error) {
	result, _, err := s.process(query)
	return result, err
}

// HandleIPN answers with the acknowledgement codes VNPay expects
func (s *vnpayService) HandleIPN(query url.Values) vnpay.IPNResponse {
	_, alreadyPaid, err := s.process(query)
	switch {
	case errors.Is(err, ErrInvalidPaymentSignature):
		return vnpay.IPNResponse{RspCode: vnpay.IPNInvalidChecksum, Message: "Invalid Checksum"}
	case errors.Is(err, ErrPaymentNotFound):
		return vnpay.IPNResponse{RspCode: vnpay.IPNOrderNotFound, Message: "Order not found"}
	case errors.Is(err, ErrPaymentAmountMismatch):
		return vnpay.IPNResponse{RspCode: vnpay.IPNInvalidAmount, Message: "Invalid amount"}
	case errors.Is(err, ErrPaymentExpired), errors.Is(err, ErrOrderNotPayable):
		return vnpay.IPNResponse{RspCode: vnpay.IPNAlreadyConfirmed, Message: "Order is no longer payable"}
	case err != nil:
		return vnpay.IPNResponse{RspCode: vnpay.IPNUnknownError, Message: "Unknown error"}
	case alreadyPaid:
		return vnpay.IPNResponse{RspCode: vnpay.IPNAlreadyConfirmed, Message: "Order already confirmed"}
	}
	return vnpay.IPNResponse{RspCode: vnpay.IPNConfirmed, Message: "Confirm Success"}
}
