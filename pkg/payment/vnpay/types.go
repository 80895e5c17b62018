package vnpay

import (
	"time"
)

const (
	// ResponseSuccess is the vnp_ResponseCode and vnp_TransactionStatus for a paid order
	ResponseSuccess = "00"

	dateLayout = "20060102150405"
)

// IPN acknowledgement codes VNPay expects from the merchant
const (
	IPNConfirmed        = "00"
	IPNOrderNotFound    = "01"
	IPNAlreadyConfirmed = "02"
	IPNInvalidAmount    = "04"
	IPNInvalidChecksum  = "97"
	IPNUnknownError     = "99"
)

// PaymentRequest describes one checkout attempt
type PaymentRequest struct {
	// TxnRef is the merchant reference, unique per attempt
	TxnRef    string
	Amount    int64
	OrderInfo string
	IPAddr    string
	BankCode  string
	Locale    string
	CreatedAt time.Time
	ExpiresIn time.Duration
}

// ReturnResult is a verified return or IPN query
type ReturnResult struct {
	TxnRef            string
	Amount            int64
	OrderInfo         string
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	PayDate           string
}

// Succeeded reports whether VNPay confirmed the payment
func (r *ReturnResult) Succeeded() bool {
	if r.ResponseCode != ResponseSuccess {
		return false
	}
	return r.TransactionStatus == "" || r.TransactionStatus == ResponseSuccess
}

// IPNResponse is the JSON body VNPay expects back from the IPN endpoint
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}
