package momo

import (
	"fmt"
	"net/url"
	"strconv"
)

// ResultSuccess is the resultCode MoMo reports for a captured payment
const ResultSuccess = 0

// CreatePaymentRequest describes one checkout attempt
type CreatePaymentRequest struct {
	// OrderID is the merchant-side reference, unique per attempt
	OrderID   string
	RequestID string
	Amount    int64
	OrderInfo string
	ExtraData string
}

type createPaymentBody struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

// CreatePaymentResponse is MoMo's answer to a create request
type CreatePaymentResponse struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
	ResultCode   int    `json:"resultCode"`
	PayURL       string `json:"payUrl"`
	Deeplink     string `json:"deeplink"`
	QrCodeURL    string `json:"qrCodeUrl"`
}

// Notification is the payload MoMo sends to the IPN endpoint and, as query
// parameters, to the redirect URL
type Notification struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// Succeeded reports whether the notification confirms a captured payment
func (n *Notification) Succeeded() bool {
	return n.ResultCode == ResultSuccess
}

// NotificationFromQuery reads a redirect query string into a Notification
func NotificationFromQuery(q url.Values) (*Notification, error) {
	n := &Notification{
		PartnerCode: q.Get("partnerCode"),
		OrderID:     q.Get("orderId"),
		RequestID:   q.Get("requestId"),
		OrderInfo:   q.Get("orderInfo"),
		OrderType:   q.Get("orderType"),
		Message:     q.Get("message"),
		PayType:     q.Get("payType"),
		ExtraData:   q.Get("extraData"),
		Signature:   q.Get("signature"),
	}
	if n.OrderID == "" || n.Signature == "" {
		return nil, ErrInvalidRequest
	}

	var err error
	if n.Amount, err = parseInt64(q, "amount"); err != nil {
		return nil, err
	}
	if n.TransID, err = parseInt64(q, "transId"); err != nil {
		return nil, err
	}
	if n.ResponseTime, err = parseInt64(q, "responseTime"); err != nil {
		return nil, err
	}
	code, err := parseInt64(q, "resultCode")
	if err != nil {
		return nil, err
	}
	n.ResultCode = int(code)
	return n, nil
}

func parseInt64(q url.Values, key string) (int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRequest, key)
	}
	return v, nil
}
