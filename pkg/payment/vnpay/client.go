package vnpay

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var vietnam = time.FixedZone("ICT", 7*60*60)

// Client builds VNPay checkout URLs and verifies their callbacks
type Client struct {
	config Config
}

// NewClient creates a new VNPay client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Version == "" {
		config.Version = "2.1.0"
	}
	return &Client{config: config}, nil
}

// BuildPaymentURL returns the signed vpcpay.html URL for req
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.TxnRef == "" || req.Amount <= 0 {
		return "", ErrInvalidRequest
	}

	created := req.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	expiresIn := req.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	locale := req.Locale
	if locale == "" {
		locale = "vn"
	}
	ip := req.IPAddr
	if ip == "" || ip == "::1" {
		ip = "127.0.0.1"
	}

	params := map[string]string{
		"vnp_Version":    c.config.Version,
		"vnp_Command":    "pay",
		"vnp_TmnCode":    c.config.TmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     req.TxnRef,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  c.config.ReturnURL,
		"vnp_IpAddr":     ip,
		"vnp_CreateDate": created.In(vietnam).Format(dateLayout),
		"vnp_ExpireDate": created.Add(expiresIn).In(vietnam).Format(dateLayout),
	}
	if req.BankCode != "" {
		params["vnp_BankCode"] = req.BankCode
	}

	query := canonicalQuery(params)
	hash := Sign(params, c.config.HashSecret)

	base := c.config.PaymentURL
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s&%s=%s", base, sep, query, secureHashKey, hash), nil
}

// VerifyReturn checks the signature of a return or IPN query and decodes it
func (c *Client) VerifyReturn(q url.Values) (*ReturnResult, error) {
	params := make(map[string]string)
	for key, vals := range q {
		if strings.HasPrefix(key, "vnp_") && len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	if params["vnp_TxnRef"] == "" {
		return nil, ErrInvalidRequest
	}
	if !VerifySignature(params, c.config.HashSecret) {
		return nil, ErrInvalidSignature
	}

	amount, err := strconv.ParseInt(params["vnp_Amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: vnp_Amount", ErrInvalidRequest)
	}

	return &ReturnResult{
		TxnRef:            params["vnp_TxnRef"],
		Amount:            amount / 100,
		OrderInfo:         params["vnp_OrderInfo"],
		ResponseCode:      params["vnp_ResponseCode"],
		TransactionStatus: params["vnp_TransactionStatus"],
		TransactionNo:     params["vnp_TransactionNo"],
		BankCode:          params["vnp_BankCode"],
		PayDate:           params["vnp_PayDate"],
	}, nil
}
