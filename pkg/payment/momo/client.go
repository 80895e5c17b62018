package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the MoMo all-in-one gateway
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new MoMo client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.RequestType == "" {
		config.RequestType = "captureWallet"
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreatePayment signs and submits a checkout request and returns the pay URL
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req.OrderID == "" || req.RequestID == "" || req.Amount <= 0 {
		return nil, ErrInvalidRequest
	}

	body := createPaymentBody{
		PartnerCode: c.config.PartnerCode,
		AccessKey:   c.config.AccessKey,
		RequestID:   req.RequestID,
		Amount:      req.Amount,
		OrderID:     req.OrderID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: c.config.RedirectURL,
		IpnURL:      c.config.IPNURL,
		ExtraData:   req.ExtraData,
		RequestType: c.config.RequestType,
		Lang:        "vi",
	}
	body.Signature = Sign(createRawSignature(c.config.AccessKey, body), c.config.SecretKey)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out CreatePaymentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrPaymentFailed, resp.StatusCode, string(raw))
	}
	if resp.StatusCode != http.StatusOK || out.ResultCode != ResultSuccess || out.PayURL == "" {
		return nil, fmt.Errorf("%w: resultCode %d: %s", ErrPaymentFailed, out.ResultCode, out.Message)
	}

	return &out, nil
}

// VerifyNotification checks the signature MoMo attached to an IPN or redirect
func (c *Client) VerifyNotification(n *Notification) error {
	if n == nil || n.Signature == "" {
		return ErrInvalidSignature
	}
	expected := Sign(notificationRawSignature(c.config.AccessKey, n), c.config.SecretKey)
	if !hmac.Equal([]byte(expected), []byte(n.Signature)) {
		return ErrInvalidSignature
	}
	if n.PartnerCode != "" && n.PartnerCode != c.config.PartnerCode {
		return ErrInvalidSignature
	}
	return nil
}

// SignNotification produces the signature MoMo would attach to n
func (c *Client) SignNotification(n *Notification) string {
	return Sign(notificationRawSignature(c.config.AccessKey, n), c.config.SecretKey)
}
