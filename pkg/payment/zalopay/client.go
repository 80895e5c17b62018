package zalopay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var vietnam = time.FixedZone("ICT", 7*60*60)

// Client talks to the ZaloPay v2 order API
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new ZaloPay client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// NewAppTransID builds a yymmdd-prefixed transaction id for the given suffix
func NewAppTransID(now time.Time, suffix string) string {
	return now.In(vietnam).Format("060102") + "_" + suffix
}

// CreateOrder signs and submits an order and returns the checkout URL
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if req.AppTransID == "" || req.Amount <= 0 {
		return nil, ErrInvalidRequest
	}
	if req.AppUser == "" {
		req.AppUser = "guest"
	}
	if req.AppTime == 0 {
		req.AppTime = time.Now().UnixMilli()
	}
	if req.Items == nil {
		req.Items = []Item{}
	}

	item, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}
	embed, err := json.Marshal(map[string]string{"redirecturl": c.config.RedirectURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed data: %w", err)
	}

	form := url.Values{}
	form.Set("app_id", c.config.AppID)
	form.Set("app_trans_id", req.AppTransID)
	form.Set("app_user", req.AppUser)
	form.Set("app_time", strconv.FormatInt(req.AppTime, 10))
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("item", string(item))
	form.Set("embed_data", string(embed))
	form.Set("description", req.Description)
	form.Set("bank_code", req.BankCode)
	form.Set("callback_url", c.config.CallbackURL)
	form.Set("mac", Sign(
		orderMACData(c.config.AppID, req.AppTransID, req.AppUser, req.Amount, req.AppTime, string(embed), string(item)),
		c.config.Key1,
	))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out CreateOrderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrPaymentFailed, resp.StatusCode, string(body))
	}
	if out.ReturnCode != ReturnSuccess || out.OrderURL == "" {
		return nil, fmt.Errorf("%w: %d/%d %s", ErrPaymentFailed, out.ReturnCode, out.SubReturnCode, out.ReturnMessage)
	}
	return &out, nil
}

// VerifyCallback checks the callback mac and decodes its data
func (c *Client) VerifyCallback(cb Callback) (*CallbackData, error) {
	if cb.Data == "" || !equalMAC(Sign(cb.Data, c.config.Key2), cb.MAC) {
		return nil, ErrInvalidMAC
	}
	var data CallbackData
	if err := json.Unmarshal([]byte(cb.Data), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &data, nil
}

// VerifyRedirect checks the redirect checksum
func (c *Client) VerifyRedirect(r *Redirect) error {
	if r == nil || !equalMAC(Sign(redirectMACData(r), c.config.Key2), r.Checksum) {
		return ErrInvalidMAC
	}
	return nil
}

// SignRedirect produces the checksum ZaloPay would attach to r
func (c *Client) SignRedirect(r *Redirect) string {
	return Sign(redirectMACData(r), c.config.Key2)
}
