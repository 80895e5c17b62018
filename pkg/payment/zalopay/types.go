package zalopay

import (
	"fmt"
	"net/url"
	"strconv"
)

// ReturnSuccess is the return_code ZaloPay uses for an accepted request
const ReturnSuccess = 1

// Item is one line in the item JSON array
type Item struct {
	ItemID    string `json:"itemid"`
	ItemName  string `json:"itemname"`
	ItemPrice int64  `json:"itemprice"`
	Quantity  int    `json:"itemquantity"`
}

// CreateOrderRequest describes one checkout attempt
type CreateOrderRequest struct {
	// AppTransID must be prefixed with the current yymmdd in Vietnam time
	AppTransID  string
	AppUser     string
	Amount      int64
	AppTime     int64
	Description string
	Items       []Item
	BankCode    string
}

// CreateOrderResponse is ZaloPay's answer to v2/create
type CreateOrderResponse struct {
	ReturnCode       int    `json:"return_code"`
	ReturnMessage    string `json:"return_message"`
	SubReturnCode    int    `json:"sub_return_code"`
	SubReturnMessage string `json:"sub_return_message"`
	OrderURL         string `json:"order_url"`
	ZpTransToken     string `json:"zp_trans_token"`
	OrderToken       string `json:"order_token"`
	QRCode           string `json:"qr_code"`
}

// Callback is the body ZaloPay posts to the callback URL
type Callback struct {
	Data string `json:"data"`
	MAC  string `json:"mac"`
	Type int    `json:"type"`
}

// CallbackData is the decoded Data field of a Callback
type CallbackData struct {
	AppID          int64  `json:"app_id"`
	AppTransID     string `json:"app_trans_id"`
	AppTime        int64  `json:"app_time"`
	AppUser        string `json:"app_user"`
	Amount         int64  `json:"amount"`
	EmbedData      string `json:"embed_data"`
	Item           string `json:"item"`
	ZpTransID      int64  `json:"zp_trans_id"`
	ServerTime     int64  `json:"server_time"`
	Channel        int    `json:"channel"`
	MerchantUserID string `json:"merchant_user_id"`
	UserFeeAmount  int64  `json:"user_fee_amount"`
	DiscountAmount int64  `json:"discount_amount"`
}

// CallbackResponse is the JSON body ZaloPay expects back from the callback URL
type CallbackResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

// Redirect holds the query parameters ZaloPay appends to the redirect URL
type Redirect struct {
	AppID          string
	AppTransID     string
	PmcID          string
	BankCode       string
	Amount         int64
	DiscountAmount int64
	Status         int
	Checksum       string
}

// Succeeded reports whether the redirect confirms a captured payment
func (r *Redirect) Succeeded() bool {
	return r.Status == ReturnSuccess
}

// RedirectFromQuery reads a redirect query string
func RedirectFromQuery(q url.Values) (*Redirect, error) {
	r := &Redirect{
		AppID:      q.Get("appid"),
		AppTransID: q.Get("apptransid"),
		PmcID:      q.Get("pmcid"),
		BankCode:   q.Get("bankcode"),
		Checksum:   q.Get("checksum"),
	}
	if r.AppTransID == "" || r.Checksum == "" {
		return nil, ErrInvalidRequest
	}

	var err error
	if r.Amount, err = parseInt64(q, "amount"); err != nil {
		return nil, err
	}
	if r.DiscountAmount, err = parseInt64(q, "discountamount"); err != nil {
		return nil, err
	}
	status, err := parseInt64(q, "status")
	if err != nil {
		return nil, err
	}
	r.Status = int(status)
	return r, nil
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
