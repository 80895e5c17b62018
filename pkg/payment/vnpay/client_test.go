package vnpay

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(Config{
		TmnCode:    "TESTTMN",
		HashSecret: "SECRETKEY",
		PaymentURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/api/Vnpay/return",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{TmnCode: "x"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuildPaymentURL(t *testing.T) {
	client := testClient(t)
	created := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)

	raw, err := client.BuildPaymentURL(PaymentRequest{
		TxnRef:    "12-1714532400",
		Amount:    150000,
		OrderInfo: "Thanh toan don hang 12",
		IPAddr:    "::1",
		CreatedAt: created,
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "sandbox.vnpayment.vn", u.Host)

	q := u.Query()
	assert.Equal(t, "15000000", q.Get("vnp_Amount"))
	assert.Equal(t, "TESTTMN", q.Get("vnp_TmnCode"))
	assert.Equal(t, "127.0.0.1", q.Get("vnp_IpAddr"))
	assert.Equal(t, "20240501100000", q.Get("vnp_CreateDate"))
	assert.Equal(t, "20240501101500", q.Get("vnp_ExpireDate"))
	assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
	assert.NotEmpty(t, q.Get("vnp_SecureHash"))

	// the URL the customer is sent to must verify against the same secret
	params := map[string]string{}
	for k := range q {
		params[k] = q.Get(k)
	}
	assert.True(t, VerifySignature(params, "SECRETKEY"))
	assert.False(t, VerifySignature(params, "OTHER"))
}

func TestBuildPaymentURL_InvalidRequest(t *testing.T) {
	client := testClient(t)
	_, err := client.BuildPaymentURL(PaymentRequest{TxnRef: "1", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func signedReturn() url.Values {
	params := map[string]string{
		"vnp_TxnRef":            "12-1714532400",
		"vnp_Amount":            "15000000",
		"vnp_OrderInfo":         "Thanh toan don hang 12",
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TransactionNo":     "14400000",
		"vnp_BankCode":          "NCB",
		"vnp_PayDate":           "20240501101000",
		"vnp_TmnCode":           "TESTTMN",
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("vnp_SecureHash", Sign(params, "SECRETKEY"))
	return q
}

func TestVerifyReturn(t *testing.T) {
	client := testClient(t)

	result, err := client.VerifyReturn(signedReturn())
	require.NoError(t, err)
	assert.Equal(t, "12-1714532400", result.TxnRef)
	assert.Equal(t, int64(150000), result.Amount)
	assert.Equal(t, "14400000", result.TransactionNo)
	assert.True(t, result.Succeeded())
}

func TestVerifyReturn_Tampered(t *testing.T) {
	client := testClient(t)

	for _, field := range []string{"vnp_Amount", "vnp_ResponseCode", "vnp_TxnRef", "vnp_TransactionNo"} {
		t.Run(field, func(t *testing.T) {
			q := signedReturn()
			q.Set(field, q.Get(field)+"1")
			_, err := client.VerifyReturn(q)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}

	q := signedReturn()
	q.Del("vnp_SecureHash")
	_, err := client.VerifyReturn(q)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestReturnResult_Succeeded(t *testing.T) {
	assert.False(t, (&ReturnResult{ResponseCode: "24"}).Succeeded())
	assert.False(t, (&ReturnResult{ResponseCode: "00", TransactionStatus: "02"}).Succeeded())
	assert.True(t, (&ReturnResult{ResponseCode: "00"}).Succeeded())
}
