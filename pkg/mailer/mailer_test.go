package mailer

import (
	"bytes"
	"errors"
	"io"
	"mime/quotedprintable"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captured struct {
	to      []string
	subject []string
	body    string
}

func captureMailer(t *testing.T, sendErr error) (*smtpMailer, *captured) {
	t.Helper()
	c := &captured{}
	return &smtpMailer{
		from: "shop@example.com",
		send: func(m *gomail.Message) error {
			c.to = m.GetHeader("To")
			c.subject = m.GetHeader("Subject")
			var raw bytes.Buffer
			_, err := m.WriteTo(&raw)
			require.NoError(t, err)
			// single-part message: headers, blank line, quoted-printable body
			parts := strings.SplitN(raw.String(), "\r\n\r\n", 2)
			require.Len(t, parts, 2)
			decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(parts[1])))
			require.NoError(t, err)
			c.body = string(decoded)
			return sendErr
		},
	}, c
}

func TestSendOrderConfirmation(t *testing.T) {
	m, c := captureMailer(t, nil)

	err := m.SendOrderConfirmation("lan@example.com", OrderConfirmation{
		CustomerName:   "Lan",
		OrderID:        17,
		Lines:          []OrderLine{{Name: "Serum B5", Quantity: 2, UnitPrice: 320000}},
		TotalPrice:     640000,
		DiscountAmount: 64000,
		TotalPriceSale: 576000,
		PaymentMethod:  "momo",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"lan@example.com"}, c.to)
	assert.Equal(t, []string{"Xác nhận đơn hàng #17"}, c.subject)
	assert.Contains(t, c.body, "Serum B5")
	assert.Contains(t, c.body, "576.000 ₫")
	assert.Contains(t, c.body, "-64.000 ₫")
}

func TestSendPasswordReset(t *testing.T) {
	m, c := captureMailer(t, nil)

	require.NoError(t, m.SendPasswordReset("mai@example.com", "Mai", "http://localhost:3000/reset?token=abc"))
	assert.Contains(t, c.body, "http://localhost:3000/reset?token=abc")
	assert.Contains(t, c.body, "Mai")
}

func TestSendFailure(t *testing.T) {
	m, _ := captureMailer(t, errors.New("connection refused"))
	err := m.SendPasswordReset("mai@example.com", "Mai", "link")
	assert.Error(t, err)
}

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "0 ₫", formatVND(0))
	assert.Equal(t, "999 ₫", formatVND(999))
	assert.Equal(t, "1.000 ₫", formatVND(1000))
	assert.Equal(t, "1.250.000 ₫", formatVND(1250000))
	assert.Equal(t, "-5.000 ₫", formatVND(-5000))
}
