// Package mailer renders and delivers transactional email over SMTP.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/lumiskin/skincare-backend/config"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

// OrderLine is one product row in a confirmation email
type OrderLine struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// OrderConfirmation is the data rendered into an order confirmation
type OrderConfirmation struct {
	CustomerName   string
	OrderID        uint
	Lines          []OrderLine
	TotalPrice     float64
	DiscountAmount float64
	TotalPriceSale float64
	PaymentMethod  string
	DetailLink     string
}

type Mailer interface {
	SendOrderConfirmation(to string, data OrderConfirmation) error
	SendPasswordReset(to, name, resetLink string) error
}

type smtpMailer struct {
	from string
	send func(m *gomail.Message) error
}

// NewSMTPMailer returns a Mailer backed by the configured SMTP relay.
// When no host is configured messages are logged and dropped.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return &smtpMailer{from: cfg.From, send: logOnly}
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &smtpMailer{from: cfg.From, send: func(m *gomail.Message) error {
		return dialer.DialAndSend(m)
	}}
}

func logOnly(m *gomail.Message) error {
	logger.Warn("SMTP not configured, email dropped", map[string]interface{}{
		"to":      m.GetHeader("To"),
		"subject": m.GetHeader("Subject"),
	})
	return nil
}

func (s *smtpMailer) SendOrderConfirmation(to string, data OrderConfirmation) error {
	body, err := render(orderConfirmationTmpl, data)
	if err != nil {
		return err
	}
	return s.deliver(to, fmt.Sprintf("Xác nhận đơn hàng #%d", data.OrderID), body)
}

func (s *smtpMailer) SendPasswordReset(to, name, resetLink string) error {
	body, err := render(passwordResetTmpl, map[string]string{
		"Name": name,
		"Link": resetLink,
	})
	if err != nil {
		return err
	}
	return s.deliver(to, "Đặt lại mật khẩu", body)
}

func (s *smtpMailer) deliver(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
