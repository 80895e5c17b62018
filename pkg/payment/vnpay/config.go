package vnpay

// Config holds the terminal credentials issued by VNPay
type Config struct {
	TmnCode    string
	HashSecret string

	// PaymentURL is the vpcpay.html checkout page
	PaymentURL string
	ReturnURL  string
	Version    string
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.TmnCode == "" || c.HashSecret == "" {
		return ErrInvalidConfig
	}
	if c.PaymentURL == "" || c.ReturnURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
