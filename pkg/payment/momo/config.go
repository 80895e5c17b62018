package momo

// Config holds the merchant credentials issued by MoMo
type Config struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string

	// Endpoint is the full create-payment URL
	Endpoint string

	// RedirectURL receives the browser after checkout, IPNURL the server notification
	RedirectURL string
	IPNURL      string

	// RequestType defaults to captureWallet
	RequestType string
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.PartnerCode == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	if c.Endpoint == "" || c.RedirectURL == "" || c.IPNURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
