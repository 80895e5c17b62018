package zalopay

// Config holds the merchant application issued by ZaloPay
type Config struct {
	AppID string

	// Key1 signs outgoing requests, Key2 verifies callbacks and redirects
	Key1 string
	Key2 string

	// Endpoint is the full v2/create URL
	Endpoint    string
	CallbackURL string
	RedirectURL string
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.AppID == "" || c.Key1 == "" || c.Key2 == "" {
		return ErrInvalidConfig
	}
	if c.Endpoint == "" || c.CallbackURL == "" {
		return ErrInvalidConfig
	}
	return nil
}
