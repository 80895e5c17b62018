package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	OAuth    OAuthConfig
	Payment  PaymentConfig
	S3       S3Config
	Redis    RedisConfig
	SMTP     SMTPConfig
	Facebook FacebookPageConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	BackendURL  string
	FrontendURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type OAuthConfig struct {
	GoogleClientID    string
	GoogleTokenInfo   string
	FacebookAppID     string
	FacebookAppSecret string
	FacebookGraphURL  string
}

type PaymentConfig struct {
	Momo    MomoConfig
	VnPay   VnPayConfig
	ZaloPay ZaloPayConfig
	// Unpaid gateway payments older than this are expired by the sweep job
	ExpiryAfter time.Duration
	SweepSpec   string
}

type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
	RequestType string
}

type VnPayConfig struct {
	TmnCode    string
	HashSecret string
	PaymentURL string
	ReturnURL  string
	Version    string
}

type ZaloPayConfig struct {
	AppID       string
	Key1        string
	Key2        string
	Endpoint    string
	CallbackURL string
	RedirectURL string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AdminConfig seeds the first backoffice account when both fields are set
type AdminConfig struct {
	Email    string
	Password string
}

type FacebookPageConfig struct {
	PageID          string
	PageAccessToken string
	FeedCacheTTL    time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	backendURL := getEnv("BACKEND_URL", "http://localhost:8080")
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			BackendURL:  backendURL,
			FrontendURL: frontendURL,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "skincare"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m")),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h")),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", frontendURL)),
		},
		OAuth: OAuthConfig{
			GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleTokenInfo:   getEnv("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo"),
			FacebookAppID:     getEnv("FACEBOOK_APP_ID", ""),
			FacebookAppSecret: getEnv("FACEBOOK_APP_SECRET", ""),
			FacebookGraphURL:  getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v19.0"),
		},
		Payment: PaymentConfig{
			Momo: MomoConfig{
				PartnerCode: getEnv("MOMO_PARTNER_CODE", ""),
				AccessKey:   getEnv("MOMO_ACCESS_KEY", ""),
				SecretKey:   getEnv("MOMO_SECRET_KEY", ""),
				Endpoint:    getEnv("MOMO_ENDPOINT", "https://test-payment.momo.vn/v2/gateway/api/create"),
				RedirectURL: getEnv("MOMO_REDIRECT_URL", frontendURL+"/payment/momo/return"),
				IPNURL:      getEnv("MOMO_IPN_URL", backendURL+"/api/Momo/ipn"),
				RequestType: getEnv("MOMO_REQUEST_TYPE", "captureWallet"),
			},
			VnPay: VnPayConfig{
				TmnCode:    getEnv("VNPAY_TMN_CODE", ""),
				HashSecret: getEnv("VNPAY_HASH_SECRET", ""),
				PaymentURL: getEnv("VNPAY_PAYMENT_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
				ReturnURL:  getEnv("VNPAY_RETURN_URL", backendURL+"/api/Vnpay/return"),
				Version:    getEnv("VNPAY_VERSION", "2.1.0"),
			},
			ZaloPay: ZaloPayConfig{
				AppID:       getEnv("ZALOPAY_APP_ID", ""),
				Key1:        getEnv("ZALOPAY_KEY1", ""),
				Key2:        getEnv("ZALOPAY_KEY2", ""),
				Endpoint:    getEnv("ZALOPAY_ENDPOINT", "https://sb-openapi.zalopay.vn/v2/create"),
				CallbackURL: getEnv("ZALOPAY_CALLBACK_URL", backendURL+"/api/ZaloPay/callback"),
				RedirectURL: getEnv("ZALOPAY_REDIRECT_URL", backendURL+"/api/ZaloPay/redirect"),
			},
			ExpiryAfter: parseDuration(getEnv("PAYMENT_EXPIRY_AFTER", "15m")),
			SweepSpec:   getEnv("PAYMENT_SWEEP_SPEC", "@every 1m"),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-southeast-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "skincare-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     parseInt(getEnv("SMTP_PORT", "587"), 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@lumiskin.vn"),
		},
		Facebook: FacebookPageConfig{
			PageID:          getEnv("FACEBOOK_PAGE_ID", ""),
			PageAccessToken: getEnv("FACEBOOK_PAGE_ACCESS_TOKEN", ""),
			FeedCacheTTL:    parseDuration(getEnv("FACEBOOK_FEED_CACHE_TTL", "10m")),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if config.Server.Environment == "production" && config.JWT.Secret == "your-secret-key" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default 15m", s)
		return 15 * time.Minute
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
