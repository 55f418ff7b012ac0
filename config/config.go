package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type StripeConfig struct {
	SecretKey  string
	APIURL     string
	SuccessURL string
	CancelURL  string
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	ReturnURL    string
	CancelURL    string
}

type SMTPConfig struct {
	From     string
	Password string
	Host     string
	Address  string
}

type Config struct {
	Env         string
	Port        string
	DBDriver    string
	DBDSN       string
	JWTSecret   string
	FrontendURL string
	CORSOrigins []string

	OrderGraceWindow time.Duration
	UserGraceWindow  time.Duration
	SweepInterval    time.Duration
	ProviderTimeout  time.Duration

	Stripe StripeConfig
	PayPal PayPalConfig
	SMTP   SMTPConfig

	RedisAddr      string
	SettledKeyTTL  time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
	ReceiptsBucket string
	SentryDSN      string
	OTLPEndpoint   string

	CheckoutRateLimit float64
	CheckoutBurst     int
}

// Load reads configuration from the process environment. Call
// initializers.LoadEnv first so values from .env are visible.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_DSN", "root:secret@tcp(127.0.0.1:3306)/amexan?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("FRONTEND_URL", "http://localhost:4200")
	v.SetDefault("CORS_ORIGINS", "http://localhost:4200,https://www.amexan.store")
	v.SetDefault("ORDER_GRACE_WINDOW", "30m")
	v.SetDefault("USER_GRACE_WINDOW", "1h")
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("PROVIDER_TIMEOUT", "15s")
	v.SetDefault("STRIPE_API_URL", "https://api.stripe.com")
	v.SetDefault("PAYPAL_API_URL", "https://api-m.paypal.com")
	v.SetDefault("SETTLED_KEY_TTL", "48h")
	v.SetDefault("KAFKA_TOPIC", "orders.lifecycle")
	v.SetDefault("CHECKOUT_RATE_LIMIT", 5.0)
	v.SetDefault("CHECKOUT_BURST", 10)

	frontend := strings.TrimRight(v.GetString("FRONTEND_URL"), "/")

	cfg := &Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetString("PORT"),
		DBDriver:    v.GetString("DB_DRIVER"),
		DBDSN:       v.GetString("DB_DSN"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		FrontendURL: frontend,
		CORSOrigins: splitCSV(v.GetString("CORS_ORIGINS")),

		OrderGraceWindow: v.GetDuration("ORDER_GRACE_WINDOW"),
		UserGraceWindow:  v.GetDuration("USER_GRACE_WINDOW"),
		SweepInterval:    v.GetDuration("SWEEP_INTERVAL"),
		ProviderTimeout:  v.GetDuration("PROVIDER_TIMEOUT"),

		Stripe: StripeConfig{
			SecretKey:  v.GetString("STRIPE_SECRET_KEY"),
			APIURL:     v.GetString("STRIPE_API_URL"),
			SuccessURL: frontend + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  frontend + "/payment/cancel",
		},
		PayPal: PayPalConfig{
			ClientID:     v.GetString("PAYPAL_CLIENT_ID"),
			ClientSecret: v.GetString("PAYPAL_CLIENT_SECRET"),
			APIURL:       v.GetString("PAYPAL_API_URL"),
			ReturnURL:    frontend + "/payment/paypal/return",
			CancelURL:    frontend + "/payment/cancel",
		},
		SMTP: SMTPConfig{
			From:     v.GetString("FROM_EMAIL"),
			Password: v.GetString("FROM_EMAIL_PASSWORD"),
			Host:     v.GetString("FROM_EMAIL_SMTP"),
			Address:  v.GetString("SMTP_ADDRESS"),
		},

		RedisAddr:      v.GetString("REDIS_ADDR"),
		SettledKeyTTL:  v.GetDuration("SETTLED_KEY_TTL"),
		KafkaBrokers:   splitCSV(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:     v.GetString("KAFKA_TOPIC"),
		ReceiptsBucket: v.GetString("RECEIPTS_BUCKET"),
		SentryDSN:      v.GetString("SENTRY_DSN"),
		OTLPEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),

		CheckoutRateLimit: v.GetFloat64("CHECKOUT_RATE_LIMIT"),
		CheckoutBurst:     v.GetInt("CHECKOUT_BURST"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
