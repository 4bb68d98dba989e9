package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	// Redis configuration (calendar cache).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`

	// Stripe.
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `mapstructure:"CHECKOUT_CANCEL_URL"`

	// Booking orchestration.
	PaymentTimeoutSeconds int    `mapstructure:"PAYMENT_TIMEOUT_SECONDS"`
	PendingGraceMinutes   int    `mapstructure:"PENDING_GRACE_MINUTES"`
	ReconcileCronSpec     string `mapstructure:"RECONCILE_CRON_SPEC"`

	// Notifications.
	SendgridAPIKey    string `mapstructure:"SENDGRID_API_KEY"`
	SendgridFromEmail string `mapstructure:"SENDGRID_FROM_EMAIL"`
	SendgridFromName  string `mapstructure:"SENDGRID_FROM_NAME"`
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber  string `mapstructure:"TWILIO_FROM_NUMBER"`

	// Invoice artifact lookup root.
	InvoiceDir string `mapstructure:"INVOICE_DIR"`
}

var AppConfig Config

// PaymentTimeout is the bound on every call to the payment processor.
func (c Config) PaymentTimeout() time.Duration {
	return time.Duration(c.PaymentTimeoutSeconds) * time.Second
}

// PendingGrace is how long a PENDING_PAYMENT booking may wait for its
// payment callback before the reconciliation sweep cancels it.
func (c Config) PendingGrace() time.Duration {
	return time.Duration(c.PendingGraceMinutes) * time.Minute
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig reads config.yaml if present and falls back to environment
// variables for everything else.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("PAYMENT_TIMEOUT_SECONDS", 10)
	viper.SetDefault("PENDING_GRACE_MINUTES", 30)
	viper.SetDefault("RECONCILE_CRON_SPEC", "*/10 * * * *")
	viper.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/appointments?payment_status=success")
	viper.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/appointments?payment_status=cancel")
	viper.SetDefault("INVOICE_DIR", "uploads/invoices")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}
