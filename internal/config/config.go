package config

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the process configuration, resolved once at startup.
type Config struct {
	AppPort string

	DatabaseDriver string // sqlite, postgres or memory
	DatabaseDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	RabbitMQURL      string
	RabbitMQExchange string

	UploadDir     string
	UploadBaseURL string

	LowStockThreshold int
	DeliveryCharge    decimal.Decimal
	FreeDeliveryOver  decimal.Decimal

	LogLevel  string
	LogFormat string
}

// Defaults registers the default value of every key on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:pharmacy.db?cache=shared")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "pharmacy")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_BASE_URL", "/uploads")
	v.SetDefault("LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("DELIVERY_CHARGE", "40")
	v.SetDefault("FREE_DELIVERY_OVER", "500")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads configuration from the environment on top of the defaults.
func Load() Config {
	v := viper.New()
	Defaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:           v.GetString("APP_PORT"),
		DatabaseDriver:    v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:  v.GetString("RABBITMQ_EXCHANGE"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		UploadBaseURL:     v.GetString("UPLOAD_BASE_URL"),
		LowStockThreshold: v.GetInt("LOW_STOCK_THRESHOLD"),
		DeliveryCharge:    money(v.GetString("DELIVERY_CHARGE")),
		FreeDeliveryOver:  money(v.GetString("FREE_DELIVERY_OVER")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
	}
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
