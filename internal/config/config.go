package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Till"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"till"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Secret string `envconfig:"AUTH_SECRET"`
	}

	// Till identifies the register terminal when running the cashier TUI.
	Till struct {
		TenantID string `envconfig:"TILL_TENANT_ID"`
		UserID   string `envconfig:"TILL_USER_ID"`
	}

	// POS holds per-deployment register policy. These values are consumed
	// by the sale engine, never computed by it.
	POS struct {
		CurrencyCode       string        `envconfig:"POS_CURRENCY" default:"EUR"`
		CurrencyPrecision  int32         `envconfig:"POS_CURRENCY_PRECISION" default:"2"`
		ReceiptPrefix      string        `envconfig:"POS_RECEIPT_PREFIX" default:"RCP"`
		InvoicePrefix      string        `envconfig:"POS_INVOICE_PREFIX" default:"INV"`
		NumberWidth        int           `envconfig:"POS_NUMBER_WIDTH" default:"6"`
		MaxDiscountPercent float64       `envconfig:"POS_MAX_DISCOUNT_PERCENT" default:"100"`
		CancelWindow       time.Duration `envconfig:"POS_CANCEL_WINDOW" default:"24h"`
		EnabledMethods     []string      `envconfig:"POS_ENABLED_METHODS" default:"cash,card,transfer,credit"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
