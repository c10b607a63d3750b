package config

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=1h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Payment    PaymentConfig
	Wizard     WizardConfig
	Dispatcher DispatcherConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=cleaning_portal"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// PaymentConfig holds the WaafiPay merchant credentials.
type PaymentConfig struct {
	BaseURL     string        `env:"PAYMENT_BASE_URL,     default=https://api.waafipay.net/asm"`
	MerchantUID string        `env:"PAYMENT_MERCHANT_UID"`
	APIUserID   string        `env:"PAYMENT_API_USER_ID"`
	APIKey      string        `env:"PAYMENT_API_KEY"`
	Currency    string        `env:"PAYMENT_CURRENCY,     default=USD"`
	Timeout     time.Duration `env:"PAYMENT_TIMEOUT,      default=30s"`
}

type WizardConfig struct {
	DraftTTL time.Duration `env:"WIZARD_DRAFT_TTL, default=2h"`
	// Timezone decides what "today" is when rejecting past booking dates.
	Timezone string `env:"WIZARD_TIMEZONE,  default=Africa/Mogadishu"`
}

type DispatcherConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// ClientConfig configures the portalctl command line client.
type ClientConfig struct {
	APIURL    string        `env:"PORTAL_API_URL,    default=http://localhost:8080"`
	TokenFile string        `env:"PORTAL_TOKEN_FILE"`
	Timeout   time.Duration `env:"PORTAL_TIMEOUT,    default=30s"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves the wizard timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Wizard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: wizard timezone: %w", err)
	}
	return loc, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return loadWith(ctx, envconfig.OsLookuper())
}

func loadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient reads the portalctl settings.
func LoadClient(ctx context.Context) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load client configuration: %w", err)
	}
	return &cfg, nil
}
