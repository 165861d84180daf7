package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// devSessionSecret is only accepted when APP_ENV=development.
const devSessionSecret = "tienda-dev-secret-change-me"

// Config groups the process-wide settings. It is built once by Load and passed
// down to constructors; nothing mutates it afterwards.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	DB       DBConfig
	Session  SessionConfig
	Store    StoreConfig
	Upload   UploadConfig
	RabbitMQ RabbitMQConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env          string // development, staging, production
	LogLevel     string
	SeedDemoData bool
}

// IsDevelopment reports whether the app runs in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// HTTPConfig holds the HTTP listener settings.
type HTTPConfig struct {
	Addr      string
	StaticDir string
}

// DBConfig selects the database driver and its DSN.
type DBConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// StoreConfig carries storefront business constants.
type StoreConfig struct {
	Name        string
	DeliveryFee decimal.Decimal
	WhatsApp    string
}

// UploadConfig configures product image uploads.
type UploadConfig struct {
	Dir        string
	PublicPath string
	MaxBytes   int
}

// RabbitMQConfig configures the optional order event publisher.
// An empty URL disables publishing.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// Load reads configuration from an optional .env file and the environment.
// Environment variables take precedence over the file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // the file is optional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "tienda.db")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("UPLOAD_DIR", "static/images/productos")
	v.SetDefault("UPLOAD_PUBLIC_PATH", "/static/images/productos")
	v.SetDefault("MAX_UPLOAD_MB", 16)
	v.SetDefault("STORE_NAME", "Tienda")
	v.SetDefault("DELIVERY_FEE", "20")
	v.SetDefault("STORE_WHATSAPP", "59173138524")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "order_queue")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:          v.GetString("APP_ENV"),
			LogLevel:     v.GetString("LOG_LEVEL"),
			SeedDemoData: v.GetBool("SEED_DEMO_DATA"),
		},
		HTTP: HTTPConfig{
			Addr:      v.GetString("APP_PORT"),
			StaticDir: v.GetString("STATIC_DIR"),
		},
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Session: SessionConfig{
			Secret: v.GetString("SESSION_SECRET"),
			TTL:    v.GetDuration("SESSION_TTL"),
		},
		Store: StoreConfig{
			Name:     v.GetString("STORE_NAME"),
			WhatsApp: v.GetString("STORE_WHATSAPP"),
		},
		Upload: UploadConfig{
			Dir:        v.GetString("UPLOAD_DIR"),
			PublicPath: strings.TrimRight(v.GetString("UPLOAD_PUBLIC_PATH"), "/"),
			MaxBytes:   v.GetInt("MAX_UPLOAD_MB") * 1024 * 1024,
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
	}

	fee, err := decimal.NewFromString(v.GetString("DELIVERY_FEE"))
	if err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_FEE: %w", err)
	}
	if fee.IsNegative() {
		return nil, fmt.Errorf("DELIVERY_FEE must not be negative")
	}
	cfg.Store.DeliveryFee = fee

	switch cfg.DB.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	if cfg.Session.Secret == "" {
		if !cfg.App.IsDevelopment() {
			return nil, fmt.Errorf("SESSION_SECRET is required outside development")
		}
		cfg.Session.Secret = devSessionSecret
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

// UsesDevSecret reports whether the built-in development secret is active.
func (c *Config) UsesDevSecret() bool {
	return c.Session.Secret == devSessionSecret
}
