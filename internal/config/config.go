package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		// Driver is "postgres" or "memory". The memory driver keeps all data
		// in process and is meant for demos and local development.
		Driver   string `mapstructure:"driver"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	JWT JWTConfig `mapstructure:"jwt"`

	Billing BillingConfig `mapstructure:"billing"`

	Redis RedisConfig `mapstructure:"redis"`

	Archive ArchiveConfig `mapstructure:"archive"`

	Defaults struct {
		AdminUsername string `mapstructure:"admin_username"`
		AdminPassword string `mapstructure:"admin_password"`
		AdminFullName string `mapstructure:"admin_full_name"`
	} `mapstructure:"defaults"`
}

// BillingConfig holds the invoice numbering and catalog defaults.
type BillingConfig struct {
	InvoicePrefix          string `mapstructure:"invoice_prefix"`
	SequenceWidth          int    `mapstructure:"sequence_width"`
	FiscalYearStartMonth   int    `mapstructure:"fiscal_year_start_month"`
	MaxInvoiceRetries      int    `mapstructure:"max_invoice_retries"`
	DefaultGSTRate         string `mapstructure:"default_gst_rate"`
	DefaultHSNCode         string `mapstructure:"default_hsn_code"`
	DefaultDiscountPercent string `mapstructure:"default_discount_percent"`
	LowStockThreshold      int    `mapstructure:"low_stock_threshold"`
	ExpiryWarningDays      int    `mapstructure:"expiry_warning_days"`
	CompanyStateCode       string `mapstructure:"company_state_code"`
	CompanyStateName       string `mapstructure:"company_state_name"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// IdempotencyTTLMinutes controls how long a replayed POST /api/bills
	// response is kept.
	IdempotencyTTLMinutes int `mapstructure:"idempotency_ttl_minutes"`
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
	Issuer          string `mapstructure:"issuer"`
}

// ArchiveConfig points at an S3 compatible bucket (Cloudflare R2 in
// production) where rendered invoice PDFs are kept.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	v.AutomaticEnv()
	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or config file")
		}
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "Idempotency-Key"})

	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "billing-backend")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "billing_db")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("billing.invoice_prefix", "NH")
	v.SetDefault("billing.sequence_width", 4)
	v.SetDefault("billing.fiscal_year_start_month", 4)
	v.SetDefault("billing.max_invoice_retries", 5)
	v.SetDefault("billing.default_gst_rate", "12")
	v.SetDefault("billing.default_hsn_code", "30049012")
	v.SetDefault("billing.default_discount_percent", "55")
	v.SetDefault("billing.low_stock_threshold", 10)
	v.SetDefault("billing.expiry_warning_days", 90)
	v.SetDefault("billing.company_state_code", "19")
	v.SetDefault("billing.company_state_name", "West Bengal")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.idempotency_ttl_minutes", 60)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.key_prefix", "invoices/")

	v.SetDefault("defaults.admin_username", "admin")
	v.SetDefault("defaults.admin_full_name", "Administrator")
}

// applyEnvOverrides lets DB_*, REDIS_* and R2_* variables win over the
// config file, the same way the deployment manifests set them.
func applyEnvOverrides(cfg *Config) {
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if endpoint := os.Getenv("R2_ENDPOINT"); endpoint != "" {
		cfg.Archive.Endpoint = endpoint
	}
	if key := os.Getenv("R2_ACCESS_KEY"); key != "" {
		cfg.Archive.AccessKey = key
	}
	if secret := os.Getenv("R2_SECRET_KEY"); secret != "" {
		cfg.Archive.SecretKey = secret
	}
	if bucket := os.Getenv("R2_BUCKET"); bucket != "" {
		cfg.Archive.Bucket = bucket
	}

	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Defaults.AdminPassword = pass
	}
}
