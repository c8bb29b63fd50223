package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	Env      string // production | development
	MySQL    MySQLConfig
	Redis    RedisConfig
	JWT      JWTConfig
	PayU     PayUConfig
	Cache    CacheConfig
	Reaper   ReaperConfig
	AMQP     AMQPConfig
	Domains  DomainConfig
	Migrate  bool
	HTTPAddr string
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration for the admin surface
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// PayUConfig holds payment gateway credentials and endpoints
type PayUConfig struct {
	Key         string
	Salt        string
	PaymentURL  string // gateway endpoint the signed form is posted to
	CallbackURL string // base URL for surl/furl callbacks
	FrontendURL string // default redirect target when the order carries no tenant domain
}

// CacheConfig holds TTLs for the read-through caches
type CacheConfig struct {
	BrandTTLSec int
	CORSTTLSec  int
}

// ReaperConfig holds abandoned-order reaper configuration
type ReaperConfig struct {
	Enabled       bool
	IntervalSec   int
	StaleAfterMin int
}

// AMQPConfig holds the optional payment-event publisher configuration
type AMQPConfig struct {
	URL      string // empty disables publishing
	Exchange string
}

// DomainConfig holds domain onboarding configuration
type DomainConfig struct {
	DNSCheckEnabled bool
	Denylist        []string
}

// IsProduction reports whether the service runs in production mode. Outside
// production the tenant resolver pins to localhost and the CORS gate admits
// every origin.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "shopgate"),
		},
		PayU: PayUConfig{
			Key:         getEnv("PAYU_KEY", ""),
			Salt:        getEnv("PAYU_SALT", ""),
			PaymentURL:  getEnv("PAYU_PAYMENT_URL", "https://secure.payu.in/_payment"),
			CallbackURL: getEnv("PAYU_CALLBACK_URL", ""),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Cache: CacheConfig{
			BrandTTLSec: getEnvInt("BRAND_CACHE_TTL_SEC", 300),
			CORSTTLSec:  getEnvInt("CORS_CACHE_TTL_SEC", 120),
		},
		Reaper: ReaperConfig{
			Enabled:       getEnv("ORDER_REAPER_ENABLED", "1") == "1",
			IntervalSec:   getEnvInt("ORDER_REAPER_INTERVAL_SEC", 600),
			StaleAfterMin: getEnvInt("ORDER_STALE_AFTER_MIN", 30),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "shopgate.events"),
		},
		Domains: DomainConfig{
			DNSCheckEnabled: getEnv("DOMAIN_DNS_CHECK_ENABLED", "1") == "1",
			Denylist:        splitList(getEnv("DOMAIN_DENYLIST", "localhost,127.0.0.1")),
		},
		Migrate:  getEnv("MIGRATE", "0") == "1",
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// Validate required fields
	if cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IsProduction() {
		if cfg.PayU.Key == "" || cfg.PayU.Salt == "" {
			return nil, fmt.Errorf("PAYU_KEY and PAYU_SALT are required in production")
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		Env: getValue("APP_ENV", "app", "env", "development"),
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "shopgate"),
		},
		PayU: PayUConfig{
			Key:         getValue("PAYU_KEY", "payu", "key", ""),
			Salt:        getValue("PAYU_SALT", "payu", "salt", ""),
			PaymentURL:  getValue("PAYU_PAYMENT_URL", "payu", "payment_url", "https://secure.payu.in/_payment"),
			CallbackURL: getValue("PAYU_CALLBACK_URL", "payu", "callback_url", ""),
			FrontendURL: getValue("FRONTEND_URL", "payu", "frontend_url", "http://localhost:3000"),
		},
		Cache: CacheConfig{
			BrandTTLSec: getValueInt("BRAND_CACHE_TTL_SEC", "cache", "brand_ttl_sec", 300),
			CORSTTLSec:  getValueInt("CORS_CACHE_TTL_SEC", "cache", "cors_ttl_sec", 120),
		},
		Reaper: ReaperConfig{
			Enabled:       getValueBool("ORDER_REAPER_ENABLED", "reaper", "enabled", true),
			IntervalSec:   getValueInt("ORDER_REAPER_INTERVAL_SEC", "reaper", "interval_sec", 600),
			StaleAfterMin: getValueInt("ORDER_STALE_AFTER_MIN", "reaper", "stale_after_min", 30),
		},
		AMQP: AMQPConfig{
			URL:      getValue("AMQP_URL", "amqp", "url", ""),
			Exchange: getValue("AMQP_EXCHANGE", "amqp", "exchange", "shopgate.events"),
		},
		Domains: DomainConfig{
			DNSCheckEnabled: getValueBool("DOMAIN_DNS_CHECK_ENABLED", "domains", "dns_check_enabled", true),
			Denylist:        splitList(getValue("DOMAIN_DENYLIST", "domains", "denylist", "localhost,127.0.0.1")),
		},
		Migrate:  getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
	}

	// Validate required fields
	if cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}
