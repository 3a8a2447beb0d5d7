package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	AppPort string `yaml:"app_port"`
	GinMode string `yaml:"gin_mode"`

	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieDomain string        `yaml:"cookie_domain"`
	CookieSecure bool          `yaml:"cookie_secure"`
	BcryptCost   int           `yaml:"bcrypt_cost"`

	StoreDriver   string `yaml:"store_driver"`
	DatabaseURL   string `yaml:"database_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	Redis RedisConfig `yaml:"redis"`
	AMQP  AMQPConfig  `yaml:"amqp"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	// CORSAllowAll echoes any origin back when no list is configured.
	CORSAllowAll bool `yaml:"cors_allow_all"`
	// TrustedProxies may set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string `yaml:"trusted_proxies"`

	APIRateLimit   RateLimit `yaml:"api_rate_limit"`
	AuthRateLimit  RateLimit `yaml:"auth_rate_limit"`
	WriteRateLimit RateLimit `yaml:"write_rate_limit"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// RateLimit is Max requests per Window.
type RateLimit struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		AppPort:       "8080",
		GinMode:       "release",
		SessionTTL:    30 * time.Minute,
		CookieName:    "Task_Manager_Auth",
		BcryptCost:    10,
		StoreDriver:   DriverPostgres,
		MongoDatabase: "task_management",
		AMQP: AMQPConfig{
			Exchange: "task_manager.events",
		},
		APIRateLimit:   RateLimit{Max: 120, Window: time.Minute},
		AuthRateLimit:  RateLimit{Max: 10, Window: time.Minute},
		WriteRateLimit: RateLimit{Max: 30, Window: time.Minute},
		LogLevel:       "info",
	}
}

// Load builds the config: defaults, then the YAML file, then .env, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.AppPort, "APP_PORT")
	setString(&cfg.GinMode, "GIN_MODE")

	setString(&cfg.JWTSecret, "JWT_SECRET")
	setDuration(&cfg.SessionTTL, "SESSION_TTL")
	setString(&cfg.CookieName, "COOKIE_NAME")
	setString(&cfg.CookieDomain, "COOKIE_DOMAIN")
	setBool(&cfg.CookieSecure, "COOKIE_SECURE")
	setInt(&cfg.BcryptCost, "BCRYPT_COST")

	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.MongoURI, "MONGO_URI")
	setString(&cfg.MongoDatabase, "MONGO_DATABASE")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.AMQP.URL, "AMQP_URL")
	setString(&cfg.AMQP.Exchange, "AMQP_EXCHANGE")

	setList(&cfg.CORSAllowedOrigins, "CORS_ALLOWED_ORIGINS")
	setBool(&cfg.CORSAllowAll, "CORS_ALLOW_ALL")
	setList(&cfg.TrustedProxies, "TRUSTED_PROXIES")

	setRateLimit(&cfg.APIRateLimit, "API_RATE_LIMIT", "API_RATE_WINDOW_SECONDS")
	setRateLimit(&cfg.AuthRateLimit, "AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW_SECONDS")
	setRateLimit(&cfg.WriteRateLimit, "WRITE_RATE_LIMIT", "WRITE_RATE_WINDOW_SECONDS")

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setBool(&cfg.LogJSON, "LOG_JSON")
}

// Validate checks that the settings needed at startup are present.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.CookieName == "" {
		return errors.New("COOKIE_NAME must not be empty")
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
			}
		}
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is not set")
		}
		if c.MongoDatabase == "" {
			return errors.New("MONGO_DATABASE is not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setList reads a comma separated list
func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setRateLimit(dst *RateLimit, maxKey, windowKey string) {
	if v := os.Getenv(maxKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dst.Max = n
		}
	}
	if v := os.Getenv(windowKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dst.Window = time.Duration(n) * time.Second
		}
	}
}
