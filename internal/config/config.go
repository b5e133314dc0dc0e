package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Host            string
	Port            int
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBMaxConns int
	DBMinConns int

	// Exchange
	ExchangeBaseURL       string
	ExchangeTimeout       time.Duration
	ExchangeRetryAttempts int

	// Behavior
	PageSize     int
	Env          string
	RunCreateAll bool
	Debug        bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// HTTP
		Host:            envStr("HOST", "0.0.0.0"),
		Port:            envInt("PORT", 8000),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "pricetrack"),
		DBUser:     envStr("DB_USER", "postgres"),
		DBPassword: envStr("DB_PASSWORD", ""),
		DBMaxConns: envInt("DB_MAX_CONNS", 20),
		DBMinConns: envInt("DB_MIN_CONNS", 2),

		// Exchange
		ExchangeBaseURL:       envStr("EXCHANGE_BASE_URL", "https://api.kucoin.com"),
		ExchangeTimeout:       time.Duration(envInt("EXCHANGE_TIMEOUT_SECONDS", 10)) * time.Second,
		ExchangeRetryAttempts: envInt("EXCHANGE_RETRY_ATTEMPTS", 1),

		// Behavior
		PageSize:     envInt("PAGE_SIZE", 10),
		Env:          strings.ToLower(envStr("ENV", "development")),
		RunCreateAll: envBool("RUN_CREATE_ALL", true),
		Debug:        envBool("DEBUG", false),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.PageSize < 1 {
		errs = append(errs, "PAGE_SIZE must be a positive integer")
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "PORT must be a valid TCP port")
	}
	if c.DBMaxConns < 1 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, "DB_MIN_CONNS/DB_MAX_CONNS must describe a valid pool range")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set — REST API has no authentication")
	}
	if c.Debug && c.Env == "production" {
		fmt.Println("[WARN] DEBUG enabled in production — error responses will expose internal detail")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Price Tracker Configuration ===")
	fmt.Printf("Environment: %s\n", c.Env)
	fmt.Printf("Listen: %s:%d\n", c.Host, c.Port)
	fmt.Printf("Database: %s:%d/%s (pool %d-%d)\n", c.DBHost, c.DBPort, c.DBName, c.DBMinConns, c.DBMaxConns)
	fmt.Printf("Exchange: %s (timeout %s, attempts %d)\n", c.ExchangeBaseURL, c.ExchangeTimeout, c.ExchangeRetryAttempts)
	fmt.Printf("Page size: %d\n", c.PageSize)
	fmt.Printf("Schema bootstrap: %v\n", c.RunCreateAll)
	fmt.Printf("Auth: %s\n", boolLabel(c.APIKey != "", "enabled (Bearer token)", "disabled"))
	fmt.Println("===================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
