package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
)

type Config struct {
	// HTTP Server
	Port       string
	AppEnv     string
	LogLevel   string
	CORSOrigin string

	// Database
	DBDriver           string
	DBConnectionString string

	// Tokens
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	CookieSecure       bool

	BcryptCost int

	// 0 means no upper bound on the transaction list page size.
	TransactionListMaxLimit int

	// malformed values seen by Load, reported by Validate
	envProblems []string
}

// Load reads the .env file if present and builds the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	accessExpiry, err := getEnvDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	refreshExpiry, err := getEnvDuration("REFRESH_TOKEN_EXPIRY", 240*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:       getEnv("PORT", "8000"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),

		DBDriver:           getEnv("DB_DRIVER", database.DriverPostgres),
		DBConnectionString: os.Getenv("DB_CONNECTION_STRING"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: refreshExpiry,
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
	}
	cfg.BcryptCost = cfg.getEnvInt("BCRYPT_COST", 12)
	cfg.TransactionListMaxLimit = cfg.getEnvInt("TRANSACTION_LIST_MAX_LIMIT", 0)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.envProblems...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBDriver != database.DriverPostgres && c.DBDriver != database.DriverSQLite {
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be one of [%s %s]", c.DBDriver, database.DriverPostgres, database.DriverSQLite))
	}
	if c.DBConnectionString == "" {
		problems = append(problems, "missing DB_CONNECTION_STRING")
	}

	if c.AccessTokenSecret == "" {
		problems = append(problems, "missing ACCESS_TOKEN_SECRET")
	}
	if c.RefreshTokenSecret == "" {
		problems = append(problems, "missing REFRESH_TOKEN_SECRET")
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		problems = append(problems, "ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTokenExpiry <= 0 {
		problems = append(problems, "ACCESS_TOKEN_EXPIRY must be positive")
	}
	if c.RefreshTokenExpiry <= c.AccessTokenExpiry {
		problems = append(problems, "REFRESH_TOKEN_EXPIRY must be longer than ACCESS_TOKEN_EXPIRY")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		problems = append(problems, fmt.Sprintf("invalid BCRYPT_COST %d: must be between 4 and 31", c.BcryptCost))
	}
	if c.TransactionListMaxLimit < 0 {
		problems = append(problems, "TRANSACTION_LIST_MAX_LIMIT must not be negative")
	}

	if len(problems) > 0 {
		return errors.New("configuration errors: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt records a problem instead of falling back when the value is not an integer.
func (c *Config) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		c.envProblems = append(c.envProblems, fmt.Sprintf("invalid %s '%s': must be a whole number", key, value))
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := ParseExpiry(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", key, value, err)
	}
	return d, nil
}

// ParseExpiry accepts Go durations plus a whole-day suffix ("10d").
func ParseExpiry(value string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count: %w", err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}
