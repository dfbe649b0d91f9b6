package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	Server     ServerConfig
	CORS       CORSConfig
	Log        LogConfig
	Billing    BillingConfig
	Scheduling SchedulingConfig
	RiskScorer RiskScorerConfig
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Database   string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	AccessSecret      string
	AccessTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BillingConfig holds the tariff and discount convention used by the billing calculator.
// Percentages are discounts off total_before_discount.
type BillingConfig struct {
	DailyRate                decimal.Decimal
	HandicapDiscountPercent  decimal.Decimal
	HandicapWaiverPercent    decimal.Decimal
	HandicapWaiverThreshold  decimal.Decimal
	InsuranceDiscountPercent decimal.Decimal
	UninsuredDiscountPercent decimal.Decimal
	DefaultMethod            string
}

type SchedulingConfig struct {
	RequireOnShift bool
	LockInterval   time.Duration
}

type RiskScorerConfig struct {
	URL     string
	Timeout time.Duration
	Retries int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "mysql"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "3306"),
			User:       getEnv("DB_USER", "root"),
			Password:   getEnv("DB_PASSWORD", ""),
			Database:   getEnv("DB_NAME", "hospital_operations"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "hospital.db"),
		},
		JWT: JWTConfig{
			AccessSecret:      getEnv("JWT_ACCESS_SECRET", "your-access-secret-key"),
			AccessTokenExpiry: parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Billing: DefaultBillingConfig(),
		Scheduling: SchedulingConfig{
			RequireOnShift: getEnvBool("ADMISSION_REQUIRE_ON_SHIFT", false),
			LockInterval:   parseDuration(getEnv("SCHEDULE_LOCK_INTERVAL", "1h"), time.Hour),
		},
		RiskScorer: RiskScorerConfig{
			URL:     getEnv("RISK_SCORER_URL", "http://localhost:5000"),
			Timeout: parseDuration(getEnv("RISK_SCORER_TIMEOUT", "10s"), 10*time.Second),
			Retries: getEnvInt("RISK_SCORER_RETRIES", 2),
		},
	}

	config.Billing.DailyRate = getEnvDecimal("BILLING_DAILY_RATE", config.Billing.DailyRate)
	config.Billing.HandicapDiscountPercent = getEnvDecimal("HANDICAP_DISCOUNT_PERCENT", config.Billing.HandicapDiscountPercent)
	config.Billing.HandicapWaiverPercent = getEnvDecimal("HANDICAP_WAIVER_PERCENT", config.Billing.HandicapWaiverPercent)
	config.Billing.HandicapWaiverThreshold = getEnvDecimal("HANDICAP_WAIVER_THRESHOLD", config.Billing.HandicapWaiverThreshold)
	config.Billing.InsuranceDiscountPercent = getEnvDecimal("INSURANCE_DISCOUNT_PERCENT", config.Billing.InsuranceDiscountPercent)
	config.Billing.UninsuredDiscountPercent = getEnvDecimal("UNINSURED_DISCOUNT_PERCENT", config.Billing.UninsuredDiscountPercent)
	config.Billing.DefaultMethod = getEnv("BILLING_DEFAULT_METHOD", config.Billing.DefaultMethod)

	return config
}

// DefaultBillingConfig returns the hospital tariff as shipped.
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DailyRate:                decimal.RequireFromString("30.00"),
		HandicapDiscountPercent:  decimal.NewFromInt(90),
		HandicapWaiverPercent:    decimal.NewFromInt(100),
		HandicapWaiverThreshold:  decimal.NewFromInt(3000),
		InsuranceDiscountPercent: decimal.NewFromInt(20),
		UninsuredDiscountPercent: decimal.Zero,
		DefaultMethod:            "unspecified",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		fmt.Printf("Warning: Invalid integer for %s '%s', using default\n", key, value)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		fmt.Printf("Warning: Invalid boolean for %s '%s', using default\n", key, value)
		return defaultValue
	}
	return b
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		fmt.Printf("Warning: Invalid decimal for %s '%s', using default\n", key, value)
		return defaultValue
	}
	return d
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default\n", s)
		return fallback
	}
	return duration
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
