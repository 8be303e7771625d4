package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/finance"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	CBRURL           string
	KeyRateCacheTTL  time.Duration
	MarketRateMargin float64 // added to the key rate (in percent) before it is used as a refinance rate

	RefreshSchedule    string
	RefreshConcurrency int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	AlertEmail   string

	AssumptionsFile string
	Assumptions     finance.Assumptions
}

// NewConfig loads configuration from the environment. A .env file in the
// working directory is read first when present; real environment variables win.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DBConn:          getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=analytics sslmode=disable"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		CBRURL:          getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		RefreshSchedule: getEnv("KPI_REFRESH_SCHEDULE", "@every 15m"),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SenderEmail:     getEnv("SENDER_EMAIL", "analytics@localhost"),
		AlertEmail:      getEnv("ALERT_EMAIL", ""),
		AssumptionsFile: getEnv("ASSUMPTIONS_FILE", ""),
		Assumptions:     finance.DefaultAssumptions(),
	}

	var err error
	if cfg.KeyRateCacheTTL, err = time.ParseDuration(getEnv("KEY_RATE_CACHE_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid KEY_RATE_CACHE_TTL: %w", err)
	}
	if cfg.MarketRateMargin, err = strconv.ParseFloat(getEnv("MARKET_RATE_MARGIN", "2.0"), 64); err != nil {
		return nil, fmt.Errorf("invalid MARKET_RATE_MARGIN: %w", err)
	}
	if cfg.RefreshConcurrency, err = strconv.Atoi(getEnv("KPI_REFRESH_CONCURRENCY", "4")); err != nil {
		return nil, fmt.Errorf("invalid KPI_REFRESH_CONCURRENCY: %w", err)
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RefreshConcurrency < 1 {
		return nil, fmt.Errorf("KPI_REFRESH_CONCURRENCY must be positive, got %d", cfg.RefreshConcurrency)
	}

	if cfg.AssumptionsFile != "" {
		a, err := LoadAssumptions(cfg.AssumptionsFile)
		if err != nil {
			return nil, err
		}
		cfg.Assumptions = a
	}

	return cfg, nil
}

// LoadAssumptions reads engine policy constants from a YAML file. Keys that
// are absent keep their default values.
func LoadAssumptions(path string) (finance.Assumptions, error) {
	a := finance.DefaultAssumptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("failed to read assumptions file: %w", err)
	}
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("failed to parse assumptions file: %w", err)
	}
	return a, nil
}

// EmailEnabled reports whether risk alerts can be mailed
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.AlertEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
