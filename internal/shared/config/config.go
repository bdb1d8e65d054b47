// Package config loads application configuration from the environment, with
// an optional .env file for local development.
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
	Server    ServerConfig
	Gateway   GatewayConfig
	Sync      SyncConfig
	Insights  InsightsConfig
	Dashboard DashboardConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type SyncConfig struct {
	AutoSyncInterval time.Duration
	VisibleTimeout   time.Duration
	SettleDelay      time.Duration
	ResultTTL        time.Duration
}

// InsightsConfig carries the tunable rule thresholds. The credit-limit
// stand-in and monthly-expense estimate are approximations used when the
// backend omits real data; they are deliberately configuration, not code.
type InsightsConfig struct {
	DefaultCreditLimit     float64
	MonthlyExpenseEstimate float64
	EmergencyFundMonths    float64
	UtilizationWarning     float64
}

type DashboardConfig struct {
	CacheTTL            time.Duration
	TransactionWindow   time.Duration
	NetWorthSeriesDays  int
	CashFlowHorizonDays int
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", ""),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", ""),
			APIKey:  getEnv("BACKEND_API_KEY", ""),
			Timeout: getDurationEnv("BACKEND_TIMEOUT", 30*time.Second),
		},
		Sync: SyncConfig{
			AutoSyncInterval: getDurationEnv("SYNC_AUTO_INTERVAL", 30*time.Minute),
			VisibleTimeout:   getDurationEnv("SYNC_VISIBLE_TIMEOUT", 8*time.Second),
			SettleDelay:      getDurationEnv("SYNC_SETTLE_DELAY", 5*time.Second),
			ResultTTL:        getDurationEnv("SYNC_RESULT_TTL", 5*time.Second),
		},
		Insights: InsightsConfig{
			DefaultCreditLimit:     getFloatEnv("INSIGHTS_DEFAULT_CREDIT_LIMIT", 1000),
			MonthlyExpenseEstimate: getFloatEnv("INSIGHTS_MONTHLY_EXPENSE_ESTIMATE", 2000),
			EmergencyFundMonths:    getFloatEnv("INSIGHTS_EMERGENCY_FUND_MONTHS", 6),
			UtilizationWarning:     getFloatEnv("INSIGHTS_UTILIZATION_WARNING", 0.8),
		},
		Dashboard: DashboardConfig{
			CacheTTL:            getDurationEnv("DASHBOARD_CACHE_TTL", time.Minute),
			TransactionWindow:   getDurationEnv("DASHBOARD_TRANSACTION_WINDOW", 90*24*time.Hour),
			NetWorthSeriesDays:  getIntEnv("DASHBOARD_NET_WORTH_DAYS", 30),
			CashFlowHorizonDays: getIntEnv("DASHBOARD_CASH_FLOW_DAYS", 14),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "finboard"),
			Environment:  getEnv("OTEL_ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("OTEL_METRICS_PORT", "9090"),
		},
	}

	if cfg.Gateway.BaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if cfg.Insights.UtilizationWarning <= 0 || cfg.Insights.UtilizationWarning > 1 {
		return nil, fmt.Errorf("INSIGHTS_UTILIZATION_WARNING must be in (0, 1]")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
