package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all runtime settings. Every field has a usable default so the
// service boots with in-memory storage and the simulated gateway when nothing
// else is configured.
type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string

	// Storage. Empty PostgresDSN selects the in-memory repositories.
	PostgresDSN string

	// Optional order-status cache. Empty disables it.
	RedisAddr string

	// Optional event relay. Empty disables it.
	KafkaBrokers []string
	KafkaTopic   string

	// Payment gateway. GatewayBaseURL empty selects the simulator.
	GatewayName     string
	GatewayBaseURL  string
	GatewayAPIKey   string
	GatewayTimeout  time.Duration
	SimApproveRate  float64
	SimDeclinedRate float64
}

func Load() Config {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	return Config{
		ServiceName:     getenv("SERVICE_NAME", "storefront"),
		Env:             getenv("ENV", "dev"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		PostgresDSN:     getenv("POSTGRES_DSN", ""),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		KafkaBrokers:    splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:      getenv("KAFKA_TOPIC", "storefront.order.events"),
		GatewayName:     getenv("GATEWAY_NAME", "cardpay"),
		GatewayBaseURL:  getenv("GATEWAY_BASE_URL", ""),
		GatewayAPIKey:   getenv("GATEWAY_API_KEY", ""),
		GatewayTimeout:  getenvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		SimApproveRate:  getenvFloat("SIM_APPROVE_RATE", 0.7),
		SimDeclinedRate: getenvFloat("SIM_DECLINE_RATE", 0.2),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
