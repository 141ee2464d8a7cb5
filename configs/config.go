package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	StorePath    string
	RestaurantID string

	Remote   RemoteConfig
	WhatsApp WhatsAppConfig
	Payments PaymentsConfig
	Sync     SyncConfig
}

type RemoteConfig struct {
	BaseURL string
	APIKey  string
}

type WhatsAppConfig struct {
	BridgeURL string
	DeviceID  string
}

type PaymentsConfig struct {
	GatewayURL string
}

// SyncConfig tunes the queue engine. The retry constants default to
// 5 attempts with a 2s base delay doubling up to 60s.
type SyncConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Interval       time.Duration
	RequestTimeout time.Duration
}

func Load() Config {
	_ = godotenv.Load() // load .env if it exists

	return Config{
		HTTPAddr:     getEnvOrDefault("HTTP_ADDR", ":8080"),
		StorePath:    getEnvOrDefault("STORE_PATH", "offline.db"),
		RestaurantID: getEnvOrDefault("RESTAURANT_ID", ""),
		Remote: RemoteConfig{
			BaseURL: getEnvOrDefault("REMOTE_BASE_URL", "http://localhost:9000"),
			APIKey:  os.Getenv("REMOTE_API_KEY"),
		},
		WhatsApp: WhatsAppConfig{
			BridgeURL: getEnvOrDefault("WHATSAPP_BRIDGE_URL", "http://localhost:9100"),
			DeviceID:  getEnvOrDefault("WHATSAPP_DEVICE_ID", "default"),
		},
		Payments: PaymentsConfig{
			GatewayURL: getEnvOrDefault("PAYMENT_GATEWAY_URL", "http://localhost:9200"),
		},
		Sync: SyncConfig{
			MaxAttempts:    getEnvInt("SYNC_MAX_ATTEMPTS", 5),
			BaseDelay:      getEnvDuration("SYNC_BASE_DELAY", 2*time.Second),
			MaxDelay:       getEnvDuration("SYNC_MAX_DELAY", 60*time.Second),
			Interval:       getEnvDuration("SYNC_INTERVAL", 30*time.Second),
			RequestTimeout: getEnvDuration("SYNC_REQUEST_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
