package config

import (
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Routing  RoutingConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// RoutingConfig tunes the ticket routing core.
type RoutingConfig struct {
	// WelcomeLockTTL is the welcome-menu cooldown window.
	WelcomeLockTTL time.Duration
	// LaneSweepInterval is how often the expired lane timer job runs.
	LaneSweepInterval time.Duration
	// ResolverStripes is the number of identity mutex stripes in the resolver.
	ResolverStripes int
	// ThankYouMessage is sent (best effort) after a NPS rating is stored.
	ThankYouMessage string
	// OutboundWebhookURL receives outbound ticket messages; empty means
	// sends are logged only.
	OutboundWebhookURL string
	// OutboundWebhookSecret signs webhook payloads (X-Hub-Signature-256).
	OutboundWebhookSecret string
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Version:            getEnv("APP_VERSION", "v1.0.0"),
			Port:               getEnv("APP_PORT", "3000"),
			Debug:              getEnvBool("APP_DEBUG", false),
			Environment:        getEnv("APP_ENV", "production"),
			BasePath:           getEnv("APP_BASE_PATH", ""),
			BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ServerID:           getEnv("APP_SERVER_ID", ""),
			BasicAuth:          splitNonEmpty(getEnv("APP_BASIC_AUTH", "")),
			TrustedProxies:     splitNonEmpty(getEnv("APP_TRUSTED_PROXIES", "")),
			CorsAllowedOrigins: splitNonEmpty(getEnv("APP_CORS_ALLOWED_ORIGINS", "")),
		},
		Paths: PathsConfig{
			BaseDir:  getEnv("APP_BASE_DIR", "storages"),
			Storages: getEnv("APP_STORAGES_DIR", "storages"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "chatia"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "storages/chatia.db"),
			ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
			ValkeyAddress:   getEnv("VALKEY_ADDRESS", "127.0.0.1:6379"),
			ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
			ValkeyDB:        getEnvInt("VALKEY_DB", 0),
			ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "chatia"),
		},
		Routing: RoutingConfig{
			WelcomeLockTTL:        time.Duration(getEnvInt("FLOW_MENU_COOLDOWN_SEC", 8)) * time.Second,
			LaneSweepInterval:     time.Duration(getEnvInt("LANE_SWEEP_INTERVAL_SEC", 60)) * time.Second,
			ResolverStripes:       getEnvInt("RESOLVER_STRIPES", 64),
			ThankYouMessage:       getEnv("NPS_THANK_YOU_MESSAGE", "Obrigado pela sua avaliação! 🙏"),
			OutboundWebhookURL:    getEnv("MESSAGE_WEBHOOK_URL", ""),
			OutboundWebhookSecret: getEnv("MESSAGE_WEBHOOK_SECRET", ""),
		},
	}

	Global = cfg
	return cfg, nil
}

func splitNonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
