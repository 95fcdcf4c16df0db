package config

import (
	"os"
	"strconv"
	"strings"
)

// GetAllSettings returns a map of the dynamic settings currently loaded
// in memory, for the diagnostics endpoint.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":         Global.App.Version,
		"app_debug":           Global.App.Debug,
		"app_environment":     Global.App.Environment,
		"db_driver":           Global.Database.Driver,
		"valkey_enabled":      Global.Database.ValkeyEnabled,
		"flow_menu_cooldown":  Global.Routing.WelcomeLockTTL.String(),
		"lane_sweep_interval": Global.Routing.LaneSweepInterval.String(),
		"resolver_stripes":    Global.Routing.ResolverStripes,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}
