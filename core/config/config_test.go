package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllSettings_ReflectsLoadedConfig(t *testing.T) {
	t.Setenv("RESOLVER_STRIPES", "8")
	t.Setenv("FLOW_MENU_COOLDOWN_SEC", "5")
	t.Setenv("DB_DRIVER", "postgres")

	_, err := LoadConfig()
	require.NoError(t, err)

	settings := GetAllSettings()
	assert.Equal(t, 8, settings["resolver_stripes"])
	assert.Equal(t, "5s", settings["flow_menu_cooldown"])
	assert.Equal(t, "postgres", settings["db_driver"])
}

func TestGetAllSettings_EmptyBeforeLoad(t *testing.T) {
	old := Global
	Global = nil
	defer func() { Global = old }()

	assert.Empty(t, GetAllSettings())
}
