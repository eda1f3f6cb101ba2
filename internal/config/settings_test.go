package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerSettings_Defaults(t *testing.T) {
	settings, err := LoadServerSettings("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", settings.Host)
	assert.Equal(t, 8080, settings.Port)
	assert.Equal(t, "info", settings.LogLevel)
	assert.Equal(t, 10*time.Second, settings.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1:8080", settings.Addr())
}

func TestLoadServerSettings_FileAndEnv(t *testing.T) {
	path := writeFile(t, "settings.yaml", "host: 0.0.0.0\nport: 9090\nrules_path: plan.yaml\nshutdown_timeout: 3s\n")
	t.Setenv("TPACALC_LOG_LEVEL", "debug")
	t.Setenv("TPACALC_PORT", "9191")

	settings, err := LoadServerSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", settings.Host)
	assert.Equal(t, 9191, settings.Port, "environment wins over the file")
	assert.Equal(t, "plan.yaml", settings.RulesPath)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, 3*time.Second, settings.ShutdownTimeout)
}

func TestLoadServerSettings_Errors(t *testing.T) {
	_, err := LoadServerSettings(writeFile(t, "bad.yaml", "port: 70000\n"))
	assert.ErrorContains(t, err, "port must be between")

	_, err = LoadServerSettings("/does/not/exist.yaml")
	assert.Error(t, err)
}
