package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// ServerSettings configures the HTTP server
type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	RulesPath       string        `mapstructure:"rules_path"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port
func (s *ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoadServerSettings reads server settings from an optional file, then
// TPACALC_* environment variables
func LoadServerSettings(path string) (*ServerSettings, error) {
	v := viper.New()
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("rules_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetEnvPrefix("TPACALC")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var settings ServerSettings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse server settings: %w", err)
	}
	if settings.Port <= 0 || settings.Port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", settings.Port)
	}
	return &settings, nil
}
