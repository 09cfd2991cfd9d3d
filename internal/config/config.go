// Package config loads tokodash settings from defaults, an optional config
// file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load. Each can be set as an environment variable of the
// same name or as a key in the config file.
const (
	KeyAPIURL      = "API_URL"
	KeyAppPort     = "APP_PORT"
	KeyDatabaseDSN = "DATABASE_DSN"
	KeyJWTSecret   = "JWT_SECRET"
	KeyRabbitMQURL = "RABBITMQ_URL"
	KeyUploadDir   = "UPLOAD_DIR"
	KeyPublicURL   = "PUBLIC_URL"
	KeySessionFile = "SESSION_FILE"
	KeyLogLevel    = "LOG_LEVEL"
	KeyLogFile     = "LOG_FILE"
	KeyHTTPTimeout = "HTTP_TIMEOUT"
)

// Config holds the resolved settings.
type Config struct {
	APIURL      string
	AppPort     string
	DatabaseDSN string
	JWTSecret   string
	RabbitMQURL string
	UploadDir   string
	PublicURL   string
	SessionFile string
	LogLevel    string
	LogFile     string
	HTTPTimeout time.Duration
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "http://localhost:8080")
	v.SetDefault(KeyAppPort, ":8080")
	v.SetDefault(KeyDatabaseDSN, "file:tokodash.db?cache=shared")
	v.SetDefault(KeyJWTSecret, "change-me")
	v.SetDefault(KeyRabbitMQURL, "")
	v.SetDefault(KeyUploadDir, "uploads")
	v.SetDefault(KeyPublicURL, "")
	v.SetDefault(KeySessionFile, defaultSessionFile())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyHTTPTimeout, "15s")
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tokodash-session.json"
	}
	return filepath.Join(home, ".tokodash", "session.json")
}

// Load reads configFile (if not empty) into v and resolves every key.
// Environment variables override the file.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		APIURL:      strings.TrimRight(v.GetString(KeyAPIURL), "/"),
		AppPort:     v.GetString(KeyAppPort),
		DatabaseDSN: v.GetString(KeyDatabaseDSN),
		JWTSecret:   v.GetString(KeyJWTSecret),
		RabbitMQURL: v.GetString(KeyRabbitMQURL),
		UploadDir:   v.GetString(KeyUploadDir),
		PublicURL:   strings.TrimRight(v.GetString(KeyPublicURL), "/"),
		SessionFile: v.GetString(KeySessionFile),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFile:     v.GetString(KeyLogFile),
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyAPIURL)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("%s must be a positive duration", KeyHTTPTimeout)
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost" + cfg.AppPort
	}
	return cfg, nil
}
