package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.SessionFile)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(KeyAPIURL, "https://shop.example.com/")
	t.Setenv(KeyHTTPTimeout, "3s")
	t.Setenv(KeyRabbitMQURL, "amqp://guest:guest@mq:5672/")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQURL)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokodash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \":9090\"\nUPLOAD_DIR: /srv/uploads\n"), 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "/srv/uploads", cfg.UploadDir)
	assert.Equal(t, "http://localhost:9090", cfg.PublicURL)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv(KeyHTTPTimeout, "0s")
	_, err = Load(viper.New(), "")
	assert.Error(t, err)
}
