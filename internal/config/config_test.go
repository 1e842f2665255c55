package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		// t.Setenv sets the environment variable for the duration of the test
		// and automatically restores it afterwards.
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5432")
		t.Setenv("APP_PORT", "8080")
		t.Setenv("APP_ENV", "test")
		t.Setenv("SERVER_URL", "https://api.example.com/")
		t.Setenv("CLIENT_URL", "https://shop.example.com")
		t.Setenv("SSLCZ_STORE_ID", "store")
		t.Setenv("SSLCZ_STORE_PASSWORD", "store@ssl")
		t.Setenv("SSLCZ_IS_LIVE", "true")
		t.Setenv("GATEWAY_TIMEOUT", "5s")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.com, https://b.com")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "https://api.example.com", cfg.ServerURL)
		assert.Equal(t, "https://shop.example.com", cfg.ClientURL)
		assert.Equal(t, "store", cfg.SSLCommerzStoreID)
		assert.Equal(t, "store@ssl", cfg.SSLCommerzStorePassword)
		assert.True(t, cfg.SSLCommerzIsLive)
		assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.CORSAllowedOrigins)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("APP_PORT", "")
		t.Setenv("GATEWAY_TIMEOUT", "garbage")
		t.Setenv("STORAGE_DISK", "")
		t.Setenv("DB_MAX_OPEN_CONNS", "")

		cfg := LoadConfig()

		assert.Equal(t, "3000", cfg.AppPort)
		assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, "local", cfg.StorageDisk)
		assert.Equal(t, 25, cfg.DBMaxOpenConns)
	})
}
