package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:        "production",
		Port:       "5000",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		DBDriver:   DriverPostgres,
		DBPassword: "secure-password",
		DBSSLMode:  "require",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid production", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"default secret in production", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"short secret in production", func(c *Config) { c.JWTSecret = "short" }, true},
		{"short secret in development", func(c *Config) { c.Env = "development"; c.JWTSecret = "short" }, false},
		{"weak db password in production", func(c *Config) { c.DBPassword = "password" }, true},
		{"mongo ignores db password", func(c *Config) { c.DBDriver = DriverMongo; c.DBPassword = "" }, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, true},
		{"negative leeway", func(c *Config) { c.JWTLeeway = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, DriverPostgres, c.DBDriver)
	assert.Equal(t, 5*time.Minute, c.ProfileCacheTTL)
	assert.False(t, c.JWTRequireExpiry)
	assert.Equal(t, time.Duration(0), c.JWTLeeway)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.DBAutoMigrate)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("JWT_REQUIRE_EXPIRY", "true")
	t.Setenv("JWT_LEEWAY", "30s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.DBAutoMigrate)
	assert.True(t, c.JWTRequireExpiry)
	assert.Equal(t, 30*time.Second, c.JWTLeeway)
}

func TestLoadConfig_LegacySecretName(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_TOKEN", "legacy-secret-value-that-is-long-enough")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret-value-that-is-long-enough", c.JWTSecret)
}
