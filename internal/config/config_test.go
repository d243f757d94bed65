package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:                      tt.env,
				DBSSLMode:                tt.sslMode,
				JWTSecret:                "secure-secret-at-least-32-chars-long",
				DBPassword:               "secure-password",
				Port:                     "8080",
				DBConnMaxLifetimeMinutes: 1,
				RecipesLimit:             3,
				TracingSampleRatio:       1,
			}

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateRejectsBadValues(t *testing.T) {
	base := Config{Port: "8080", JWTSecret: "secure-secret-at-least-32-chars-long", Env: "development"}

	c := base
	c.RecipesLimit = -1
	assert.Error(t, c.Validate())

	c = base
	c.TracingSampleRatio = 1.5
	assert.Error(t, c.Validate())

	c = base
	c.JWTSecret = ""
	assert.Error(t, c.Validate())

	c = base
	c.Env = "production"
	c.DBPassword = "password"
	c.DBSSLMode = "require"
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 3, c.RecipesLimit)
	assert.Equal(t, 6, c.PageSize)
	assert.Equal(t, "shopping_list.txt", c.ShoppingListFilename)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("RECIPES_LIMIT", "5")
	t.Setenv("PORT", "9090")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, c.RecipesLimit)
	assert.Equal(t, "9090", c.Port)
}

func TestConfig_RateLimitEnabled(t *testing.T) {
	for env, want := range map[string]bool{
		"":            false,
		"test":        false,
		"development": false,
		"stress":      false,
		"staging":     true,
		"production":  true,
	} {
		cfg := &Config{Env: env}
		assert.Equal(t, want, cfg.RateLimitEnabled(), "env %q", env)
	}
}
