package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("GATEWAY_BASE_URL", "https://gw.example.com/api/")

	cfg := Load()

	assert.Equal(t, "8002", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "https://gw.example.com/api", cfg.GatewayBaseURL)
	assert.Equal(t, "/uploads", cfg.UploadURLPrefix)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("GATEWAY_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
}

func TestValidateListsMissingKeys(t *testing.T) {
	cfg := Config{GatewayTimeout: time.Second, DBUser: "u", DBName: "db"}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GATEWAY_BASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "TICKET_SECRET")
	assert.NotContains(t, err.Error(), "DB_USER")
}

func TestValidateOK(t *testing.T) {
	cfg := Config{
		DBUser:          "u",
		DBName:          "db",
		JWTSecret:       "s",
		GatewayBaseURL:  "https://gw",
		GatewayUser:     "m",
		GatewayPassword: "p",
		TicketSecret:    "t",
		GatewayTimeout:  time.Second,
	}

	require.NoError(t, cfg.Validate())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Config{Timezone: "Nowhere/Atlantis"}.Location())
}
