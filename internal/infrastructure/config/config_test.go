package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV_TYPE", "LOCAL")

	cfg := LoadConfig()

	assert.Equal(t, "LOCAL", cfg.EnvType)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "fire_alert.db", cfg.GetDSN())
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "fire/sensor/status", cfg.MQTTSensorTopic)
	assert.Equal(t, 24, cfg.JWTExpiryHours)
	assert.Equal(t, "admin@fire.com", cfg.DefaultAdminEmail)
	assert.Equal(t, 5*time.Second, cfg.DBQueryTimeout)
}

func TestLoadConfigPrefixedValues(t *testing.T) {
	t.Setenv("ENV_TYPE", "server")
	t.Setenv("SERVER_DB_DRIVER", "mysql")
	t.Setenv("SERVER_DB_HOST", "db")
	t.Setenv("SERVER_DB_USER", "fire")
	t.Setenv("SERVER_DB_PASSWORD", "secret")
	t.Setenv("SERVER_DB_NAME", "firedb")
	t.Setenv("SERVER_SERVER_PORT", "9000")
	t.Setenv("JWT_SECRET_KEY", "prod-key")
	t.Setenv("DB_QUERY_TIMEOUT", "3")

	cfg := LoadConfig()

	assert.Equal(t, "SERVER", cfg.EnvType)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "prod-key", cfg.JWTSecretKey)
	assert.Equal(t, 3*time.Second, cfg.DBQueryTimeout)
	assert.Contains(t, cfg.GetDSN(), "fire:secret@tcp(db:3306)/firedb")
}

func TestLoadConfigServerRequiresSecret(t *testing.T) {
	t.Setenv("ENV_TYPE", "SERVER")
	t.Setenv("JWT_SECRET_KEY", "")

	assert.Panics(t, func() { LoadConfig() })
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "12")
	t.Setenv("X_BAD_INT", "twelve")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_FLOAT", "2.5")
	t.Setenv("X_DUR", "250ms")

	assert.Equal(t, 12, getEnvAsInt("X_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("X_BAD_INT", 1))
	assert.True(t, getEnvAsBool("X_BOOL", false))
	assert.Equal(t, 2.5, getEnvAsFloat("X_FLOAT", 0))
	assert.Equal(t, 250*time.Millisecond, getEnvAsDuration("X_DUR", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("X_MISSING", time.Second))
}
