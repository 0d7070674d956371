package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", strings.Repeat("ab", 32))
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "actsofsharing", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Len(t, cfg.EncKey, 32)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENCRYPTION_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadEncryptionKey(t *testing.T) {
	setRequired(t)
	t.Setenv("ENCRYPTION_KEY", "not-hex")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ENCRYPTION_KEY", "abcd") // valid hex, wrong length
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRY", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
}
