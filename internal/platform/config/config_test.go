package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("STRICT_RATE_LIMIT_RATIO", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.InDelta(t, 0.1, cfg.StrictRateRatio, 1e-9)
	assert.False(t, cfg.ObjectStorageEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("STRICT_RATE_LIMIT_RATIO", "0.25")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.ObjectStorageEnabled())
	assert.InDelta(t, 0.25, cfg.StrictRateRatio, 1e-9)
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseURL:        "postgres://localhost/workforce",
		TokenTTL:           time.Hour,
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
		StrictRateRatio:    0.1,
	}
	require.NoError(t, base.Validate())

	missingDB := base
	missingDB.DatabaseURL = ""
	assert.Error(t, missingDB.Validate())

	prod := base
	prod.Environment = "production"
	assert.ErrorContains(t, prod.Validate(), "JWT_SECRET")

	prod.JWTSecret = "secret"
	assert.ErrorContains(t, prod.Validate(), "DATA_ENCRYPTION_KEY")

	prod.DataEncryptionKey = "key"
	require.NoError(t, prod.Validate())

	ratio := base
	ratio.StrictRateRatio = 2
	assert.ErrorContains(t, ratio.Validate(), "STRICT_RATE_LIMIT_RATIO")

	mail := base
	mail.EmailEnabled = true
	assert.ErrorContains(t, mail.Validate(), "SMTP_HOST")

	store := base
	store.MinIOEndpoint = "minio:9000"
	assert.ErrorContains(t, store.Validate(), "MINIO_ACCESS_KEY")
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7,::1")
	cfg := Load()
	prefixes, err := cfg.ProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.168.1.7/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())

	t.Setenv("TRUSTED_PROXIES", "")
	assert.Empty(t, Load().TrustedProxies)

	bad := Config{DatabaseURL: "postgres://localhost/workforce", TokenTTL: time.Hour, MaxBodyBytes: 4096, RateLimitPerMinute: 60, StrictRateRatio: 0.1, TrustedProxies: []string{"10.0.0.0/33"}}
	assert.ErrorContains(t, bad.Validate(), "TRUSTED_PROXIES")
}
