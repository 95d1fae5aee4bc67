package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_PORT", "DATABASE_URL", "REDIS_ADDR", "QUEUE_BACKEND", "RATE_LIMIT_PER_MIN", "CORS_ORIGINS", "WEBHOOK_TIMEOUT", "TRUST_PROXY"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.QueueBackend)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeout)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.Production())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("QUEUE_BACKEND", "redis")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TRUST_PROXY", "true")

	cfg := FromEnv()
	assert.True(t, cfg.Production())
	assert.Equal(t, "redis", cfg.QueueBackend)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, 3*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.TrustProxy)
}

func TestFromEnvFallbacks(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("QUEUE_BACKEND", "redis")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")
	t.Setenv("ACCESS_TTL", "soon")
	t.Setenv("TRUST_PROXY", "maybe")

	cfg := FromEnv()
	assert.Equal(t, "memory", cfg.QueueBackend, "no redis address")
	assert.Equal(t, "memory", cfg.RateLimitBackend)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.False(t, cfg.TrustProxy)
}
