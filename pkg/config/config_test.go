package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_EMAILS", " ops@whitelotus.is, ,chef@whitelotus.is ")
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "bogus")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("MAIL_PROVIDER", "")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"ops@whitelotus.is", "chef@whitelotus.is"}, cfg.Auth.AdminEmails)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "log", cfg.Mail.Provider)
}
