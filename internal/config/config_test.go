package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OTP_TTL", "")
	t.Setenv("SERVICE_DOMAIN", "")
	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "www.ainager.com", cfg.ServiceDomain)
	assert.Equal(t, "memory", cfg.StateBackend)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.com,https://b.com")
	cfg := Load()
	assert.Equal(t, 90*time.Second, cfg.OTPTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowedOrigins)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	t.Setenv("DB_MAX_CONNS", "many")
	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
}
