package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "  s3cret  ")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 60*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, BackendNone, cfg.MQ.Backend)
	assert.Equal(t, BackendNone, cfg.Storage.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "k")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_USE_SSL", "true")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("MQ_BACKEND", "RabbitMQ")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.True(t, cfg.Database.UseSSL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, BackendRabbitMQ, cfg.MQ.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfig_BadValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Auth: AuthConfig{JWTSecret: "k", JWTAlgorithm: "HS256", TokenTTL: time.Hour}}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "JWT_SECRET is required"},
		{name: "asymmetric algorithm", mutate: func(c *Config) { c.Auth.JWTAlgorithm = "RS256" }, wantErr: "JWT_ALGORITHM"},
		{name: "none algorithm", mutate: func(c *Config) { c.Auth.JWTAlgorithm = "none" }, wantErr: "JWT_ALGORITHM"},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTL = 0 }, wantErr: "JWT_TTL"},
		{name: "unknown mq", mutate: func(c *Config) { c.MQ.Backend = "kafka" }, wantErr: "MQ_BACKEND"},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Backend = "s3" }, wantErr: "STORAGE_BACKEND"},
		{name: "bad proxy", mutate: func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/99"} }, wantErr: "TRUSTED_PROXIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTrustedProxyPrefixes(t *testing.T) {
	t.Setenv("JWT_SECRET", "k")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1,,::ffff:198.51.100.4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
		netip.MustParsePrefix("198.51.100.4/32"),
	}, prefixes)

	cfg.TrustedProxies = []string{"proxy.internal"}
	_, err = cfg.TrustedProxyPrefixes()
	assert.ErrorContains(t, err, "proxy.internal")
}
