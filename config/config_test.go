package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("RECRUIT_TOKEN_SECRET", "")

	_, err := Parse(nil)
	assert.EqualError(t, err, "missing parameter -token-secret")
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]string{"-token-secret", "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "recruit.sqlite", cfg.DBUrl)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(16<<20), cfg.MaxUpload)
	assert.Equal(t, "http://localhost:8080", cfg.Url())
}

func TestEnvironmentProvidesDefaults(t *testing.T) {
	t.Setenv("RECRUIT_TOKEN_SECRET", "from-env")
	t.Setenv("RECRUIT_PORT", "9000")
	t.Setenv("RECRUIT_DEBUG", "true")

	cfg, err := Parse([]string{"-host", "127.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TokenSecret)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.True(t, cfg.Debug)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("RECRUIT_TOKEN_SECRET", "from-env")
	t.Setenv("RECRUIT_TOKEN_TTL", "not-a-number")

	cfg, err := Parse([]string{"-token-secret", "from-flag", "-token-ttl", "60"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.TokenSecret)
	assert.Equal(t, time.Minute, cfg.TokenTTL)
}
