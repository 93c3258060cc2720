package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("PUBLIC_BACKEND_URL", "https://comuna.site")
	t.Setenv("PUBLIC_INTERNAL_BACKEND_URL", "http://backend:8000")
	t.Setenv("PUBLIC_DEFAULT_FEED", "Local")
	t.Setenv("PUBLIC_LEFT_ALIGN", "true")
	t.Setenv("PUBLIC_SSR_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://comuna.site", cfg.Backend.PublicURL)
	assert.Equal(t, "http://backend:8000", cfg.Backend.InternalURL)
	assert.Equal(t, "Local", cfg.Frontend.DefaultFeed)
	require.NotNil(t, cfg.Frontend.LeftAlign)
	assert.True(t, *cfg.Frontend.LeftAlign)
	assert.True(t, cfg.SSREnabled)
}

func TestLoadConfigToleratesMissingEnvironment(t *testing.T) {
	t.Setenv("PUBLIC_BACKEND_URL", "")
	t.Setenv("PUBLIC_LEFT_ALIGN", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.Backend.PublicURL)
	assert.Nil(t, cfg.Frontend.LeftAlign)
	assert.False(t, cfg.SSREnabled)
}

func TestToBool(t *testing.T) {
	assert.Nil(t, ToBool(""))

	truthy := ToBool("true")
	require.NotNil(t, truthy)
	assert.True(t, *truthy)

	upper := ToBool("TRUE")
	require.NotNil(t, upper)
	assert.True(t, *upper)

	falsy := ToBool("false")
	require.NotNil(t, falsy)
	assert.False(t, *falsy)

	garbage := ToBool("yes")
	require.NotNil(t, garbage)
	assert.False(t, *garbage)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("READER_TEST_KEY", "set")
	assert.Equal(t, "set", GetEnvOrDefault("READER_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnvOrDefault("READER_TEST_KEY_MISSING", "fallback"))
}
