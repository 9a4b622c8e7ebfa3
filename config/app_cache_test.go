package config

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedotone/landing-api/internal/log"
)

func TestCacheConfig_Unconfigured(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_HOST", "")

	cc := NewCacheConfig()

	assert.False(t, cc.IsConfigured())
	assert.Nil(t, cc.NewCacheOrNil(log.NewLoggerWithJSONOutput()))

	_, err := cc.NewCache(log.NewLoggerWithJSONOutput())
	assert.ErrorIs(t, err, ErrCacheNotConfigured)
}

func TestCacheConfig_ConnectsFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")
	t.Setenv("REDIS_HOST", "")

	cache := NewCacheConfig().NewCacheOrNil(log.NewLoggerWithJSONOutput())
	require.NotNil(t, cache)
	defer CloseCache(cache, log.NewLoggerWithJSONOutput())

	require.NoError(t, cache.Ping(t.Context()))
}

func TestCacheConfig_UnreachableFallsBackToNil(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_HOST", host)
	t.Setenv("REDIS_PORT", port)

	assert.Nil(t, NewCacheConfig().NewCacheOrNil(log.NewLoggerWithJSONOutput()))
}
