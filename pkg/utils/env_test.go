package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPositiveInt(t *testing.T) {
	t.Setenv("DEMO_MAX_SESSIONS", " 25 ")
	assert.Equal(t, 25, GetEnvPositiveInt("DEMO_MAX_SESSIONS", 1000))

	for _, raw := range []string{"", "0", "-4", "many"} {
		t.Setenv("DEMO_MAX_SESSIONS", raw)
		assert.Equal(t, 1000, GetEnvPositiveInt("DEMO_MAX_SESSIONS", 1000), raw)
	}
}

func TestGetEnvPositiveDuration(t *testing.T) {
	t.Setenv("DEMO_TYPING_DELAY", "750ms")
	assert.Equal(t, 750*time.Millisecond, GetEnvPositiveDuration("DEMO_TYPING_DELAY", time.Second))

	t.Setenv("DEMO_TYPING_DELAY", "1500")
	assert.Equal(t, time.Second, GetEnvPositiveDuration("DEMO_TYPING_DELAY", time.Second))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("IP_LOOKUP_DISABLED", "TRUE")
	assert.True(t, GetEnvBool("IP_LOOKUP_DISABLED", false))

	t.Setenv("IP_LOOKUP_DISABLED", "nope")
	assert.False(t, GetEnvBool("IP_LOOKUP_DISABLED", false))
}

func TestServiceIdentity(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("SERVICE_VERSION", "")
	assert.Equal(t, "landing-api", OTelServiceName())
	assert.Equal(t, "dev", OTelServiceVersion())

	t.Setenv("OTEL_SERVICE_NAME", "landing-api-canary")
	assert.Equal(t, "landing-api-canary", OTelServiceName())
}
