package iplookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_PicksFirstPublicCandidate(t *testing.T) {
	r := NewCandidateResolver()

	assert.Equal(t, "8.8.8.8", r.Resolve(context.Background(), " 8.8.8.8 ", "1.1.1.1"))
	assert.Equal(t, "1.1.1.1", r.Resolve(context.Background(), "10.0.0.5", "1.1.1.1"))
	assert.Equal(t, "2001:4860:4860::8888", r.Resolve(context.Background(), "", "2001:4860:4860::8888"))
}

func TestResolve_PrivateCandidatesNeverBecomeServerAddress(t *testing.T) {
	var hits atomic.Int32
	egress := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"ip":"203.0.113.77"}`))
	}))
	defer egress.Close()

	cfg := &Config{Endpoint: egress.URL}
	assert.Equal(t, egress.URL, cfg.BrowserLookup().Endpoint)

	r := NewCandidateResolver()
	for _, candidate := range []string{"10.0.0.5", "10.0.0.9", "192.168.1.10", "127.0.0.1", "", "garbage"} {
		assert.Equal(t, Unknown, r.Resolve(context.Background(), candidate), candidate)
	}
	assert.Equal(t, Unknown, r.Resolve(context.Background()))
	assert.Zero(t, hits.Load())
}

func TestConfig_BrowserLookup(t *testing.T) {
	assert.Equal(t, BrowserLookup{Endpoint: DefaultEndpoint, TimeoutMs: 3000, Enabled: true}, (*Config)(nil).BrowserLookup())

	cfg := &Config{Endpoint: " https://ip.example.com/json ", Timeout: 1500 * time.Millisecond, Disabled: true}
	assert.Equal(t, BrowserLookup{Endpoint: "https://ip.example.com/json", TimeoutMs: 1500, Enabled: false}, cfg.BrowserLookup())
}

func TestPublicIP(t *testing.T) {
	assert.Equal(t, "2001:4860:4860::8888", PublicIP("2001:4860:4860::8888"))
	assert.Equal(t, "", PublicIP("::1"))
	assert.Equal(t, "", PublicIP("172.16.0.1"))
	assert.Equal(t, "", PublicIP("garbage"))
}
