package config

import (
	"testing"
	"time"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	for _, key := range []string{"WAITLIST_STORE", "WAITLIST_STORE_TIMEOUT", "IP_LOOKUP_DISABLED", "DEMO_MAX_SESSIONS", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := NewAppConfig()

	if cfg.WaitlistStore != "postgres" {
		t.Fatalf("expected postgres store by default, got %q", cfg.WaitlistStore)
	}
	if !cfg.NeedsDatabase() {
		t.Fatal("expected the default store to need a database")
	}
	if cfg.WaitlistStoreTimeout != 10*time.Second {
		t.Fatalf("unexpected store timeout %v", cfg.WaitlistStoreTimeout)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if cfg.IPLookupDisabled {
		t.Fatal("expected IP lookup to be enabled by default")
	}
	if cfg.DemoMaxSessions != 0 {
		t.Fatalf("expected demo defaults to be left to the demo package, got %d", cfg.DemoMaxSessions)
	}
}

func TestNewAppConfig_FromEnvironment(t *testing.T) {
	t.Setenv("WAITLIST_STORE", " REST ")
	t.Setenv("WAITLIST_STORE_URL", `"https://example.supabase.co"`)
	t.Setenv("WAITLIST_STORE_KEY", "anon-key")
	t.Setenv("WAITLIST_STORE_TIMEOUT", "4s")
	t.Setenv("WAITLIST_ADMIN_TOKEN", "s3cret")
	t.Setenv("IP_LOOKUP_DISABLED", "true")
	t.Setenv("DEMO_TYPING_DELAY", "250ms")
	t.Setenv("DEMO_MAX_SESSIONS", "20")
	t.Setenv("DEMO_SESSION_TTL", "5m")

	cfg := NewAppConfig()

	if cfg.WaitlistStore != WaitlistStoreREST || cfg.NeedsDatabase() {
		t.Fatalf("expected REST store without database, got %q", cfg.WaitlistStore)
	}
	if cfg.WaitlistStoreURL != "https://example.supabase.co" {
		t.Fatalf("expected quotes stripped from store URL, got %q", cfg.WaitlistStoreURL)
	}
	if cfg.WaitlistStoreKey != "anon-key" || cfg.WaitlistAdminToken != "s3cret" {
		t.Fatal("expected store key and admin token to be read")
	}
	if cfg.WaitlistStoreTimeout != 4*time.Second {
		t.Fatalf("unexpected store timeout %v", cfg.WaitlistStoreTimeout)
	}
	if !cfg.IPLookupDisabled {
		t.Fatal("expected IP lookup to be disabled")
	}
	if cfg.DemoTypingDelay != 250*time.Millisecond || cfg.DemoMaxSessions != 20 || cfg.DemoSessionTTL != 5*time.Minute {
		t.Fatalf("unexpected demo settings %+v", cfg)
	}
}

func TestNewAppConfig_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "-3")
	t.Setenv("WAITLIST_STORE_TIMEOUT", "soon")
	t.Setenv("DEMO_MAX_SESSIONS", "lots")

	cfg := NewAppConfig()

	if cfg.RateLimitRequests != 100 {
		t.Fatalf("expected default rate limit, got %d", cfg.RateLimitRequests)
	}
	if cfg.WaitlistStoreTimeout != 10*time.Second {
		t.Fatalf("expected default store timeout, got %v", cfg.WaitlistStoreTimeout)
	}
	if cfg.DemoMaxSessions != 0 {
		t.Fatalf("expected demo max sessions unset, got %d", cfg.DemoMaxSessions)
	}
}
