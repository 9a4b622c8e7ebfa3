package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onedotone/landing-api/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountTestController(rs *RouterService) {
	ctrl := NewRESTController("TestController", "/", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "ip", func(ctx *RequestContext) *ServiceResult {
			return OKResult(ctx.ClientIP(), "ok")
		})

		rs.AddPostHandler(c, nil, "echo", func(ctx *RequestContext) *ServiceResult {
			var payload map[string]any
			if err := ctx.ShouldBindJSON(&payload); err != nil {
				return BadRequestResult("bad", nil)
			}
			return OKResult(payload, "ok")
		})
	})

	rs.MountController(ctrl)
}

func newTestRouterService(t *testing.T) *RouterService {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()
	return CreateRouterService(logger, nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
}

func TestTrustedProxies_DisabledByDefault(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code    int    `json:"code"`
		Data    string `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Data != "10.0.0.2" {
		t.Fatalf("expected ClientIP to use RemoteAddr when trusted proxies disabled; got %q", resp.Data)
	}
}

func TestTrustedProxies_StarTrustsForwardedFor(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "*")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code    int    `json:"code"`
		Data    string `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Data != "1.1.1.1" {
		t.Fatalf("expected ClientIP to use X-Forwarded-For when trusted proxies enabled; got %q", resp.Data)
	}
}

func TestMaxBodySize_Returns413(t *testing.T) {
	t.Setenv("MAX_REQUEST_BODY_BYTES", "10")

	rs := newTestRouterService(t)
	mountTestController(rs)

	body := bytes.Repeat([]byte{'a'}, 50)
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRawGetHandler_WritesOwnResponse(t *testing.T) {
	rs := newTestRouterService(t)
	rs.MountController(NewRESTController("PageController", "", func(rs *RouterService, c *RESTController) {
		rs.AddRawGetHandler(c, nil, "", func(ctx *RequestContext) {
			ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<p>hello</p>"))
		})
	}))

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>hello</p>", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestStreamHandler_NotBoundByRequestTimeout(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()
	rs := CreateRouterService(logger, nil, &RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    10 * time.Millisecond,
	})

	var deadlineSet bool
	rs.MountController(NewVersionedRESTController("StreamController", "v1", "/stream", func(rs *RouterService, c *RESTController) {
		rs.AddStreamHandler(c, nil, "", func(ctx *RequestContext) {
			_, deadlineSet = ctx.Request.Context().Deadline()
			ctx.String(http.StatusOK, "done")
		})
	}))

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stream", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, deadlineSet)
}

func TestHandlerRateLimitOverride(t *testing.T) {
	rs := newTestRouterService(t)
	rs.MountController(NewVersionedRESTController("LimitedController", "v1", "/limited", func(rs *RouterService, c *RESTController) {
		rs.AddPostHandler(c, rs.NewRateLimiter("limited", 1, time.Minute), "", func(ctx *RequestContext) *ServiceResult {
			return OKResult(nil, "ok")
		})
	}))

	first := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/limited", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("X-RateLimit-Limit"))
}

func TestMetricsRegisterer_ServedOnMetricsEndpoint(t *testing.T) {
	rs := newTestRouterService(t)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_events_total", Help: "test"})
	rs.MetricsRegisterer().MustRegister(counter)
	counter.Inc()

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "router_test_events_total 1")
}

func TestUnmappedRoute_Returns404(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateRoute_Panics(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	assert.Panics(t, func() {
		rs.MountController(NewRESTController("Other", "", func(rs *RouterService, c *RESTController) {
			rs.AddGetHandler(c, nil, "/ip", func(ctx *RequestContext) *ServiceResult { return OKResult(nil, "ok") })
		}))
	})
}

func TestControllerRateLimit_AppliesToEveryHandler(t *testing.T) {
	rs := newTestRouterService(t)
	ctrl := NewVersionedRESTController("Scoped", "v1", "scoped", func(rs *RouterService, c *RESTController) {
		rs.AddGetHandler(c, nil, "a", func(ctx *RequestContext) *ServiceResult { return OKResult(nil, "a") })
		rs.AddGetHandler(c, nil, "b", func(ctx *RequestContext) *ServiceResult { return OKResult(nil, "b") })
	})
	ctrl.RateLimitWith(rs, rs.NewRateLimiter("scoped", 1, time.Minute))
	rs.MountController(ctrl)

	first := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/scoped/a", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/scoped/a", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestCORS_PreflightForAllowedOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://1dot1.ai, https://www.1dot1.ai")

	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodOptions, "/echo", nil)
	req.Header.Set("Origin", "https://www.1dot1.ai")
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, "https://www.1dot1.ai", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	t.Setenv("HSTS_ENABLED", "true")
	t.Setenv("HSTS_MAX_AGE", "600")
	t.Setenv("HSTS_INCLUDE_SUBDOMAINS", "false")

	rs := newTestRouterService(t)
	mountTestController(rs)

	plain := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/ip", nil))
	assert.Empty(t, plain.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "nosniff", plain.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	secure := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(secure, req)
	assert.Equal(t, "max-age=600", secure.Header().Get("Strict-Transport-Security"))
}

func TestCorrelationID_EchoedOrGenerated(t *testing.T) {
	rs := newTestRouterService(t)
	mountTestController(rs)

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Correlation-ID", "landing-123")
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	assert.Equal(t, "landing-123", w.Header().Get("X-Correlation-ID"))

	w = httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ip", nil))
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestJoinRoute(t *testing.T) {
	assert.Equal(t, "/", joinRoute(""))
	assert.Equal(t, "/v1/waitlist", joinRoute("v1", "/waitlist/"))
	assert.Equal(t, "/v1/demo/sessions/:id", NewVersionedRESTController("d", "v1", "demo", nil).route("/sessions/:id"))
}
