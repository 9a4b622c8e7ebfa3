package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type fixedCount int

func (c fixedCount) Len() int { return int(c) }

type healthEnvelope struct {
	Code    int          `json:"code"`
	Data    HealthStatus `json:"data"`
	Message string       `json:"message"`
}

func serveHealth(t *testing.T, deps Dependencies) (int, healthEnvelope) {
	t.Helper()

	deps.Logger = log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(deps.Logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewMonitoringControllerFactory(deps).CreateController())

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var env healthEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHealth_AllComponentsUp(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	ok := pingFunc(func(context.Context) error { return nil })

	code, env := serveHealth(t, Dependencies{DB: db, Cache: ok, Store: ok, Sessions: fixedCount(3)})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Data.Database)
	assert.Equal(t, 1, env.Data.Cache)
	assert.Equal(t, 1, env.Data.WaitlistStore)
	assert.Equal(t, 3, env.Data.DemoSessions)
}

func TestHealth_OptionalComponentsAbsent(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })

	code, env := serveHealth(t, Dependencies{Store: ok})

	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, env.Data.Database)
	assert.Zero(t, env.Data.Cache)
	assert.Equal(t, 1, env.Data.WaitlistStore)
}

func TestHealth_StoreDownIsDegraded(t *testing.T) {
	down := pingFunc(func(context.Context) error { return errors.New("relation \"waitlist\" does not exist") })

	code, env := serveHealth(t, Dependencies{Store: down})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "landing-api is degraded", env.Message)
	assert.Zero(t, env.Data.WaitlistStore)
}

func TestStatus(t *testing.T) {
	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewMonitoringController(Dependencies{Logger: logger}))

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"landing-api"`)
}
