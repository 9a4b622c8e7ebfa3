package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onedotone/landing-api/internal/log"
	apperrors "github.com/onedotone/landing-api/pkg/errors"
	"github.com/onedotone/landing-api/pkg/factory"
	"github.com/onedotone/landing-api/pkg/ratelimit"
	"github.com/onedotone/landing-api/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const DefaultTimeoutDuration = 30 * time.Second

type Cache interface {
	Ping(ctx context.Context) error
}

type RouterService struct {
	engine         *gin.Engine
	server         *http.Server
	logger         *log.Logger
	limiterFactory factory.RateLimiterFactory
	registry       *prometheus.Registry
	requestTimeout time.Duration
	security       securityConfig

	limits    *limitTable
	routes    map[routeKey]*RESTController
	streaming map[routeKey]bool
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode := utils.GetEnvTrimmed("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	timeout := routerConfig.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeoutDuration
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = true

	if utils.IsTracingEnabled() {
		engine.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	configureTrustedProxies(engine, logger)

	limiterFactory := factory.NewDefaultRateLimiterFactory(cache, logger)
	rs := &RouterService{
		engine:         engine,
		logger:         logger,
		limiterFactory: limiterFactory,
		registry:       prometheus.NewRegistry(),
		requestTimeout: timeout,
		security:       securityConfigFromEnv(logger),
		limits:         newLimitTable(limiterFactory.CreateRateLimiter("", routerConfig.RateLimitRequests, routerConfig.RateLimitWindow)),
		routes:         make(map[routeKey]*RESTController),
		streaming:      make(map[routeKey]bool),
	}

	logger.Info("Rate limiting initialized",
		"backend", limiterBackend(limiterFactory),
		"requests", routerConfig.RateLimitRequests,
		"window", routerConfig.RateLimitWindow,
	)

	rs.mountMetrics()

	engine.Use(
		rs.securityHeadersMiddleware(),
		rs.correlationIDMiddleware(),
		rs.loggerInjectionMiddleware(),
		rs.requestLoggingMiddleware(),
		rs.maxBodySizeMiddleware(),
		rs.corsMiddleware(),
		rs.rateLimitMiddleware(),
		rs.timeoutMiddleware(),
	)

	engine.NoRoute(rs.fallbackHandler(apperrors.StatusNotFound, "Route not found"))
	engine.NoMethod(rs.fallbackHandler(apperrors.StatusMethodNotAllowed, "Method not allowed"))

	rs.server = &http.Server{
		Addr:    ":8080",
		Handler: engine,

		// Handlers never run on a separate goroutine (gin.Context is not
		// goroutine-safe), so hard limits live on the server.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized", "request_timeout", timeout)
	return rs
}

func limiterBackend(f factory.RateLimiterFactory) string {
	if f.UsesRedis() {
		return "redis"
	}
	return "memory"
}

// configureTrustedProxies keeps ClientIP() on RemoteAddr unless
// TRUSTED_PROXIES names the proxies allowed to set X-Forwarded-For.
func configureTrustedProxies(engine *gin.Engine, logger *log.Logger) {
	proxies := parseTrustedProxiesEnv(utils.GetEnvTrimmed("TRUSTED_PROXIES"))
	if err := engine.SetTrustedProxies(proxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = engine.SetTrustedProxies(nil)
		return
	}
	if proxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}
}

func parseTrustedProxiesEnv(v string) []string {
	switch s := strings.TrimSpace(v); s {
	case "":
		return nil
	case "*":
		return []string{"0.0.0.0/0", "::/0"}
	default:
		var proxies []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				proxies = append(proxies, p)
			}
		}
		return proxies
	}
}

func (routerService *RouterService) fallbackHandler(status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		GetLogger(c).Debug(message, "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(status, ErrorResult(status, message, nil).ToJSON())
	}
}

// NewRateLimiter builds a per-controller or per-handler limiter on the same
// backend as the global one. scope separates its counters in Redis.
func (routerService *RouterService) NewRateLimiter(scope string, requests int, window time.Duration) ratelimit.RateLimiter {
	return routerService.limiterFactory.CreateRateLimiter(scope, requests, window)
}

// MetricsRegisterer is the registry served on /metrics.
func (routerService *RouterService) MetricsRegisterer() prometheus.Registerer {
	return routerService.registry
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) GetLogger(c *RequestContext) *log.Logger {
	return log.GetLoggerInstanceFromContext(c.Request.Context(), routerService.logger)
}

func (routerService *RouterService) Cleanup() {
	routerService.limits.close(routerService.logger)
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"path", controller.mountPoint,
		"version", controller.version,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	routerService.server.Addr = ":" + utils.GetEnvTrimmedOrDefault("APP_PORT", "8080")
	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// OnShutdown registers fn to run as soon as Shutdown begins. Long-lived
// streams use it to end themselves so Shutdown does not wait them out.
func (routerService *RouterService) OnShutdown(fn func()) {
	routerService.server.RegisterOnShutdown(fn)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully")
	return routerService.server.Shutdown(ctx)
}
