package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/pkg/utils"
	"gorm.io/gorm"
)

const (
	monitoringRequestsPerMinute = 10
	healthCheckTimeout          = 2 * time.Second
)

type Cache interface {
	Ping(ctx context.Context) error
}

// Store is the waitlist backend, checked for reachability and schema.
type Store interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many demo sessions are live.
type SessionCounter interface {
	Len() int
}

type HealthStatus struct {
	Database      int `json:"database"`       // 1 = healthy, 0 = unhealthy/not configured
	Cache         int `json:"cache"`          // 1 = healthy, 0 = unhealthy/not configured
	WaitlistStore int `json:"waitlist_store"` // 1 = healthy, 0 = unhealthy
	DemoSessions  int `json:"demo_sessions"`
	Uptime        int `json:"uptime"` // uptime in seconds
}

// Healthy is false when the waitlist cannot accept signups.
func (s HealthStatus) Healthy() bool {
	return s.WaitlistStore == 1
}

type MonitoringController struct {
	db        *gorm.DB
	logger    *log.Logger
	cache     Cache
	store     Store
	sessions  SessionCounter
	startTime time.Time
}

func NewMonitoringController(deps Dependencies) *router.RESTController {
	ctrl := &MonitoringController{
		db:        deps.DB,
		logger:    deps.Logger,
		cache:     deps.Cache,
		store:     deps.Store,
		sessions:  deps.Sessions,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			limiter := routerService.NewRateLimiter("monitoring", monitoringRequestsPerMinute, time.Minute)

			routerService.AddGetHandler(controller, limiter, "status", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, limiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)
	logger.Info("Health check endpoint called")

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthStatus := ctrl.performHealthChecks(ctx, logger)

	if !healthStatus.Healthy() {
		return router.ErrorResult(http.StatusServiceUnavailable, "landing-api is degraded", healthStatus)
	}

	return &router.ServiceResult{
		StatusCode: http.StatusOK,
		Data:       healthStatus,
		Message:    "landing-api health check completed",
	}
}

// StatusResponse is the liveness answer; it touches no dependency.
type StatusResponse struct {
	Service string `json:"service"`
	Uptime  int    `json:"uptime"`
}

func (ctrl *MonitoringController) monitor(
	c *router.RequestContext,
) *router.ServiceResult {
	return router.OKResult(StatusResponse{
		Service: utils.OTelServiceName(),
		Uptime:  int(time.Since(ctrl.startTime).Seconds()),
	}, "landing-api is running")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	checkDatabaseConnectivity(ctx, ctrl, &status, logger)

	checkCacheConnectivity(ctx, ctrl, &status, logger)

	checkWaitlistStore(ctx, ctrl, &status, logger)

	if ctrl.sessions != nil {
		status.DemoSessions = ctrl.sessions.Len()
	}

	return status
}

func checkCacheConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.cache == nil {
		logger.Info("Cache not configured, cache health check skipped")
		return
	}

	if err := ctrl.cache.Ping(ctx); err != nil {
		logger.Error("Cache health check failed", "error", err)
		return
	}

	status.Cache = 1
}

func checkDatabaseConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.db == nil {
		logger.Info("Database not configured, database health check skipped")
		return
	}

	sqlDB, err := ctrl.db.DB()
	if err != nil {
		logger.Error("Database health check failed", "error", err)
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Error("Database health check failed", "error", err)
		return
	}

	status.Database = 1
}

func checkWaitlistStore(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.store == nil {
		logger.Error("Waitlist store not wired into health checks")
		return
	}

	if err := ctrl.store.Ping(ctx); err != nil {
		logger.Error("Waitlist store health check failed", "error", err)
		return
	}

	status.WaitlistStore = 1
}
