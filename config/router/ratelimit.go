package router

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/onedotone/landing-api/internal/log"
	"github.com/onedotone/landing-api/pkg/constants"
	"github.com/onedotone/landing-api/pkg/ratelimit"
)

// limitTable resolves the limiter for a route: the route's own, then its
// controller's, then the global one.
type limitTable struct {
	global       ratelimit.RateLimiter
	byController map[*RESTController]ratelimit.RateLimiter
	byRoute      map[routeKey]ratelimit.RateLimiter
}

func newLimitTable(global ratelimit.RateLimiter) *limitTable {
	return &limitTable{
		global:       global,
		byController: make(map[*RESTController]ratelimit.RateLimiter),
		byRoute:      make(map[routeKey]ratelimit.RateLimiter),
	}
}

func (t *limitTable) bindRoute(key routeKey, limiter ratelimit.RateLimiter) {
	if limiter == nil {
		return
	}
	if _, exists := t.byRoute[key]; exists {
		panic(fmt.Sprintf("a rate limiter is already registered for %s", key))
	}
	t.byRoute[key] = limiter
}

func (t *limitTable) bindController(controller *RESTController, limiter ratelimit.RateLimiter) {
	if limiter == nil {
		return
	}
	if _, exists := t.byController[controller]; exists {
		panic(fmt.Sprintf("a rate limiter is already registered for controller %q", controller.name))
	}
	t.byController[controller] = limiter
}

func (t *limitTable) resolve(key routeKey, controller *RESTController) ratelimit.RateLimiter {
	if limiter, ok := t.byRoute[key]; ok {
		return limiter
	}
	if limiter, ok := t.byController[controller]; ok {
		return limiter
	}
	return t.global
}

func (t *limitTable) close(logger *log.Logger) {
	closeOne := func(scope string, limiter ratelimit.RateLimiter) {
		if err := limiter.Close(); err != nil {
			logger.Error("Failed to close rate limiter", "scope", scope, "error", err)
		}
	}

	if t.global != nil {
		closeOne("global", t.global)
	}
	for controller, limiter := range t.byController {
		closeOne(controller.name, limiter)
	}
	for key, limiter := range t.byRoute {
		closeOne(string(key), limiter)
	}
}

// rateLimitMiddleware counts per client IP. Limiter backend errors let the
// request through; a Redis outage must not take the landing page down.
func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFor(c.Request.Method, c.FullPath())
		controller, mapped := routerService.routes[key]
		if !mapped {
			GetLogger(c).Debug("Request for unmapped route", "method", c.Request.Method, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusNotFound, NotFoundResult(fmt.Sprintf("There is no resource at the path %s", c.Request.URL.Path)).ToJSON())
			return
		}

		limiter := routerService.limits.resolve(key, controller)
		limit, window := limiter.GetLimitDetails()
		c.Header(constants.HeaderRateLimitLimit, strconv.Itoa(limit))
		c.Header(constants.HeaderRateLimitWindow, window.String())

		clientIP := c.ClientIP()
		limited, err := limiter.IsLimited(clientIP)
		if err != nil {
			GetLogger(c).Error("Rate limiter error", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}

		if limited {
			GetLogger(c).Warn("Rate limit exceeded", "client_ip", clientIP, "route", string(key))
			retryAfter := strconv.Itoa(int(math.Max(1, math.Ceil(window.Seconds()))))
			c.Header(constants.HeaderRetryAfter, retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
				Limit:      limit,
				Window:     window.String(),
				RetryAfter: retryAfter,
			}).ToJSON())
			return
		}

		c.Next()
	}
}
