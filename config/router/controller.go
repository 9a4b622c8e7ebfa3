package router

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/onedotone/landing-api/pkg/ratelimit"
)

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: joinRoute(mountPoint),
		prepare:    prepare,
	}
}

// NewVersionedRESTController mounts under /<version>/<mountPoint>.
func NewVersionedRESTController(name, version, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: joinRoute(version, mountPoint),
		version:    version,
		prepare:    prepare,
	}
}

// joinRoute builds a clean absolute route with no trailing slash.
func joinRoute(parts ...string) string {
	return path.Join(append([]string{"/"}, parts...)...)
}

func (controller *RESTController) route(relativePath string) string {
	return joinRoute(controller.mountPoint, strings.TrimPrefix(relativePath, "/"))
}

// RateLimitWith applies limiter to every handler of the controller that has
// no limiter of its own.
func (controller *RESTController) RateLimitWith(routerService *RouterService, limiter ratelimit.RateLimiter) *RESTController {
	routerService.limits.bindController(controller, limiter)
	return controller
}

// register is the single path every Add*Handler goes through. A route may
// only be claimed once across all controllers.
func (routerService *RouterService) register(
	controller *RESTController,
	method string,
	relativePath string,
	limiter ratelimit.RateLimiter,
	streaming bool,
	handlers []MiddlewareFunc,
) {
	route := controller.route(relativePath)
	key := keyFor(method, route)

	if owner, taken := routerService.routes[key]; taken {
		panic(fmt.Sprintf("route %s is already registered by controller %q", key, owner.name))
	}

	routerService.routes[key] = controller
	routerService.limits.bindRoute(key, limiter)
	if streaming {
		routerService.streaming[key] = true
	}

	controller.handlerCount++
	routerService.engine.Handle(method, route, handlers...)
	routerService.logger.Debug("Handler registered", "method", method, "path", route, "streaming", streaming)
}

func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)
		if result == nil {
			GetLogger(c).Error("Handler returned no result", "path", c.FullPath())
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("Something went wrong on our side").ToJSON())
			return
		}

		c.JSON(result.StatusCode, result.ToJSON())
	}
}

func (routerService *RouterService) AddGetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.register(controller, http.MethodGet, path, limiter, false, append(middlewares, createHandler(handler)))
}

func (routerService *RouterService) AddPostHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.register(controller, http.MethodPost, path, limiter, false, append(middlewares, createHandler(handler)))
}

// AddRawGetHandler registers a handler that writes its own response, such as an HTML page.
func (routerService *RouterService) AddRawGetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler MiddlewareFunc,
	middlewares ...MiddlewareFunc,
) {
	routerService.register(controller, http.MethodGet, path, limiter, false, append(middlewares, handler))
}

// AddStreamHandler registers a long-lived GET handler (server-sent events).
// The request timeout and latency histogram do not apply to it.
func (routerService *RouterService) AddStreamHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler MiddlewareFunc,
	middlewares ...MiddlewareFunc,
) {
	routerService.register(controller, http.MethodGet, path, limiter, true, append(middlewares, handler))
}
