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
	"github.com/onedotone/landing-api/pkg/constants"
	"github.com/onedotone/landing-api/pkg/utils"
)

const corsAllowedHeaders = "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Cache-Control, Last-Event-ID, X-Correlation-ID, X-Requested-With"

// securityConfig is read once at startup from the environment.
type securityConfig struct {
	hsts           string
	maxBodyBytes   int64
	allowedOrigins map[string]bool
	anyOrigin      bool
}

func securityConfigFromEnv(logger *log.Logger) securityConfig {
	cfg := securityConfig{
		maxBodyBytes:   int64(utils.GetEnvPositiveInt("MAX_REQUEST_BODY_BYTES", int(constants.DefaultMaxRequestBodyBytes))),
		allowedOrigins: make(map[string]bool),
	}

	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	if utils.GetEnvBool("HSTS_ENABLED", appEnv == "production" || appEnv == "prod") {
		cfg.hsts = fmt.Sprintf("max-age=%d", utils.GetEnvPositiveInt("HSTS_MAX_AGE", 31536000))
		if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
			cfg.hsts += "; includeSubDomains"
		}
	}

	for _, origin := range strings.Split(utils.GetEnvTrimmed("CORS_ALLOWED_ORIGIN"), ",") {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			cfg.anyOrigin = true
		default:
			cfg.allowedOrigins[origin] = true
		}
	}
	if !cfg.anyOrigin && len(cfg.allowedOrigins) == 0 {
		logger.Info("CORS_ALLOWED_ORIGIN not set; only same-origin browser requests are served")
	}

	return cfg
}

func (s securityConfig) originAllowed(origin string) bool {
	return origin != "" && (s.anyOrigin || s.allowedOrigins[origin])
}

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, id := log.ContextWithCorrelationID(c.Request.Context(), c.GetHeader(constants.HeaderCorrelationID))
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderCorrelationID, id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlated := routerService.logger.WithCorrelationID(c.Request.Context())
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), log.LoggerKeyForContext, correlated))
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogRequest(GetLogger(c), c.Request, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if routerService.security.hsts != "" && isHTTPS(c) {
			h.Set("Strict-Transport-Security", routerService.security.hsts)
		}
		c.Next()
	}
}

// isHTTPS also trusts X-Forwarded-Proto for TLS terminated at a proxy.
func isHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader(constants.HeaderForwardedProto)), "https")
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	maxBytes := routerService.security.maxBodyBytes

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(
				http.StatusRequestEntityTooLarge,
				"Request payload too large",
				nil,
			).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// corsMiddleware answers preflights for allowed origins. Requests from other
// origins pass through without CORS headers and the browser blocks them.
func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !routerService.security.originAllowed(origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(apperrors.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if routerService.streaming[keyFor(c.Request.Method, c.FullPath())] {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), routerService.requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// The chain ran past its deadline without answering; the server's
		// write timeout covers handlers that never return.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			GetLogger(c).Warn("Request timed out", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusRequestTimeout, ErrorResult(
				apperrors.StatusRequestTimeout,
				"Request timeout",
				nil,
			).ToJSON())
		}
	}
}
