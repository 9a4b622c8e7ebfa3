package waitlist

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/onedotone/landing-api/config/router"
	"github.com/onedotone/landing-api/internal/log"
	apperrors "github.com/onedotone/landing-api/pkg/errors"
	"github.com/onedotone/landing-api/pkg/iplookup"
	"github.com/onedotone/landing-api/pkg/ratelimit"
)

const waitlistSubmissionsPerMinute = 30

// NewWaitlistController mounts the signup endpoint and the operator read endpoints.
// The read endpoints answer 403 unless adminToken is set and presented as a bearer token.
func NewWaitlistController(
	repository WaitlistRepository,
	resolver iplookup.Resolver,
	adminToken string,
	logger *log.Logger,
) *router.RESTController {

	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			service := NewWaitlistService(logger, repository, resolver, rs.MetricsRegisterer())

			submissionLimiter := createWaitlistSubmissionRateLimiter(rs)
			requireAdmin := adminTokenMiddleware(adminToken)

			rs.AddPostHandler(c, submissionLimiter, "", submitWaitlistEntryHandler(service))
			rs.AddGetHandler(c, nil, "/:id", getWaitlistEntryHandler(service), requireAdmin)
			rs.AddGetHandler(c, nil, "", getAllWaitlistEntriesHandler(service), requireAdmin)
		},
	)
}

func createWaitlistSubmissionRateLimiter(routerService *router.RouterService) ratelimit.RateLimiter {
	return routerService.NewRateLimiter("waitlist", waitlistSubmissionsPerMinute, time.Minute)
}

func adminTokenMiddleware(adminToken string) router.MiddlewareFunc {
	expected := []byte(strings.TrimSpace(adminToken))

	return func(ctx *router.RequestContext) {
		if len(expected) == 0 {
			ctx.AbortWithStatusJSON(http.StatusForbidden, router.ErrorResult(http.StatusForbidden, "Waitlist listing is disabled", nil).ToJSON())
			return
		}

		presented := strings.TrimSpace(strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer "))
		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, router.UnauthorizedResult("Invalid admin token").ToJSON())
			return
		}

		ctx.Next()
	}
}

func submitWaitlistEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SubmitWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.Submit(ctx.Request.Context(), ToSubmitRequest(&req, clientContextFrom(ctx)))
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return &router.ServiceResult{
			StatusCode: http.StatusCreated,
			Data:       response,
			Message:    response.Message,
		}
	}
}

// clientContextFrom reads the ambient browser context. The Referer of a form
// post is the page the form sits on, so it stands in for a missing page_url.
func clientContextFrom(ctx *router.RequestContext) ClientContext {
	return ClientContext{
		IPAddress: ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
		PageURL:   ctx.GetHeader("Referer"),
	}
}

func getWaitlistEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.FindEntryByID(ctx.Request.Context(), id)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(response, "Waitlist entry retrieved successfully")
	}
}

func getAllWaitlistEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.GetAllEntries(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(response, "Waitlist entries retrieved successfully")
	}
}
