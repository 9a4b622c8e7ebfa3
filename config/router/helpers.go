package router

import (
	"net/http"
	"strconv"

	"github.com/onedotone/landing-api/internal/log"
)

// GetLogger returns the request-scoped logger installed by the router, or a
// fresh correlated one when the context has none (tests, raw gin engines).
func GetLogger(ctx *RequestContext) *log.Logger {
	return log.GetLoggerInstanceFromContext(ctx.Request.Context(), nil)
}

func result(statusCode int, data any, message string) *ServiceResult {
	return &ServiceResult{StatusCode: statusCode, Data: data, Message: message}
}

func OKResult(data any, message string) *ServiceResult {
	return result(http.StatusOK, data, message)
}

func CreatedResult(data any, resourceName string) *ServiceResult {
	return result(http.StatusCreated, data, resourceName+" created successfully")
}

func AcceptedResult(data any, message string) *ServiceResult {
	return result(http.StatusAccepted, data, message)
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return result(http.StatusTooManyRequests, data, "Too many requests, please slow down")
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return result(http.StatusBadRequest, payload, message)
}

func UnauthorizedResult(message string) *ServiceResult {
	return result(http.StatusUnauthorized, nil, message)
}

func NotFoundResult(message string) *ServiceResult {
	return result(http.StatusNotFound, nil, message)
}

func InternalServerErrorResult(message string) *ServiceResult {
	return result(http.StatusInternalServerError, nil, message)
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return result(statusCode, data, message)
}

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(ctx *RequestContext, paramName string) (uint, *ServiceResult) {
	raw := ctx.Param(paramName)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		GetLogger(ctx).Debug("Invalid ID parameter", "param", paramName, "value", raw)
		return 0, BadRequestResult("Invalid ID parameter", nil)
	}

	return uint(id), nil
}
