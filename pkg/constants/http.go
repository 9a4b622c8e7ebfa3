package constants

// Headers the service reads or sets on every request.
const (
	HeaderCorrelationID   = "X-Correlation-ID"
	HeaderRateLimitLimit  = "X-RateLimit-Limit"
	HeaderRateLimitWindow = "X-RateLimit-Window"
	HeaderRetryAfter      = "Retry-After"
	HeaderForwardedProto  = "X-Forwarded-Proto"
)

// DefaultMaxRequestBodyBytes bounds JSON bodies; waitlist and demo payloads are tiny.
const DefaultMaxRequestBodyBytes int64 = 64 << 10
