package constants

import "time"

// RFC3339DateTimeFormat is used for every timestamp leaving the service.
const RFC3339DateTimeFormat = time.RFC3339

const (
	DefaultRateLimitRequests      = 100
	DefaultRateLimitWindowMinutes = 1
)

func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}
