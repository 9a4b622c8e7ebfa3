package utils

const defaultServiceName = "landing-api"

func IsTracingEnabled() bool {
	return GetEnvBool("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	return GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", defaultServiceName)
}

// OTelServiceVersion is stamped at build time through SERVICE_VERSION.
func OTelServiceVersion() string {
	return GetEnvTrimmedOrDefault("SERVICE_VERSION", "dev")
}
