// Package useragent derives coarse device information from User-Agent strings.
package useragent

import "regexp"

type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceDesktop DeviceType = "desktop"
)

var mobilePattern = regexp.MustCompile(`(?i)Mobile|Android|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini|webOS`)

// DetectDevice returns DeviceDesktop for empty or unrecognised agents.
func DetectDevice(userAgent string) DeviceType {
	if mobilePattern.MatchString(userAgent) {
		return DeviceMobile
	}
	return DeviceDesktop
}
