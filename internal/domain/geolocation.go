package domain

import "strings"

// GeolocationFailure is reported by whoever supplies coordinates (a browser,
// a device) when it could not produce a position.
type GeolocationFailure int

const (
	GeoUnknown GeolocationFailure = iota
	GeoPermissionDenied
	GeoPositionUnavailable
	GeoTimeout
	GeoUnsupported
)

// ParseGeolocationFailure accepts symbolic names and the W3C numeric codes (1, 2, 3).
func ParseGeolocationFailure(code string) GeolocationFailure {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "permission_denied", "1":
		return GeoPermissionDenied
	case "position_unavailable", "2":
		return GeoPositionUnavailable
	case "timeout", "3":
		return GeoTimeout
	case "unsupported":
		return GeoUnsupported
	default:
		return GeoUnknown
	}
}

func (g GeolocationFailure) String() string {
	switch g {
	case GeoPermissionDenied:
		return "permission_denied"
	case GeoPositionUnavailable:
		return "position_unavailable"
	case GeoTimeout:
		return "timeout"
	case GeoUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Message is the text shown to the user.
func (g GeolocationFailure) Message() string {
	switch g {
	case GeoPermissionDenied:
		return "Location permission denied."
	case GeoPositionUnavailable:
		return "Position unavailable."
	case GeoTimeout:
		return "Location request timed out."
	case GeoUnsupported:
		return "Geolocation is not supported by this device."
	default:
		return "Geolocation error."
	}
}
