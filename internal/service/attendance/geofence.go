package attendance

import (
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/metrics"
)

const (
	ReasonOutOfGeofence       = "outside office area"
	ReasonLocationMissing     = "location unavailable"
	ReasonLocationInvalid     = "location coordinates are invalid"
	ReasonPermissionDenied    = "location permission denied"
	ReasonPositionUnavailable = "location information unavailable"
	ReasonLocationTimeout     = "location request timed out"
)

// GeofenceEvaluator checks reported coordinates against the configured offices.
type GeofenceEvaluator struct {
	offices []geo.Office
}

func NewGeofenceEvaluator(offices []geo.Office) GeofenceEvaluator {
	owned := make([]geo.Office, len(offices))
	copy(owned, offices)
	return GeofenceEvaluator{offices: owned}
}

func (g GeofenceEvaluator) Offices() []geo.Office {
	out := make([]geo.Office, len(g.offices))
	copy(out, g.offices)
	return out
}

func (g GeofenceEvaluator) IsWithinAnyOffice(point geo.Coordinate) bool {
	return geo.IsWithinAnyOffice(point, g.offices)
}

func (g GeofenceEvaluator) NearestOffice(point geo.Coordinate) (geo.Nearest, error) {
	return geo.NearestOffice(point, g.offices)
}

// Evaluate admits a clock action only from inside an office radius. A
// client-reported geolocation failure is denied with its own reason.
func (g GeofenceEvaluator) Evaluate(location *attendance.Location, locationErr *attendance.LocationErrorCode) attendance.Decision {
	if locationErr != nil {
		return attendance.Deny(attendance.DenialLocationUnavailable, LocationErrorReason(*locationErr))
	}
	if location == nil {
		return attendance.Deny(attendance.DenialLocationUnavailable, ReasonLocationMissing)
	}

	point, d := checkCoordinate(*location)
	if !d.Allowed {
		return d
	}

	var nearest *geo.Nearest
	if n, err := g.NearestOffice(point); err == nil {
		nearest = &n
	}

	if !g.IsWithinAnyOffice(point) {
		metrics.IncGeofenceCheck("outside")
		d := attendance.Deny(attendance.DenialOutOfGeofence, ReasonOutOfGeofence)
		d.Nearest = nearest
		return d
	}

	metrics.IncGeofenceCheck("inside")
	d = attendance.Allow()
	d.Nearest = nearest
	return d
}

// CheckReported is the location step when offices are not enforced. No
// location is allowed; a location that is sent must carry a usable
// coordinate so nothing else gets stored.
func (g GeofenceEvaluator) CheckReported(location *attendance.Location) attendance.Decision {
	if location == nil {
		return attendance.Allow()
	}
	_, d := checkCoordinate(*location)
	return d
}

func checkCoordinate(location attendance.Location) (geo.Coordinate, attendance.Decision) {
	point, ok := location.Coordinate()
	if !ok {
		return point, attendance.Deny(attendance.DenialLocationUnavailable, ReasonLocationMissing)
	}
	if err := point.Validate(); err != nil {
		return point, attendance.Deny(attendance.DenialLocationUnavailable, ReasonLocationInvalid)
	}
	return point, attendance.Allow()
}

// LocationErrorReason maps a client geolocation failure to its message.
func LocationErrorReason(code attendance.LocationErrorCode) string {
	switch code {
	case attendance.LocationPermissionDenied:
		return ReasonPermissionDenied
	case attendance.LocationPositionUnavailable:
		return ReasonPositionUnavailable
	case attendance.LocationTimeout:
		return ReasonLocationTimeout
	}
	return ReasonLocationMissing
}
