package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/timeofday"
)

// WindowConfig holds the allowed time-of-day ranges for each action.
// CheckOutWithoutCheckIn is the trailing part of the day in which a check-out
// is admitted even though no check-in was recorded.
type WindowConfig struct {
	CheckIn                timeofday.Window `json:"check_in"`
	CheckOut               timeofday.Window `json:"check_out"`
	CheckOutWithoutCheckIn timeofday.Window `json:"check_out_without_check_in"`
}

// DefaultWindowConfig is 06:30-09:00 in, 15:00-23:59 out.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		CheckIn:                timeofday.Window{Start: timeofday.MustParse("06:30"), End: timeofday.MustParse("09:00")},
		CheckOut:               timeofday.Window{Start: timeofday.MustParse("15:00"), End: timeofday.MustParse("23:59")},
		CheckOutWithoutCheckIn: timeofday.Window{Start: timeofday.MustParse("15:00"), End: timeofday.MustParse("23:59")},
	}
}

func (c WindowConfig) Window(kind Kind) timeofday.Window {
	if kind == KindCheckOut {
		return c.CheckOut
	}
	return c.CheckIn
}

func (c WindowConfig) Validate() error {
	if err := c.CheckIn.Validate(); err != nil {
		return fmt.Errorf("check-in window: %w", err)
	}
	if err := c.CheckOut.Validate(); err != nil {
		return fmt.Errorf("check-out window: %w", err)
	}
	if err := c.CheckOutWithoutCheckIn.Validate(); err != nil {
		return fmt.Errorf("check-out without check-in window: %w", err)
	}
	return nil
}

// DenialCode classifies why an admission was refused.
type DenialCode string

const (
	DenialPolicyViolation     DenialCode = "policy_violation"
	DenialDuplicateAction     DenialCode = "duplicate_action"
	DenialMissingPriorAction  DenialCode = "missing_prior_action"
	DenialLocationUnavailable DenialCode = "location_unavailable"
	DenialOutOfGeofence       DenialCode = "out_of_geofence"
)

// Decision is the outcome of evaluating a clock request. Denials are values,
// not errors; Err converts one for the transport layer.
type Decision struct {
	Allowed bool
	Code    DenialCode
	Reason  string
	Nearest *geo.Nearest
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(code DenialCode, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}

// Err returns nil for an allowed decision and an *AdmissionError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &AdmissionError{Code: d.Code, Reason: d.Reason}
}

// Outcome is "allowed" or the denial code, for metrics and logs.
func (d Decision) Outcome() string {
	if d.Allowed {
		return "allowed"
	}
	return string(d.Code)
}

// LocationErrorCode is a client-reported geolocation failure.
type LocationErrorCode string

const (
	LocationPermissionDenied    LocationErrorCode = "permission_denied"
	LocationPositionUnavailable LocationErrorCode = "position_unavailable"
	LocationTimeout             LocationErrorCode = "timeout"
)
