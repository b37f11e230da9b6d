package attendance

import "errors"

// Attendance domain errors
var (
	// Admission categories. AdmissionError unwraps to one of these.
	ErrPolicyViolation     = errors.New("attendance outside allowed time window")
	ErrDuplicateAction     = errors.New("attendance action already recorded today")
	ErrMissingPriorAction  = errors.New("no check-in recorded today")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrOutOfGeofence       = errors.New("outside office area")

	// Storage errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrRecordExists       = errors.New("attendance action already stored for this day")

	// General errors
	ErrUnauthorized = errors.New("unauthorized to access this attendance record")
)

// AdmissionError is a refused clock request. Reason is shown to the user as is.
type AdmissionError struct {
	Code   DenialCode
	Reason string
}

func (e *AdmissionError) Error() string {
	return e.Reason
}

func (e *AdmissionError) Unwrap() error {
	switch e.Code {
	case DenialPolicyViolation:
		return ErrPolicyViolation
	case DenialDuplicateAction:
		return ErrDuplicateAction
	case DenialMissingPriorAction:
		return ErrMissingPriorAction
	case DenialLocationUnavailable:
		return ErrLocationUnavailable
	case DenialOutOfGeofence:
		return ErrOutOfGeofence
	}
	return nil
}
