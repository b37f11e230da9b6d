package attendance

import (
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
)

const (
	ReasonAlreadyCheckedIn  = "already checked in today"
	ReasonAlreadyCheckedOut = "already checked out today"
	ReasonNoCheckIn         = "no check-in recorded today"
)

// AdmissionInput is everything a single clock decision depends on.
type AdmissionInput struct {
	EmployeeID    string
	Kind          attendance.Kind
	Now           time.Time
	Today         *attendance.Attendance
	Location      *attendance.Location
	LocationError *attendance.LocationErrorCode
}

// AdmissionEvaluator composes the schedule and geofence checks into one
// decision. It holds no state and is safe for concurrent use.
type AdmissionEvaluator struct {
	schedule        ScheduleEvaluator
	geofence        GeofenceEvaluator
	enforceGeofence bool
}

func NewAdmissionEvaluator(schedule ScheduleEvaluator, geofence GeofenceEvaluator, enforceGeofence bool) AdmissionEvaluator {
	return AdmissionEvaluator{
		schedule:        schedule,
		geofence:        geofence,
		enforceGeofence: enforceGeofence,
	}
}

// Evaluate applies, in order: duplicate action, time window, missing prior
// check-in, geofence.
func (e AdmissionEvaluator) Evaluate(in AdmissionInput) attendance.Decision {
	if d := e.EvaluateSchedule(in); !d.Allowed {
		return d
	}
	return e.EvaluateLocation(in)
}

// EvaluateLocation is the last step of Evaluate. With offices enforced it is
// the geofence check; otherwise it only rejects an unusable coordinate.
func (e AdmissionEvaluator) EvaluateLocation(in AdmissionInput) attendance.Decision {
	if e.enforceGeofence {
		return e.geofence.Evaluate(in.Location, in.LocationError)
	}
	return e.geofence.CheckReported(in.Location)
}

// EvaluateSchedule is Evaluate without the location step.
func (e AdmissionEvaluator) EvaluateSchedule(in AdmissionInput) attendance.Decision {
	switch in.Kind {
	case attendance.KindCheckIn:
		if in.Today.HasCheckIn() {
			return attendance.Deny(attendance.DenialDuplicateAction, ReasonAlreadyCheckedIn)
		}
		// the day was closed by a check-out without check-in
		if in.Today.HasCheckOut() {
			return attendance.Deny(attendance.DenialDuplicateAction, ReasonAlreadyCheckedOut)
		}
	case attendance.KindCheckOut:
		if in.Today.HasCheckOut() {
			return attendance.Deny(attendance.DenialDuplicateAction, ReasonAlreadyCheckedOut)
		}
	}

	if v := e.schedule.Validate(in.Kind, in.Now); !v.Valid {
		return attendance.Deny(attendance.DenialPolicyViolation, v.Message)
	}

	if in.Kind == attendance.KindCheckOut && !in.Today.HasCheckIn() && !e.schedule.CanCheckOutWithoutPriorCheckIn(in.Now) {
		return attendance.Deny(attendance.DenialMissingPriorAction, ReasonNoCheckIn)
	}

	return attendance.Allow()
}
