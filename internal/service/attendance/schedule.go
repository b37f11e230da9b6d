package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/timeofday"
)

// ScheduleEvaluator decides whether a clock action is allowed at an instant.
// It only looks at the wall-clock time of the instant in its own location.
type ScheduleEvaluator struct {
	windows attendance.WindowConfig
}

func NewScheduleEvaluator(windows attendance.WindowConfig) ScheduleEvaluator {
	return ScheduleEvaluator{windows: windows}
}

func (s ScheduleEvaluator) Windows() attendance.WindowConfig {
	return s.windows
}

// IsWithinWindow reports whether instant falls in the configured window of kind, bounds included.
func (s ScheduleEvaluator) IsWithinWindow(kind attendance.Kind, instant time.Time) bool {
	return s.windows.Window(kind).ContainsTime(instant)
}

// ValidationResult carries the user-facing message of a failed window check.
type ValidationResult struct {
	Valid   bool
	Message string
}

func (s ScheduleEvaluator) Validate(kind attendance.Kind, instant time.Time) ValidationResult {
	if s.IsWithinWindow(kind, instant) {
		return ValidationResult{Valid: true}
	}
	w := s.windows.Window(kind)
	return ValidationResult{
		Message: fmt.Sprintf("Jam %s hanya diperbolehkan antara %s - %s", kind.Label(), w.Start, w.End),
	}
}

// CanCheckOutWithoutPriorCheckIn reports whether instant is inside the carve-out
// that admits a check-out on a day with no check-in.
func (s ScheduleEvaluator) CanCheckOutWithoutPriorCheckIn(instant time.Time) bool {
	return s.windows.CheckOutWithoutCheckIn.ContainsTime(instant)
}

// CanCheckIn is true inside the check-in window while nothing is recorded for
// the day yet.
func (s ScheduleEvaluator) CanCheckIn(now time.Time, today *attendance.Attendance) bool {
	return s.IsWithinWindow(attendance.KindCheckIn, now) && !today.HasCheckIn() && !today.HasCheckOut()
}

// CanCheckOut is true inside the check-out window when the day is open, or when
// no check-in exists and the carve-out applies.
func (s ScheduleEvaluator) CanCheckOut(now time.Time, today *attendance.Attendance) bool {
	if !s.IsWithinWindow(attendance.KindCheckOut, now) {
		return false
	}
	if today.HasCheckIn() && !today.HasCheckOut() {
		return true
	}
	return s.CanCheckOutWithoutPriorCheckIn(now) && !today.HasCheckIn() && !today.HasCheckOut()
}

// CurrentTime formats now as HH:MM.
func CurrentTime(now time.Time) string {
	return timeofday.Of(now).String()
}
