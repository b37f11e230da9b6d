package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Per-day uniqueness is enforced by storage: Create reports ErrRecordExists
// when a row for (employee, date) already exists, and Update reports
// ErrRecordExists when the action it sets is already stored.
type AttendanceRepository interface {
	// FindTodayRecord returns the record for employee on date, or nil when none exists
	FindTodayRecord(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Create inserts the first record of the day
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// Update sets one clock action on an existing record in place
	Update(ctx context.Context, id string, patch Patch) (Attendance, error)

	// GetByID retrieves attendance by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListByEmployee retrieves an employee's records in [from, to), newest first
	ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]Attendance, error)

	// ListByDate retrieves every record of a day with employee name and NIP
	ListByDate(ctx context.Context, date time.Time) ([]Attendance, error)

	// GetDailyRoster lists all active employees with their record for date
	GetDailyRoster(ctx context.Context, date time.Time) ([]RosterEntry, error)

	// GetDailyStats counts active employees and their records for date
	GetDailyStats(ctx context.Context, date time.Time) (DailyStats, error)
}
