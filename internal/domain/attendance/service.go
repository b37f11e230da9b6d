package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn evaluates admission and records the day's check-in
	CheckIn(ctx context.Context, req ClockRequest) (ClockResponse, error)

	// CheckOut evaluates admission and records the day's check-out
	CheckOut(ctx context.Context, req ClockRequest) (ClockResponse, error)

	// GetStatus reports today's record and which actions are currently possible
	GetStatus(ctx context.Context, employeeID string) (StatusResponse, error)

	// CheckGeofence reports whether a coordinate is inside any office
	CheckGeofence(ctx context.Context, req GeofenceRequest) (GeofenceResponse, error)

	// GetHistory returns an employee's clock events, newest first
	GetHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEvent, error)

	// ListAttendance retrieves attendance records with filters (admin)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// GetDailyRoster lists every active employee with their record for date (admin)
	GetDailyRoster(ctx context.Context, date string) ([]RosterEntryResponse, error)

	// GetDailyStats summarises attendance for date (admin)
	GetDailyStats(ctx context.Context, date string) (DailyStatsResponse, error)

	// Export renders the records of one day as CSV or XLSX (admin)
	Export(ctx context.Context, req ExportRequest) (ExportFile, error)
}
