package attendance

import (
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
)

// ========================================
// CLOCK DTOs
// ========================================

// ClockRequest is the body of check-in and check-out. Either Location or
// LocationError is expected; a request carrying neither is treated as
// location unavailable.
type ClockRequest struct {
	EmployeeID    string             `json:"-"`
	EmployeeName  string             `json:"-"`
	Location      *Location          `json:"location,omitempty"`
	LocationError *LocationErrorCode `json:"location_error,omitempty"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.LocationError != nil {
		valid := []string{string(LocationPermissionDenied), string(LocationPositionUnavailable), string(LocationTimeout)}
		if !validator.IsInSlice(string(*r.LocationError), valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "location_error",
				Message: "location_error must be one of: permission_denied, position_unavailable, timeout",
			})
		}
	}

	if r.Location != nil {
		if r.Location.Latitude != nil && (*r.Location.Latitude < -90 || *r.Location.Latitude > 90) {
			errs = append(errs, validator.ValidationError{
				Field:   "location.latitude",
				Message: "latitude must be between -90 and 90",
			})
		}
		if r.Location.Longitude != nil && (*r.Location.Longitude < -180 || *r.Location.Longitude > 180) {
			errs = append(errs, validator.ValidationError{
				Field:   "location.longitude",
				Message: "longitude must be between -180 and 180",
			})
		}
		if r.Location.Accuracy != nil && *r.Location.Accuracy < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.accuracy",
				Message: "accuracy must not be negative",
			})
		}
		if r.Location.Address != nil && len(*r.Location.Address) > 500 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.address",
				Message: "address must not exceed 500 characters",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employee_id"`
	EmployeeName     *string   `json:"employee_name,omitempty"`
	EmployeeNIP      *string   `json:"employee_nip,omitempty"`
	Date             string    `json:"date"`
	CheckIn          *string   `json:"check_in,omitempty"`
	CheckOut         *string   `json:"check_out,omitempty"`
	CheckInLocation  *Location `json:"check_in_location,omitempty"`
	CheckOutLocation *Location `json:"check_out_location,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        string    `json:"created_at"`
	UpdatedAt        string    `json:"updated_at"`
}

type ClockResponse struct {
	Message    string             `json:"message"`
	Attendance AttendanceResponse `json:"attendance"`
}

// ========================================
// STATUS DTOs
// ========================================

type WindowConfigResponse struct {
	CheckIn                string `json:"check_in"`
	CheckOut               string `json:"check_out"`
	CheckOutWithoutCheckIn string `json:"check_out_without_check_in"`
}

type StatusMessages struct {
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
}

type StatusResponse struct {
	Attendance  *AttendanceResponse  `json:"attendance"`
	CanCheckIn  bool                 `json:"can_check_in"`
	CanCheckOut bool                 `json:"can_check_out"`
	Config      WindowConfigResponse `json:"config"`
	CurrentTime string               `json:"current_time"`
	Messages    StatusMessages       `json:"messages"`
}

// ========================================
// GEOFENCE DTOs
// ========================================

type GeofenceRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *GeofenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	} else if *r.Latitude < -90 || *r.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	} else if *r.Longitude < -180 || *r.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type NearestOfficeResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   float64 `json:"radius_meters"`
}

type GeofenceResponse struct {
	WithinOfficeArea bool                   `json:"within_office_area"`
	NearestOffice    *NearestOfficeResponse `json:"nearest_office,omitempty"`
}

// ========================================
// HISTORY DTOs
// ========================================

type HistoryFilter struct {
	EmployeeID string  `json:"employee_id"`
	Month      *string `json:"month,omitempty"` // YYYY-MM
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if f.Month != nil && *f.Month != "" {
		if _, valid := validator.IsValidMonth(*f.Month); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

const (
	EventClockIn  = "clock-in"
	EventClockOut = "clock-out"
)

// HistoryEvent is one clock action flattened out of a daily record.
type HistoryEvent struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Type       string    `json:"type"`
	Timestamp  string    `json:"timestamp"`
	Location   *Location `json:"location"`
	Status     string    `json:"status"`
}

// ========================================
// ADMIN DTOs
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Date         *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, check_in, check_out
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	// Date validation
	dates := []struct {
		field string
		value *string
	}{
		{"date", f.Date},
		{"start_date", f.StartDate},
		{"end_date", f.EndDate},
	}
	for _, d := range dates {
		if d.value != nil && *d.value != "" {
			if _, valid := validator.IsValidDate(*d.value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   d.field,
					Message: d.field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	// Sort validation
	if f.SortBy != "" {
		validSortFields := []string{"date", "employee_name", "check_in", "check_out"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, employee_name, check_in, check_out",
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type RosterEntryResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	NIP        string              `json:"nip"`
	Pangkat    string              `json:"pangkat"`
	Role       string              `json:"role"`
	Status     string              `json:"status"`
	Attendance *AttendanceResponse `json:"attendance"`
}

type DailyStatsResponse struct {
	Date          string `json:"date"`
	Total         int    `json:"total"`
	Present       int    `json:"present"`
	Absent        int    `json:"absent"`
	CheckInCount  int    `json:"check_in_count"`
	CheckOutCount int    `json:"check_out_count"`
}

// ExportFormat is the file type produced by the daily export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportRequest struct {
	Date   string       `json:"date"`
	Format ExportFormat `json:"format"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Format == "" {
		r.Format = ExportCSV
	}
	if r.Format != ExportCSV && r.Format != ExportXLSX {
		errs = append(errs, validator.ValidationError{
			Field:   "format",
			Message: "format must be one of: csv, xlsx",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ExportFile is a rendered export ready to be served as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// LiveEvent is published to admins whenever a clock action is stored.
type LiveEvent struct {
	Type         string `json:"type"`
	AttendanceID string `json:"attendance_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// SSETokenResponse carries the short-lived token for the live feed.
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
