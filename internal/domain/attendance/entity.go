package attendance

import (
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/geo"
)

// Kind is the clock action being requested.
type Kind string

const (
	KindCheckIn  Kind = "check_in"
	KindCheckOut Kind = "check_out"
)

// Label is the Indonesian name of the action used in user-facing messages.
func (k Kind) Label() string {
	if k == KindCheckOut {
		return "pulang"
	}
	return "masuk"
}

func (k Kind) IsValid() bool {
	return k == KindCheckIn || k == KindCheckOut
}

const StatusPresent = "present"

// Location is the payload reported by the device for one clock action.
// Latitude and Longitude are nil when the device sent none.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Address   *string  `json:"address,omitempty"`
}

// Coordinate returns the reported point, and false when either half is missing.
func (l Location) Coordinate() (geo.Coordinate, bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Latitude: *l.Latitude, Longitude: *l.Longitude}, true
}

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	CheckIn          *time.Time
	CheckOut         *time.Time
	CheckInLocation  *Location
	CheckOutLocation *Location
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	EmployeeName *string
	EmployeeNIP  *string
}

func (a *Attendance) HasCheckIn() bool {
	return a != nil && a.CheckIn != nil
}

func (a *Attendance) HasCheckOut() bool {
	return a != nil && a.CheckOut != nil
}

// DayState is the position of an (employee, day) pair in the clock state machine.
type DayState string

const (
	StateNoRecord              DayState = "no_record"
	StateHasCheckIn            DayState = "has_check_in"
	StateHasCheckOutOnly       DayState = "has_check_out_only"
	StateHasCheckInAndCheckOut DayState = "has_check_in_and_check_out"
)

// StateOf derives the day state from today's record, which may be nil.
func StateOf(record *Attendance) DayState {
	switch {
	case record == nil || (!record.HasCheckIn() && !record.HasCheckOut()):
		return StateNoRecord
	case record.HasCheckIn() && record.HasCheckOut():
		return StateHasCheckInAndCheckOut
	case record.HasCheckIn():
		return StateHasCheckIn
	default:
		return StateHasCheckOutOnly
	}
}

// Patch sets exactly one clock action on an existing record.
type Patch struct {
	Kind     Kind
	At       time.Time
	Location *Location
}

// RosterEntry is an active employee and their record for a given day, if any.
type RosterEntry struct {
	EmployeeID string
	Name       string
	NIP        string
	Pangkat    string
	Role       string
	Status     string
	Attendance *Attendance
}

// DailyStats summarises one day of attendance across active employees.
type DailyStats struct {
	Total         int
	Present       int
	Absent        int
	CheckInCount  int
	CheckOutCount int
}
