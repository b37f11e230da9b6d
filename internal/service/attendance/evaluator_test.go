package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/timeofday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wita    = time.FixedZone("WITA", 8*3600)
	offices = []geo.Office{
		{ID: "1", Name: "SD NEGERI 18 PAREPARE", Latitude: -4.01329, Longitude: 119.62596, RadiusMeters: 100},
		{ID: "2", Name: "BERINGIN", Latitude: -4.03630, Longitude: 119.63229, RadiusMeters: 100},
	}
	inside  = point(-4.01330, 119.62600)
	outside = point(-4.10000, 119.70000)
)

func point(lat, lon float64) attendance.Location {
	return attendance.Location{Latitude: &lat, Longitude: &lon}
}

func at(hhmm string) time.Time {
	t := timeofday.MustParse(hhmm)
	return time.Date(2025, 3, 10, t.Hour(), t.Minute(), 0, 0, wita)
}

func checkedIn() *attendance.Attendance {
	t := at("07:15")
	return &attendance.Attendance{ID: "a1", CheckIn: &t}
}

func checkedOutOnly() *attendance.Attendance {
	t := at("16:00")
	return &attendance.Attendance{ID: "a1", CheckOut: &t}
}

func closedDay() *attendance.Attendance {
	in, out := at("07:15"), at("16:00")
	return &attendance.Attendance{ID: "a1", CheckIn: &in, CheckOut: &out}
}

func TestScheduleEvaluator_IsWithinWindow(t *testing.T) {
	s := NewScheduleEvaluator(attendance.DefaultWindowConfig())

	tests := []struct {
		kind attendance.Kind
		at   string
		want bool
	}{
		{attendance.KindCheckIn, "06:29", false},
		{attendance.KindCheckIn, "06:30", true},
		{attendance.KindCheckIn, "08:00", true},
		{attendance.KindCheckIn, "09:00", true},
		{attendance.KindCheckIn, "09:01", false},
		{attendance.KindCheckOut, "14:59", false},
		{attendance.KindCheckOut, "15:00", true},
		{attendance.KindCheckOut, "23:59", true},
		{attendance.KindCheckOut, "08:00", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"@"+tt.at, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsWithinWindow(tt.kind, at(tt.at)))
		})
	}
}

func TestScheduleEvaluator_IgnoresSeconds(t *testing.T) {
	s := NewScheduleEvaluator(attendance.DefaultWindowConfig())
	assert.True(t, s.IsWithinWindow(attendance.KindCheckIn, at("09:00").Add(59*time.Second)))
}

func TestScheduleEvaluator_ValidateMessage(t *testing.T) {
	s := NewScheduleEvaluator(attendance.DefaultWindowConfig())

	v := s.Validate(attendance.KindCheckIn, at("10:00"))
	assert.False(t, v.Valid)
	assert.Equal(t, "Jam masuk hanya diperbolehkan antara 06:30 - 09:00", v.Message)

	v = s.Validate(attendance.KindCheckOut, at("10:00"))
	assert.Equal(t, "Jam pulang hanya diperbolehkan antara 15:00 - 23:59", v.Message)

	v = s.Validate(attendance.KindCheckOut, at("15:30"))
	assert.True(t, v.Valid)
	assert.Empty(t, v.Message)
}

func TestScheduleEvaluator_StatusFlags(t *testing.T) {
	s := NewScheduleEvaluator(attendance.DefaultWindowConfig())

	tests := []struct {
		name         string
		at           string
		today        *attendance.Attendance
		wantCheckIn  bool
		wantCheckOut bool
	}{
		{"morning, nothing recorded", "07:00", nil, true, false},
		{"morning, checked in", "07:30", checkedIn(), false, false},
		{"afternoon, checked in", "16:00", checkedIn(), false, true},
		{"afternoon, nothing recorded", "16:00", nil, false, true},
		{"afternoon, day closed", "17:00", closedDay(), false, false},
		{"afternoon, checked out only", "17:00", checkedOutOnly(), false, false},
		{"midday", "12:00", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCheckIn, s.CanCheckIn(at(tt.at), tt.today))
			assert.Equal(t, tt.wantCheckOut, s.CanCheckOut(at(tt.at), tt.today))
		})
	}
}

func TestScheduleEvaluator_CarveOutIsSeparate(t *testing.T) {
	windows := attendance.DefaultWindowConfig()
	windows.CheckOutWithoutCheckIn = timeofday.Window{Start: timeofday.MustParse("20:00"), End: timeofday.MustParse("23:59")}
	s := NewScheduleEvaluator(windows)

	assert.False(t, s.CanCheckOut(at("16:00"), nil))
	assert.True(t, s.CanCheckOut(at("16:00"), checkedIn()))
	assert.True(t, s.CanCheckOut(at("20:00"), nil))
}

func TestGeofenceEvaluator_Evaluate(t *testing.T) {
	g := NewGeofenceEvaluator(offices)

	d := g.Evaluate(&inside, nil)
	assert.True(t, d.Allowed)
	require.NotNil(t, d.Nearest)
	assert.Equal(t, "1", d.Nearest.Office.ID)

	d = g.Evaluate(&outside, nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, attendance.DenialOutOfGeofence, d.Code)
	assert.Equal(t, ReasonOutOfGeofence, d.Reason)
	require.NotNil(t, d.Nearest)
	assert.Greater(t, d.Nearest.DistanceMeters, 100.0)
}

func TestGeofenceEvaluator_SecondOffice(t *testing.T) {
	g := NewGeofenceEvaluator(offices)

	second := point(-4.03630, 119.63229)
	d := g.Evaluate(&second, nil)
	assert.True(t, d.Allowed)
	assert.Equal(t, "2", d.Nearest.Office.ID)
}

func TestGeofenceEvaluator_LocationUnavailable(t *testing.T) {
	g := NewGeofenceEvaluator(offices)
	code := func(c attendance.LocationErrorCode) *attendance.LocationErrorCode { return &c }
	invalid := point(91, 0)
	lat := -4.01330

	tests := []struct {
		name     string
		location *attendance.Location
		locErr   *attendance.LocationErrorCode
		reason   string
	}{
		{"no location", nil, nil, ReasonLocationMissing},
		{"invalid coordinate", &invalid, nil, ReasonLocationInvalid},
		{"location without coordinates", &attendance.Location{}, nil, ReasonLocationMissing},
		{"latitude only", &attendance.Location{Latitude: &lat}, nil, ReasonLocationMissing},
		{"permission denied", nil, code(attendance.LocationPermissionDenied), ReasonPermissionDenied},
		{"position unavailable", nil, code(attendance.LocationPositionUnavailable), ReasonPositionUnavailable},
		{"timeout", &inside, code(attendance.LocationTimeout), ReasonLocationTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Evaluate(tt.location, tt.locErr)
			assert.False(t, d.Allowed)
			assert.Equal(t, attendance.DenialLocationUnavailable, d.Code)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestGeofenceEvaluator_CheckReported(t *testing.T) {
	g := NewGeofenceEvaluator(offices)
	invalid := point(0, 181)

	assert.True(t, g.CheckReported(nil).Allowed)
	assert.True(t, g.CheckReported(&outside).Allowed)

	d := g.CheckReported(&attendance.Location{})
	assert.False(t, d.Allowed)
	assert.Equal(t, attendance.DenialLocationUnavailable, d.Code)
	assert.Equal(t, ReasonLocationMissing, d.Reason)

	d = g.CheckReported(&invalid)
	assert.Equal(t, attendance.DenialLocationUnavailable, d.Code)
	assert.Equal(t, ReasonLocationInvalid, d.Reason)
}

func TestGeofenceEvaluator_NoOffices(t *testing.T) {
	g := NewGeofenceEvaluator(nil)

	d := g.Evaluate(&inside, nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, attendance.DenialOutOfGeofence, d.Code)
	assert.Nil(t, d.Nearest)
}

func TestAdmissionEvaluator_Evaluate(t *testing.T) {
	windows := attendance.DefaultWindowConfig()
	lateCarveOut := windows
	lateCarveOut.CheckOutWithoutCheckIn = timeofday.Window{Start: timeofday.MustParse("20:00"), End: timeofday.MustParse("23:59")}
	denied := attendance.LocationPermissionDenied
	empty := attendance.Location{}

	tests := []struct {
		name     string
		windows  attendance.WindowConfig
		geofence bool
		in       AdmissionInput
		want     attendance.DenialCode
	}{
		{"check-in inside window and office", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00"), Location: &inside}, ""},
		{"check-in twice", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00"), Today: checkedIn(), Location: &inside}, attendance.DenialDuplicateAction},
		{"duplicate wins over window", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("10:00"), Today: checkedIn(), Location: &outside}, attendance.DenialDuplicateAction},
		{"check-in after check-out only", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00"), Today: checkedOutOnly(), Location: &inside}, attendance.DenialDuplicateAction},
		{"check-in late", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("09:01"), Location: &inside}, attendance.DenialPolicyViolation},
		{"window wins over geofence", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("10:00"), Location: &outside}, attendance.DenialPolicyViolation},
		{"check-in outside office", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00"), Location: &outside}, attendance.DenialOutOfGeofence},
		{"check-in without permission", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00"), LocationError: &denied}, attendance.DenialLocationUnavailable},
		{"check-in with empty location", windows, true,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00"), Location: &empty}, attendance.DenialLocationUnavailable},
		{"check-out after check-in", windows, true,
			AdmissionInput{Kind: attendance.KindCheckOut, Now: at("16:00"), Today: checkedIn(), Location: &inside}, ""},
		{"check-out without check-in inside carve-out", windows, true,
			AdmissionInput{Kind: attendance.KindCheckOut, Now: at("16:00"), Location: &inside}, ""},
		{"check-out early", windows, true,
			AdmissionInput{Kind: attendance.KindCheckOut, Now: at("14:00"), Today: checkedIn(), Location: &inside}, attendance.DenialPolicyViolation},
		{"check-out twice", windows, true,
			AdmissionInput{Kind: attendance.KindCheckOut, Now: at("17:00"), Today: closedDay(), Location: &inside}, attendance.DenialDuplicateAction},
		{"check-out without check-in before carve-out", lateCarveOut, true,
			AdmissionInput{Kind: attendance.KindCheckOut, Now: at("16:00"), Location: &inside}, attendance.DenialMissingPriorAction},
		{"geofence disabled admits missing location", windows, false,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00")}, ""},
		{"geofence disabled still checks window", windows, false,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("12:00")}, attendance.DenialPolicyViolation},
		{"geofence disabled rejects empty location", windows, false,
			AdmissionInput{Kind: attendance.KindCheckIn, Now: at("07:00"), Location: &empty}, attendance.DenialLocationUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := NewScheduleEvaluator(tt.windows)
			e := NewAdmissionEvaluator(schedule, NewGeofenceEvaluator(offices), tt.geofence)

			d := e.Evaluate(tt.in)
			if tt.want == "" {
				assert.True(t, d.Allowed, "denied: %s", d.Reason)
				return
			}
			assert.False(t, d.Allowed)
			assert.Equal(t, tt.want, d.Code)
			assert.NotEmpty(t, d.Reason)
		})
	}
}
