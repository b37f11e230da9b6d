package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"

	EventCheckIn  = "attendance.check_in"
	EventCheckOut = "attendance.check_out"

	eventStatusSuccess = "success"
)

// Publisher broadcasts stored clock actions. *sse.Hub satisfies it.
type Publisher interface {
	Publish(topic string, event sse.Event)
}

// Options is the attendance policy the service evaluates against.
type Options struct {
	Windows        attendance.WindowConfig
	Offices        []geo.Office
	ServerGeofence bool
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	clock     clock.Clock
	schedule  ScheduleEvaluator
	geofence  GeofenceEvaluator
	admission AdmissionEvaluator
	publisher Publisher
}

// timePtrToString formats t in loc, or returns nil.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(timestampLayout)
	return &format
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.ClockRequest) (attendance.ClockResponse, error) {
	return s.record(ctx, attendance.KindCheckIn, req)
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.ClockRequest) (attendance.ClockResponse, error) {
	return s.record(ctx, attendance.KindCheckOut, req)
}

func (s *AttendanceServiceImpl) record(ctx context.Context, kind attendance.Kind, req attendance.ClockRequest) (attendance.ClockResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockResponse{}, err
	}

	now := s.clock.Now()
	today := clock.StartOfDay(now)

	current, err := s.AttendanceRepository.FindTodayRecord(ctx, req.EmployeeID, today)
	if err != nil {
		return attendance.ClockResponse{}, s.storageFailure("find_today", err)
	}

	// A concurrent request may store the day's row between the read and the
	// write. The loser re-reads once and is decided again against that row.
	// The location does not change between attempts, so it is checked once.
	var located *attendance.Decision
	for attempt := 0; attempt < 2; attempt++ {
		in := AdmissionInput{
			EmployeeID:    req.EmployeeID,
			Kind:          kind,
			Now:           now,
			Today:         current,
			Location:      req.Location,
			LocationError: req.LocationError,
		}
		decision := s.admission.EvaluateSchedule(in)
		if decision.Allowed {
			if located == nil {
				d := s.admission.EvaluateLocation(in)
				located = &d
			}
			decision = *located
		}
		if !decision.Allowed {
			return attendance.ClockResponse{}, s.deny(in, decision)
		}

		stored, err := s.store(ctx, kind, req, now, today, current)
		if errors.Is(err, attendance.ErrRecordExists) {
			current, err = s.AttendanceRepository.FindTodayRecord(ctx, req.EmployeeID, today)
			if err != nil {
				return attendance.ClockResponse{}, s.storageFailure("find_today", err)
			}
			continue
		}
		if err != nil {
			return attendance.ClockResponse{}, s.storageFailure(string(kind), err)
		}

		metrics.IncAdmissionDecision(string(kind), decision.Outcome())
		s.publish(kind, req, stored, now)

		message := "Check-in berhasil"
		if kind == attendance.KindCheckOut {
			message = "Check-out berhasil"
		}
		return attendance.ClockResponse{
			Message:    message,
			Attendance: MapAttendanceToResponse(stored, s.clock.Location()),
		}, nil
	}

	reason := ReasonAlreadyCheckedIn
	if kind == attendance.KindCheckOut {
		reason = ReasonAlreadyCheckedOut
	}
	return attendance.ClockResponse{}, s.deny(AdmissionInput{EmployeeID: req.EmployeeID, Kind: kind}, attendance.Deny(attendance.DenialDuplicateAction, reason))
}

func (s *AttendanceServiceImpl) store(ctx context.Context, kind attendance.Kind, req attendance.ClockRequest, now, today time.Time, current *attendance.Attendance) (attendance.Attendance, error) {
	if current != nil {
		return s.AttendanceRepository.Update(ctx, current.ID, attendance.Patch{
			Kind:     kind,
			At:       now,
			Location: req.Location,
		})
	}

	newAttendance := attendance.Attendance{
		EmployeeID: req.EmployeeID,
		Date:       today,
		Status:     attendance.StatusPresent,
	}
	if kind == attendance.KindCheckIn {
		newAttendance.CheckIn = &now
		newAttendance.CheckInLocation = req.Location
	} else {
		newAttendance.CheckOut = &now
		newAttendance.CheckOutLocation = req.Location
	}
	return s.AttendanceRepository.Create(ctx, newAttendance)
}

func (s *AttendanceServiceImpl) deny(in AdmissionInput, decision attendance.Decision) error {
	metrics.IncAdmissionDecision(string(in.Kind), decision.Outcome())
	slog.Info("attendance denied", "kind", in.Kind, "employee_id", in.EmployeeID, "code", decision.Code, "reason", decision.Reason)
	return decision.Err()
}

func (s *AttendanceServiceImpl) storageFailure(operation string, err error) error {
	metrics.IncStorageFailure(operation)
	slog.Error("attendance storage failed", "operation", operation, "error", err)
	return fmt.Errorf("failed to %s attendance: %w", operation, err)
}

func (s *AttendanceServiceImpl) publish(kind attendance.Kind, req attendance.ClockRequest, stored attendance.Attendance, at time.Time) {
	if s.publisher == nil {
		return
	}
	name := req.EmployeeName
	if name == "" && stored.EmployeeName != nil {
		name = *stored.EmployeeName
	}
	eventType := EventCheckIn
	if kind == attendance.KindCheckOut {
		eventType = EventCheckOut
	}
	s.publisher.Publish(sse.TopicAttendance, sse.Event{
		Event: eventType,
		Data: attendance.LiveEvent{
			Type:         eventType,
			AttendanceID: stored.ID,
			EmployeeID:   stored.EmployeeID,
			EmployeeName: name,
			Timestamp:    at.Format(time.RFC3339),
		},
	})
}

// GetStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context, employeeID string) (attendance.StatusResponse, error) {
	if validator.IsEmpty(employeeID) {
		return attendance.StatusResponse{}, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}

	now := s.clock.Now()
	current, err := s.AttendanceRepository.FindTodayRecord(ctx, employeeID, clock.StartOfDay(now))
	if err != nil {
		return attendance.StatusResponse{}, s.storageFailure("find_today", err)
	}

	windows := s.schedule.Windows()
	resp := attendance.StatusResponse{
		CanCheckIn:  s.schedule.CanCheckIn(now, current),
		CanCheckOut: s.schedule.CanCheckOut(now, current),
		Config: attendance.WindowConfigResponse{
			CheckIn:                windows.CheckIn.String(),
			CheckOut:               windows.CheckOut.String(),
			CheckOutWithoutCheckIn: windows.CheckOutWithoutCheckIn.String(),
		},
		CurrentTime: CurrentTime(now),
	}
	if current != nil {
		r := MapAttendanceToResponse(*current, s.clock.Location())
		resp.Attendance = &r
	}

	if !resp.CanCheckIn {
		resp.Messages.CheckIn = s.explain(attendance.KindCheckIn, employeeID, now, current)
	}
	if !resp.CanCheckOut {
		resp.Messages.CheckOut = s.explain(attendance.KindCheckOut, employeeID, now, current)
	}

	return resp, nil
}

func (s *AttendanceServiceImpl) explain(kind attendance.Kind, employeeID string, now time.Time, current *attendance.Attendance) *string {
	d := s.admission.EvaluateSchedule(AdmissionInput{EmployeeID: employeeID, Kind: kind, Now: now, Today: current})
	if d.Allowed {
		return nil
	}
	return &d.Reason
}

// CheckGeofence implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckGeofence(ctx context.Context, req attendance.GeofenceRequest) (attendance.GeofenceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.GeofenceResponse{}, err
	}

	point := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	resp := attendance.GeofenceResponse{WithinOfficeArea: s.geofence.IsWithinAnyOffice(point)}

	if nearest, err := s.geofence.NearestOffice(point); err == nil {
		resp.NearestOffice = &attendance.NearestOfficeResponse{
			ID:             nearest.Office.ID,
			Name:           nearest.Office.Name,
			DistanceMeters: math.Round(nearest.DistanceMeters),
			RadiusMeters:   nearest.Office.RadiusMeters,
		}
	}

	if resp.WithinOfficeArea {
		metrics.IncGeofenceCheck("inside")
	} else {
		metrics.IncGeofenceCheck("outside")
	}

	return resp, nil
}

// GetHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetHistory(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.HistoryEvent, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	loc := s.clock.Location()
	var from, to *time.Time
	if filter.Month != nil && *filter.Month != "" {
		start, err := time.ParseInLocation("2006-01", *filter.Month, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse month: %w", err)
		}
		end := start.AddDate(0, 1, 0)
		from, to = &start, &end
	}

	records, err := s.AttendanceRepository.ListByEmployee(ctx, filter.EmployeeID, from, to)
	if err != nil {
		return nil, s.storageFailure("list_history", err)
	}

	type timedEvent struct {
		at    time.Time
		event attendance.HistoryEvent
	}
	timed := make([]timedEvent, 0, len(records)*2)
	for _, r := range records {
		if r.CheckIn != nil {
			timed = append(timed, timedEvent{*r.CheckIn, attendance.HistoryEvent{
				ID:         r.ID + "-in",
				EmployeeID: r.EmployeeID,
				Type:       attendance.EventClockIn,
				Timestamp:  r.CheckIn.In(loc).Format(time.RFC3339),
				Location:   r.CheckInLocation,
				Status:     eventStatusSuccess,
			}})
		}
		if r.CheckOut != nil {
			timed = append(timed, timedEvent{*r.CheckOut, attendance.HistoryEvent{
				ID:         r.ID + "-out",
				EmployeeID: r.EmployeeID,
				Type:       attendance.EventClockOut,
				Timestamp:  r.CheckOut.In(loc).Format(time.RFC3339),
				Location:   r.CheckOutLocation,
				Status:     eventStatusSuccess,
			}})
		}
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].at.After(timed[j].at) })

	events := make([]attendance.HistoryEvent, 0, len(timed))
	for _, t := range timed {
		events = append(events, t.event)
	}
	return events, nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, s.storageFailure("list", err)
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, MapAttendanceToResponse(att, s.clock.Location()))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// GetDailyRoster implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyRoster(ctx context.Context, date string) ([]attendance.RosterEntryResponse, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	entries, err := s.AttendanceRepository.GetDailyRoster(ctx, day)
	if err != nil {
		return nil, s.storageFailure("roster", err)
	}

	responses := make([]attendance.RosterEntryResponse, 0, len(entries))
	for _, e := range entries {
		r := attendance.RosterEntryResponse{
			ID:      e.EmployeeID,
			Name:    e.Name,
			NIP:     e.NIP,
			Pangkat: e.Pangkat,
			Role:    e.Role,
			Status:  e.Status,
		}
		if e.Attendance != nil {
			a := MapAttendanceToResponse(*e.Attendance, s.clock.Location())
			r.Attendance = &a
		}
		responses = append(responses, r)
	}
	return responses, nil
}

// GetDailyStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyStats(ctx context.Context, date string) (attendance.DailyStatsResponse, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return attendance.DailyStatsResponse{}, err
	}

	stats, err := s.AttendanceRepository.GetDailyStats(ctx, day)
	if err != nil {
		return attendance.DailyStatsResponse{}, s.storageFailure("stats", err)
	}

	return attendance.DailyStatsResponse{
		Date:          day.Format(dateLayout),
		Total:         stats.Total,
		Present:       stats.Present,
		Absent:        stats.Absent,
		CheckInCount:  stats.CheckInCount,
		CheckOutCount: stats.CheckOutCount,
	}, nil
}

// Export implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Export(ctx context.Context, req attendance.ExportRequest) (attendance.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return attendance.ExportFile{}, err
	}
	day, err := s.parseDate(req.Date)
	if err != nil {
		return attendance.ExportFile{}, err
	}

	records, err := s.AttendanceRepository.ListByDate(ctx, day)
	if err != nil {
		return attendance.ExportFile{}, s.storageFailure("export", err)
	}

	rows := exportRows(records, s.clock.Location())
	filename := fmt.Sprintf("absensi_%s.%s", req.Date, req.Format)

	if req.Format == attendance.ExportXLSX {
		content, err := export.XLSX("Absensi "+req.Date, rows)
		if err != nil {
			return attendance.ExportFile{}, fmt.Errorf("failed to render xlsx export: %w", err)
		}
		return attendance.ExportFile{Filename: filename, ContentType: export.ContentTypeXLSX, Content: content}, nil
	}

	content, err := export.CSV(rows)
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to render csv export: %w", err)
	}
	return attendance.ExportFile{Filename: filename, ContentType: export.ContentTypeCSV, Content: content}, nil
}

// exportRows emits one row per stored clock action in time order.
func exportRows(records []attendance.Attendance, loc *time.Location) []export.Row {
	type timedRow struct {
		at  time.Time
		row export.Row
	}
	var timed []timedRow
	for _, r := range records {
		employeeID := r.EmployeeID
		if r.EmployeeNIP != nil {
			employeeID = *r.EmployeeNIP
		}
		var name string
		if r.EmployeeName != nil {
			name = *r.EmployeeName
		}
		add := func(at *time.Time, typ string, location *attendance.Location) {
			if at == nil {
				return
			}
			local := at.In(loc)
			timed = append(timed, timedRow{*at, export.Row{
				Date:       local.Format("02/01/2006"),
				EmployeeID: employeeID,
				Name:       name,
				Type:       typ,
				Time:       local.Format("15:04"),
				Location:   describeLocation(location),
				Status:     eventStatusSuccess,
			}})
		}
		add(r.CheckIn, attendance.EventClockIn, r.CheckInLocation)
		add(r.CheckOut, attendance.EventClockOut, r.CheckOutLocation)
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].at.Before(timed[j].at) })

	rows := make([]export.Row, 0, len(timed))
	for _, t := range timed {
		rows = append(rows, t.row)
	}
	return rows
}

func describeLocation(l *attendance.Location) string {
	if l == nil {
		return "-"
	}
	if l.Address != nil && *l.Address != "" {
		return *l.Address
	}
	point, ok := l.Coordinate()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.5f, %.5f", point.Latitude, point.Longitude)
}

func (s *AttendanceServiceImpl) parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.clock.Location())
	if err != nil {
		return time.Time{}, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}}
	}
	return day, nil
}

// MapAttendanceToResponse converts an Attendance entity to AttendanceResponse
// with timestamps shown in loc.
func MapAttendanceToResponse(att attendance.Attendance, loc *time.Location) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:               att.ID,
		EmployeeID:       att.EmployeeID,
		EmployeeName:     att.EmployeeName,
		EmployeeNIP:      att.EmployeeNIP,
		Date:             att.Date.Format(dateLayout),
		CheckIn:          timePtrToString(att.CheckIn, loc),
		CheckOut:         timePtrToString(att.CheckOut, loc),
		CheckInLocation:  att.CheckInLocation,
		CheckOutLocation: att.CheckOutLocation,
		Status:           att.Status,
		CreatedAt:        att.CreatedAt.In(loc).Format(timestampLayout),
		UpdatedAt:        att.UpdatedAt.In(loc).Format(timestampLayout),
	}
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	clk clock.Clock,
	opts Options,
	publisher Publisher,
) attendance.AttendanceService {
	schedule := NewScheduleEvaluator(opts.Windows)
	geofence := NewGeofenceEvaluator(opts.Offices)
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		clock:                clk,
		schedule:             schedule,
		geofence:             geofence,
		admission:            NewAdmissionEvaluator(schedule, geofence, opts.ServerGeofence),
		publisher:            publisher,
	}
}
