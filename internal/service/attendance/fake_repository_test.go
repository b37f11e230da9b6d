package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/sse"
)

// memoryRepository keeps one record per (employee, day) like the unique
// constraint of the attendances table.
type memoryRepository struct {
	mu      sync.Mutex
	records map[string]*attendance.Attendance
	nextID  int

	// staleReads makes FindTodayRecord report no record this many times.
	staleReads int
	failWith   error
	roster     []attendance.RosterEntry
	stats      attendance.DailyStats
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[string]*attendance.Attendance)}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "/" + date.Format("2006-01-02")
}

func (m *memoryRepository) FindTodayRecord(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if m.staleReads > 0 {
		m.staleReads--
		return nil, nil
	}
	rec, ok := m.records[dayKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(a.EmployeeID, a.Date)
	if _, ok := m.records[key]; ok {
		return attendance.Attendance{}, attendance.ErrRecordExists
	}
	m.nextID++
	a.ID = fmt.Sprintf("att-%d", m.nextID)
	a.CreatedAt = a.Date
	a.UpdatedAt = a.Date
	m.records[key] = &a
	return a, nil
}

func (m *memoryRepository) Update(ctx context.Context, id string, patch attendance.Patch) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID != id {
			continue
		}
		at := patch.At
		switch patch.Kind {
		case attendance.KindCheckIn:
			if rec.CheckIn != nil {
				return attendance.Attendance{}, attendance.ErrRecordExists
			}
			rec.CheckIn = &at
			rec.CheckInLocation = patch.Location
		case attendance.KindCheckOut:
			if rec.CheckOut != nil {
				return attendance.Attendance{}, attendance.ErrRecordExists
			}
			rec.CheckOut = &at
			rec.CheckOutLocation = patch.Location
		}
		rec.UpdatedAt = at
		return *rec, nil
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			return *rec, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (m *memoryRepository) all() []attendance.Attendance {
	out := make([]attendance.Attendance, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (m *memoryRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, 0, m.failWith
	}
	all := m.all()
	start := (filter.Page - 1) * filter.Limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+filter.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memoryRepository) ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range m.all() {
		if rec.EmployeeID != employeeID {
			continue
		}
		if from != nil && rec.Date.Before(*from) {
			continue
		}
		if to != nil && !rec.Date.Before(*to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memoryRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Attendance
	for _, rec := range m.all() {
		if rec.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryRepository) GetDailyRoster(ctx context.Context, date time.Time) ([]attendance.RosterEntry, error) {
	return m.roster, m.failWith
}

func (m *memoryRepository) GetDailyStats(ctx context.Context, date time.Time) (attendance.DailyStats, error) {
	return m.stats, m.failWith
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []sse.Event
}

func (p *recordingPublisher) Publish(topic string, event sse.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	event.Topic = topic
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []sse.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sse.Event(nil), p.events...)
}
