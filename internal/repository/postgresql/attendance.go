package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	dateLayout = "2006-01-02"

	attendanceUniqueDay = "attendances_employee_date_key"

	attendanceColumns = `
		a.id, a.employee_id, a.date, a.check_in, a.check_out,
		a.check_in_location, a.check_out_location, a.status,
		a.created_at, a.updated_at,
		e.name AS employee_name, e.nip AS employee_nip`
)

type attendanceRepository struct {
	db *database.DB
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut,
		&att.CheckInLocation, &att.CheckOutLocation, &att.Status,
		&att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeeNIP,
	)
	return att, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attendances, nil
}

// FindTodayRecord implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindTodayRecord(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.date = $2
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date.Format(dateLayout)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance for day: %w", err)
	}

	return &att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	newAttendance.ID = id.String()
	if newAttendance.Status == "" {
		newAttendance.Status = attendance.StatusPresent
	}

	query := `
		INSERT INTO attendances (
			id, employee_id, date, check_in, check_out,
			check_in_location, check_out_location, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.EmployeeID,
		newAttendance.Date.Format(dateLayout),
		newAttendance.CheckIn,
		newAttendance.CheckOut,
		newAttendance.CheckInLocation,
		newAttendance.CheckOutLocation,
		newAttendance.Status,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, attendanceUniqueDay) {
			return attendance.Attendance{}, attendance.ErrRecordExists
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// Update implements attendance.AttendanceRepository. The write only lands
// while the targeted action is still empty, so a concurrent duplicate loses.
func (a *attendanceRepository) Update(ctx context.Context, id string, patch attendance.Patch) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var query string
	switch patch.Kind {
	case attendance.KindCheckIn:
		query = `
			UPDATE attendances
			SET check_in = $2, check_in_location = $3, updated_at = NOW()
			WHERE id = $1 AND check_in IS NULL
			RETURNING id
		`
	case attendance.KindCheckOut:
		query = `
			UPDATE attendances
			SET check_out = $2, check_out_location = $3, updated_at = NOW()
			WHERE id = $1 AND check_out IS NULL
			RETURNING id
		`
	default:
		return attendance.Attendance{}, fmt.Errorf("unknown attendance kind %q", patch.Kind)
	}

	var updatedID string
	err := q.QueryRow(ctx, query, id, patch.At, patch.Location).Scan(&updatedID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
		}
		// Either the row is gone or the action was already stored.
		if _, getErr := a.GetByID(ctx, id); getErr != nil {
			return attendance.Attendance{}, getErr
		}
		return attendance.Attendance{}, attendance.ErrRecordExists
	}

	return a.GetByID(ctx, updatedID)
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Employee name filter (search)
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		conditions = append(conditions, fmt.Sprintf("e.name ILIKE $%d", argIdx))
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", argIdx))
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE ` + whereClause
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	// Build ORDER BY
	orderByField := "a.date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.name"
	case "check_in":
		orderByField = "a.check_in"
	case "check_out":
		orderByField = "a.check_out"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s NULLS LAST, a.id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, whereClause, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}

	attendances, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}

	return attendances, total, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"a.employee_id = $1"}
	args := []interface{}{employeeID}
	if from != nil {
		args = append(args, from.Format(dateLayout))
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, to.Format(dateLayout))
		conditions = append(conditions, fmt.Sprintf("a.date < $%d", len(args)))
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY a.date DESC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee attendances: %w", err)
	}
	return collectAttendances(rows)
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.date = $1
		ORDER BY e.name
	`

	rows, err := q.Query(ctx, query, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances by date: %w", err)
	}
	return collectAttendances(rows)
}

// GetDailyRoster implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetDailyRoster(ctx context.Context, date time.Time) ([]attendance.RosterEntry, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			e.id, e.name, e.nip, e.pangkat, e.role, e.status,
			a.id, a.date, a.check_in, a.check_out,
			a.check_in_location, a.check_out_location, a.status,
			a.created_at, a.updated_at
		FROM employees e
		LEFT JOIN attendances a ON a.employee_id = e.id AND a.date = $1
		WHERE e.status = 'active'
		ORDER BY e.name
	`

	rows, err := q.Query(ctx, query, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily roster: %w", err)
	}
	defer rows.Close()

	entries := make([]attendance.RosterEntry, 0)
	for rows.Next() {
		var (
			entry                attendance.RosterEntry
			attID, attStatus     *string
			attDate              *time.Time
			checkIn, checkOut    *time.Time
			inLoc, outLoc        *attendance.Location
			createdAt, updatedAt *time.Time
		)
		err := rows.Scan(
			&entry.EmployeeID, &entry.Name, &entry.NIP, &entry.Pangkat, &entry.Role, &entry.Status,
			&attID, &attDate, &checkIn, &checkOut,
			&inLoc, &outLoc, &attStatus,
			&createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}

		if attID != nil {
			name, nip := entry.Name, entry.NIP
			entry.Attendance = &attendance.Attendance{
				ID:               *attID,
				EmployeeID:       entry.EmployeeID,
				Date:             *attDate,
				CheckIn:          checkIn,
				CheckOut:         checkOut,
				CheckInLocation:  inLoc,
				CheckOutLocation: outLoc,
				Status:           *attStatus,
				CreatedAt:        *createdAt,
				UpdatedAt:        *updatedAt,
				EmployeeName:     &name,
				EmployeeNIP:      &nip,
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetDailyStats implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetDailyStats(ctx context.Context, date time.Time) (attendance.DailyStats, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM employees WHERE status = 'active'),
			COUNT(DISTINCT a.employee_id),
			COUNT(*) FILTER (WHERE a.status = 'present'),
			COUNT(a.check_in),
			COUNT(a.check_out)
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id AND e.status = 'active'
		WHERE a.date = $1
	`

	var stats attendance.DailyStats
	var withRecord int
	err := q.QueryRow(ctx, query, date.Format(dateLayout)).Scan(
		&stats.Total, &withRecord, &stats.Present, &stats.CheckInCount, &stats.CheckOutCount,
	)
	if err != nil {
		return attendance.DailyStats{}, fmt.Errorf("failed to get daily stats: %w", err)
	}
	stats.Absent = max(stats.Total-withRecord, 0)

	return stats, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
