package employee

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryEmployees struct {
	mu   sync.Mutex
	byID map[string]employee.Employee
}

func newMemoryEmployees() *memoryEmployees {
	return &memoryEmployees{byID: make(map[string]employee.Employee)}
}

func (m *memoryEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *memoryEmployees) GetByNIP(ctx context.Context, nip string) (employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, emp := range m.byID {
		if emp.NIP == nip {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m *memoryEmployees) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	newEmployee.ID = uuid.Must(uuid.NewV7()).String()
	newEmployee.CreatedAt = time.Now()
	newEmployee.UpdatedAt = newEmployee.CreatedAt
	m.byID[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

func (m *memoryEmployees) Update(ctx context.Context, id string, patch employee.UpdatePatch) (employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	emp.Name, emp.NIP, emp.Pangkat, emp.Role, emp.Status = patch.Name, patch.NIP, patch.Pangkat, patch.Role, patch.Status
	if patch.PasswordHash != nil {
		emp.PasswordHash = *patch.PasswordHash
	}
	m.byID[id] = emp
	return emp, nil
}

func (m *memoryEmployees) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryEmployees) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]employee.Employee, 0, len(m.byID))
	for _, emp := range m.byID {
		all = append(all, emp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start := min((filter.Page-1)*filter.Limit, len(all))
	end := min(start+filter.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (m *memoryEmployees) ExistsByNIP(ctx context.Context, nip string, excludeID *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, emp := range m.byID {
		if emp.NIP == nip && (excludeID == nil || *excludeID != id) {
			return true, nil
		}
	}
	return false, nil
}

type attendanceStub struct {
	attendance.AttendanceRepository
	records []attendance.Attendance
}

func (s attendanceStub) ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, r := range s.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

var wita = time.FixedZone("WITA", 8*3600)

func newTestService(records ...attendance.Attendance) (*EmployeeServiceImpl, *memoryEmployees) {
	repo := newMemoryEmployees()
	return &EmployeeServiceImpl{
		employeeRepo:   repo,
		attendanceRepo: attendanceStub{records: records},
		location:       wita,
		bcryptCost:     bcrypt.MinCost,
	}, repo
}

func validCreate(nip string) employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Name:     "Siti Aminah",
		NIP:      nip,
		Pangkat:  "Penata Muda / III a",
		Password: "rahasia123",
	}
}

func TestCreateEmployee(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	resp, err := svc.CreateEmployee(ctx, validCreate("198507232010012001"))
	require.NoError(t, err)
	assert.Equal(t, "Siti Aminah", resp.Name)
	assert.Equal(t, "employee", resp.Role)
	assert.Equal(t, "active", resp.Status)

	stored := repo.byID[resp.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("rahasia123")))

	_, err = svc.CreateEmployee(ctx, validCreate("198507232010012001"))
	assert.ErrorIs(t, err, employee.ErrNIPExists)
}

func TestCreateEmployee_Validation(t *testing.T) {
	svc, _ := newTestService()

	req := validCreate("12345")
	req.Role = "owner"
	req.Password = "abc"
	_, err := svc.CreateEmployee(context.Background(), req)

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, employee.ErrInvalidNIP.Error(), errs.ToMap()["nip"])
	assert.Contains(t, errs.ToMap(), "role")
	assert.Contains(t, errs.ToMap(), "password")
}

func TestUpdateEmployee(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, validCreate("198507232010012001"))
	require.NoError(t, err)
	before := repo.byID[created.ID].PasswordHash

	updated, err := svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID:      created.ID,
		Name:    "Siti Aminah, S.Pd",
		NIP:     "198507232010012001",
		Pangkat: "Penata / III c",
		Role:    "admin",
		Status:  "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "Siti Aminah, S.Pd", updated.Name)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, before, repo.byID[created.ID].PasswordHash, "password kept when not provided")

	password := "baru123456"
	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID: created.ID, Name: "Siti", NIP: "198507232010012001", Pangkat: "III c", Role: "employee", Status: "inactive",
		Password: &password,
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.byID[created.ID].PasswordHash), []byte(password)))
}

func TestUpdateEmployee_Errors(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateEmployee(ctx, validCreate("198507232010012001"))
	require.NoError(t, err)
	_, err = svc.CreateEmployee(ctx, validCreate("198607242011012002"))
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: first.ID})
	assert.ErrorIs(t, err, employee.ErrNoDataToUpdate)

	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID: first.ID, Name: "Siti", NIP: "198607242011012002", Pangkat: "III a", Role: "employee", Status: "active",
	})
	assert.ErrorIs(t, err, employee.ErrNIPExists)

	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{
		ID: uuid.Must(uuid.NewV7()).String(), Name: "Siti", NIP: "198507232010012009", Pangkat: "III a", Role: "employee", Status: "active",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestGetEmployee_WithAttendance(t *testing.T) {
	checkIn := time.Date(2025, 3, 10, 7, 5, 0, 0, wita)
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, validCreate("198507232010012001"))
	require.NoError(t, err)
	svc.attendanceRepo = attendanceStub{records: []attendance.Attendance{
		{ID: "a1", EmployeeID: created.ID, Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), CheckIn: &checkIn, Status: "present"},
		{ID: "a2", EmployeeID: "someone-else"},
	}}

	detail, err := svc.GetEmployee(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)
	require.Len(t, detail.Attendances, 1)
	assert.Equal(t, "2025-03-10 07:05:00", *detail.Attendances[0].CheckIn)

	_, err = svc.GetEmployee(ctx, uuid.Must(uuid.NewV7()).String())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = svc.GetEmployee(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListEmployees(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, nip := range []string{"198507232010012001", "198607242011012002", "198707252012012003"} {
		_, err := svc.CreateEmployee(ctx, validCreate(nip))
		require.NoError(t, err)
	}

	resp, err := svc.ListEmployees(ctx, employee.EmployeeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.TotalCount)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, "1-2 of 3", resp.Showing)
	assert.Len(t, resp.Employees, 2)
}

func contextAs(t *testing.T, employeeID string) context.Context {
	t.Helper()
	svc, err := jwt.NewJWTService("test-secret", "1h", nil)
	require.NoError(t, err)
	tokenString, _, err := svc.GenerateAccessToken(jwt.Claims{EmployeeID: employeeID, Role: "admin"})
	require.NoError(t, err)
	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestDeleteEmployee(t *testing.T) {
	svc, repo := newTestService()

	admin, err := svc.CreateEmployee(context.Background(), validCreate("198507232010012001"))
	require.NoError(t, err)
	other, err := svc.CreateEmployee(context.Background(), validCreate("198607242011012002"))
	require.NoError(t, err)

	ctx := contextAs(t, admin.ID)
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, admin.ID), employee.ErrCannotDeleteSelf)

	require.NoError(t, svc.DeleteEmployee(ctx, other.ID))
	assert.NotContains(t, repo.byID, other.ID)

	assert.ErrorIs(t, svc.DeleteEmployee(ctx, other.ID), employee.ErrEmployeeNotFound)
	assert.Error(t, svc.DeleteEmployee(context.Background(), other.ID))
}
