package employee

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
	attendanceservice "github.com/cmlabs-hris/absensi-backend-go/internal/service/attendance"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	location       *time.Location
	bcryptCost     int
}

func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	location *time.Location,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		location:       location,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

func (s *EmployeeServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Helper function to map Employee to EmployeeResponse
func mapEmployeeToResponse(emp employee.Employee, loc *time.Location) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:        emp.ID,
		Name:      emp.Name,
		NIP:       emp.NIP,
		Pangkat:   emp.Pangkat,
		Role:      string(emp.Role),
		Status:    string(emp.Status),
		CreatedAt: emp.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
		UpdatedAt: emp.UpdatedAt.In(loc).Format("2006-01-02 15:04:05"),
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, mapEmployeeToResponse(emp, s.location))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeDetailResponse, error) {
	if !validator.IsValidUUID(id) {
		return employee.EmployeeDetailResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeDetailResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeDetailResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	records, err := s.attendanceRepo.ListByEmployee(ctx, id, nil, nil)
	if err != nil {
		return employee.EmployeeDetailResponse{}, fmt.Errorf("failed to list employee attendance: %w", err)
	}

	attendances := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		attendances = append(attendances, attendanceservice.MapAttendanceToResponse(r, s.location))
	}

	return employee.EmployeeDetailResponse{
		EmployeeResponse: mapEmployeeToResponse(emp, s.location),
		Attendances:      attendances,
	}, nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	exists, err := s.employeeRepo.ExistsByNIP(ctx, req.NIP, nil)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check NIP: %w", err)
	}
	if exists {
		return employee.EmployeeResponse{}, employee.ErrNIPExists
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		Name:         req.Name,
		NIP:          req.NIP,
		Pangkat:      req.Pangkat,
		Role:         employee.Role(req.Role),
		Status:       employee.Status(req.Status),
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, employee.ErrNIPExists) {
			return employee.EmployeeResponse{}, employee.ErrNIPExists
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return mapEmployeeToResponse(created, s.location), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if req.IsEmpty() {
		return employee.EmployeeResponse{}, employee.ErrNoDataToUpdate
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	// Check if employee exists
	existing, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	// Check for duplicate NIP if being changed
	if req.NIP != existing.NIP {
		exists, err := s.employeeRepo.ExistsByNIP(ctx, req.NIP, &req.ID)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to check NIP: %w", err)
		}
		if exists {
			return employee.EmployeeResponse{}, employee.ErrNIPExists
		}
	}

	patch := employee.UpdatePatch{
		Name:    req.Name,
		NIP:     req.NIP,
		Pangkat: req.Pangkat,
		Role:    employee.Role(req.Role),
		Status:  employee.Status(req.Status),
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.employeeRepo.Update(ctx, req.ID, patch)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) || errors.Is(err, employee.ErrNIPExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}

	return mapEmployeeToResponse(updated, s.location), nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return err
	}

	// Prevent self-deletion
	if claims.EmployeeID == id {
		return employee.ErrCannotDeleteSelf
	}

	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	return nil
}
