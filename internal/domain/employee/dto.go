package employee

import (
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
)

const minPasswordLength = 6

type CreateEmployeeRequest struct {
	Name     string `json:"name"`
	NIP      string `json:"nip"`
	Pangkat  string `json:"pangkat"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	Password string `json:"password"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	r.NIP = strings.TrimSpace(r.NIP)
	r.Pangkat = strings.TrimSpace(r.Pangkat)

	if r.Role == "" {
		r.Role = string(RoleEmployee)
	}
	if r.Status == "" {
		r.Status = string(StatusActive)
	}

	errs = append(errs, validateProfile(r.Name, r.NIP, r.Pangkat, r.Role, r.Status)...)

	if len(r.Password) < minPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateEmployeeRequest replaces the employee profile. Password is only
// changed when present.
type UpdateEmployeeRequest struct {
	ID       string  `json:"-"`
	Name     string  `json:"name"`
	NIP      string  `json:"nip"`
	Pangkat  string  `json:"pangkat"`
	Role     string  `json:"role"`
	Status   string  `json:"status"`
	Password *string `json:"password,omitempty"`
}

func (r *UpdateEmployeeRequest) IsEmpty() bool {
	return r.Name == "" && r.NIP == "" && r.Pangkat == "" && r.Role == "" && r.Status == "" &&
		(r.Password == nil || *r.Password == "")
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	r.Name = strings.TrimSpace(r.Name)
	r.NIP = strings.TrimSpace(r.NIP)
	r.Pangkat = strings.TrimSpace(r.Pangkat)

	errs = append(errs, validateProfile(r.Name, r.NIP, r.Pangkat, r.Role, r.Status)...)

	if r.Password != nil && *r.Password != "" && len(*r.Password) < minPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateProfile(name, nip, pangkat, role, status string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}

	if validator.IsEmpty(nip) {
		errs = append(errs, validator.ValidationError{Field: "nip", Message: "nip is required"})
	} else if !validator.IsValidNIP(nip) {
		errs = append(errs, validator.ValidationError{Field: "nip", Message: ErrInvalidNIP.Error()})
	}

	if validator.IsEmpty(pangkat) {
		errs = append(errs, validator.ValidationError{Field: "pangkat", Message: "pangkat is required"})
	}

	if validator.IsEmpty(role) {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role is required"})
	} else if !validator.IsInSlice(role, []string{string(RoleAdmin), string(RoleEmployee)}) {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be one of: admin, employee"})
	}

	if validator.IsEmpty(status) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status is required"})
	} else if !validator.IsInSlice(status, []string{string(StatusActive), string(StatusInactive)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: active, inactive"})
	}

	return errs
}

// UpdatePatch is the validated column set written by EmployeeRepository.Update.
type UpdatePatch struct {
	Name         string
	NIP          string
	Pangkat      string
	Role         Role
	Status       Status
	PasswordHash *string
}

type EmployeeFilter struct {
	Search *string `json:"search,omitempty"` // name or NIP
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Role != nil && *f.Role != "" && !validator.IsInSlice(*f.Role, []string{string(RoleAdmin), string(RoleEmployee)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: admin, employee",
		})
	}

	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, []string{string(StatusActive), string(StatusInactive)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: active, inactive",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NIP       string `json:"nip"`
	Pangkat   string `json:"pangkat"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type EmployeeDetailResponse struct {
	EmployeeResponse
	Attendances []attendance.AttendanceResponse `json:"attendances"`
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}
