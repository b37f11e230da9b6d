package auth

import (
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	NIP      string `json:"nip"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.NIP = strings.TrimSpace(r.NIP)

	// NIP
	if validator.IsEmpty(r.NIP) {
		errs = append(errs, validator.ValidationError{
			Field:   "nip",
			Message: "nip is required",
		})
	} else if !validator.IsValidNIP(r.NIP) {
		errs = append(errs, validator.ValidationError{
			Field:   "nip",
			Message: "nip must be exactly 18 digits",
		})
	}

	// Password
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	NIP     string `json:"nip"`
	Pangkat string `json:"pangkat,omitempty"`
	Role    string `json:"role"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   int64        `json:"expires_at"`
	Employee    EmployeeInfo `json:"employee"`
}

type MeResponse struct {
	Employee EmployeeInfo `json:"employee"`
}
