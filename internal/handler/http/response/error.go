package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
)

// admissionStatus maps each refusal category to its HTTP status.
var admissionStatus = map[attendance.DenialCode]int{
	attendance.DenialPolicyViolation:     http.StatusBadRequest,
	attendance.DenialMissingPriorAction:  http.StatusBadRequest,
	attendance.DenialLocationUnavailable: http.StatusUnprocessableEntity,
	attendance.DenialOutOfGeofence:       http.StatusForbidden,
	attendance.DenialDuplicateAction:     http.StatusConflict,
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Refused clock actions carry their own user-facing reason
	var admissionErr *attendance.AdmissionError
	if errors.As(err, &admissionErr) {
		status, ok := admissionStatus[admissionErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		Error(w, status, strings.ToUpper(string(admissionErr.Code)), admissionErr.Reason, nil)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token has been revoked")
	case errors.Is(err, auth.ErrAccountInactive):
		Forbidden(w, "Account is inactive")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNIPExists):
		Conflict(w, "NIP already registered")
	case errors.Is(err, employee.ErrNoDataToUpdate):
		BadRequest(w, "No data to update", nil)
	case errors.Is(err, employee.ErrCannotDeleteSelf):
		BadRequest(w, "Cannot delete your own account", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, "You do not have access to this attendance data")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
