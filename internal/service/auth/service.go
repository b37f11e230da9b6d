package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employee.EmployeeRepository
	jwt.Service
}

func NewAuthService(employeeRepository employee.EmployeeRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		EmployeeRepository: employeeRepository,
		Service:            jwtService,
	}
}

func mapEmployeeInfo(emp employee.Employee) auth.EmployeeInfo {
	return auth.EmployeeInfo{
		ID:      emp.ID,
		Name:    emp.Name,
		NIP:     emp.NIP,
		Pangkat: emp.Pangkat,
		Role:    string(emp.Role),
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByNIP(ctx, req.NIP)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee by NIP: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if !emp.IsActive() {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	accessToken, expiresAt, err := a.Service.GenerateAccessToken(jwt.Claims{
		EmployeeID: emp.ID,
		NIP:        emp.NIP,
		Name:       emp.Name,
		Role:       string(emp.Role),
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	slog.Info("employee logged in", "employee_id", emp.ID, "role", emp.Role)

	return auth.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Employee:    mapEmployeeInfo(emp),
	}, nil
}

// Logout implements auth.AuthService. The token stays revoked until it
// would have expired anyway.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	parsed, err := a.Service.JWTAuth().Decode(token)
	if err != nil {
		return auth.ErrInvalidToken
	}

	if err := a.Service.RevokeToken(ctx, token, parsed.Expiration()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.MeResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return auth.MeResponse{}, auth.ErrInvalidToken
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.MeResponse{}, auth.ErrInvalidToken
		}
		return auth.MeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return auth.MeResponse{Employee: mapEmployeeInfo(emp)}, nil
}
