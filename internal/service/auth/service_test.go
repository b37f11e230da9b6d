package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret    = "test-secret-key-for-jwt"
	testAccessExp = "1h"
	testNIP       = "198507232010012001"
	testPassword  = "password123"
)

type employeeStub struct {
	employee.EmployeeRepository
	employees []employee.Employee
	err       error
}

func (s employeeStub) GetByNIP(ctx context.Context, nip string) (employee.Employee, error) {
	if s.err != nil {
		return employee.Employee{}, s.err
	}
	for _, e := range s.employees {
		if e.NIP == nip {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (s employeeStub) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range s.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func newTestEmployee(t *testing.T, status employee.Status) employee.Employee {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return employee.Employee{
		ID:           "0195a0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		Name:         "Budi Santoso",
		NIP:          testNIP,
		Pangkat:      "Penata / III c",
		Role:         employee.RoleEmployee,
		Status:       status,
		PasswordHash: string(hash),
	}
}

func newTestAuthService(t *testing.T, employees ...employee.Employee) (auth.AuthService, *jwt.JWTService) {
	t.Helper()
	jwtService, err := jwt.NewJWTService(testSecret, testAccessExp, nil)
	require.NoError(t, err)
	return NewAuthService(employeeStub{employees: employees}, jwtService), jwtService
}

func TestLogin_Success(t *testing.T) {
	emp := newTestEmployee(t, employee.StatusActive)
	svc, jwtService := newTestAuthService(t, emp)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{NIP: testNIP, Password: testPassword})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Greater(t, resp.ExpiresAt, int64(0))
	assert.Equal(t, emp.ID, resp.Employee.ID)
	assert.Equal(t, "employee", resp.Employee.Role)

	token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	claims := token.PrivateClaims()
	assert.Equal(t, emp.ID, claims["employee_id"])
	assert.Equal(t, testNIP, claims["nip"])
}

func TestLogin_Failures(t *testing.T) {
	active := newTestEmployee(t, employee.StatusActive)
	inactive := newTestEmployee(t, employee.StatusInactive)
	inactive.NIP = "198607242011012002"

	tests := []struct {
		name    string
		req     auth.LoginRequest
		wantErr error
	}{
		{"unknown NIP", auth.LoginRequest{NIP: "199001012015011001", Password: testPassword}, auth.ErrInvalidCredentials},
		{"wrong password", auth.LoginRequest{NIP: testNIP, Password: "wrong-password"}, auth.ErrInvalidCredentials},
		{"inactive account", auth.LoginRequest{NIP: inactive.NIP, Password: testPassword}, auth.ErrAccountInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestAuthService(t, active, inactive)
			_, err := svc.Login(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogin_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{NIP: "123", Password: ""})
	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs.ToMap(), "nip")
	assert.Contains(t, errs.ToMap(), "password")
}

func TestLogin_RepositoryError(t *testing.T) {
	jwtService, err := jwt.NewJWTService(testSecret, testAccessExp, nil)
	require.NoError(t, err)
	svc := NewAuthService(employeeStub{err: errors.New("db down")}, jwtService)

	_, err = svc.Login(context.Background(), auth.LoginRequest{NIP: testNIP, Password: testPassword})
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogout_RevokesToken(t *testing.T) {
	emp := newTestEmployee(t, employee.StatusActive)
	svc, jwtService := newTestAuthService(t, emp)
	ctx := context.Background()

	resp, err := svc.Login(ctx, auth.LoginRequest{NIP: testNIP, Password: testPassword})
	require.NoError(t, err)

	revoked, err := jwtService.IsTokenRevoked(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))

	revoked, err = jwtService.IsTokenRevoked(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, svc.Logout(ctx, "not-a-token"), auth.ErrInvalidToken)
}

func TestMe(t *testing.T) {
	emp := newTestEmployee(t, employee.StatusActive)
	svc, jwtService := newTestAuthService(t, emp)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{NIP: testNIP, Password: testPassword})
	require.NoError(t, err)
	token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)

	me, err := svc.Me(jwtauth.NewContext(context.Background(), token, nil))
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", me.Employee.Name)
	assert.Equal(t, "Penata / III c", me.Employee.Pangkat)

	_, err = svc.Me(context.Background())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
