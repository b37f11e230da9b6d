package fixtures

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absensi-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

// ==========================================
// DEFAULT EMPLOYEES
// ==========================================

// DefaultEmployees returns the initial accounts of a fresh installation: one
// administrator and two employees, all sharing passwordHash.
func DefaultEmployees(passwordHash string) []employee.Employee {
	return []employee.Employee{
		{
			Name:         "Admin Sistem",
			NIP:          "198507232010012001",
			Pangkat:      "Penata Muda/III-a",
			Role:         employee.RoleAdmin,
			Status:       employee.StatusActive,
			PasswordHash: passwordHash,
		},
		{
			Name:         "Budi Santoso",
			NIP:          "198607242011012002",
			Pangkat:      "Penata Muda/III-a",
			Role:         employee.RoleEmployee,
			Status:       employee.StatusActive,
			PasswordHash: passwordHash,
		},
		{
			Name:         "Maharani Irwansyah",
			NIP:          "200203052020122001",
			Pangkat:      "Staff Andalan",
			Role:         employee.RoleEmployee,
			Status:       employee.StatusActive,
			PasswordHash: passwordHash,
		},
	}
}

// SeedEmployees inserts the default employees whose NIP is not yet taken, in
// one transaction. It returns how many were created.
func SeedEmployees(ctx context.Context, db *database.DB, repo employee.EmployeeRepository, password string) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash seed password: %w", err)
	}

	created := 0
	err = postgresql.WithTransaction(ctx, db, func(txCtx context.Context) error {
		for _, emp := range DefaultEmployees(string(hash)) {
			exists, err := repo.ExistsByNIP(txCtx, emp.NIP, nil)
			if err != nil {
				return err
			}
			if exists {
				slog.Info("seed employee already present", "nip", emp.NIP)
				continue
			}
			if _, err := repo.Create(txCtx, emp); err != nil {
				return fmt.Errorf("failed to seed employee %s: %w", emp.NIP, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}
