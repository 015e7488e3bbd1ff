package postgres

import (
	"errors"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/employee"
	"gorm.io/gorm"
)

// CredentialStore loads login credentials straight off the employees table.
type CredentialStore struct {
	db *gorm.DB
}

func NewCredentialStore(db *gorm.DB) auth.CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) FindByEmail(email string) (*auth.Credential, error) {
	var emp employee.Employee
	err := s.db.Where("LOWER(email) = ?", email).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &auth.Credential{
		EmployeeID:   emp.ID,
		TenantID:     emp.TenantID,
		Role:         emp.Role,
		PasswordHash: emp.PasswordHash,
	}, nil
}
