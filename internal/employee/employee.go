package employee

import (
	"time"
)

// Employee is a member of a tenant's workforce. ManagerID is nil for
// root-level employees, who are eligible for the self-approval exception.
type Employee struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	TenantID     int64     `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex"`
	Department   string    `json:"department"`
	ManagerID    *int64    `json:"manager_id,omitempty" gorm:"column:manager_id;index"`
	Role         string    `json:"role" gorm:"not null;default:'EMPLOYEE'"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) IsRootLevel() bool {
	return e.ManagerID == nil
}

// Repository defines the data access methods for the employee directory.
type Repository interface {
	GetByID(tenantID, id int64) (*Employee, error)
	DirectReports(tenantID, managerID int64) ([]*Employee, error)
}
