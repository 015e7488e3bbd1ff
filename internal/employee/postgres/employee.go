package postgres

import (
	"errors"

	"github.com/workstack/workforce-management/internal/employee"
	"gorm.io/gorm"
)

// EmployeeRepository implements employee.Repository using GORM.
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(tenantID, id int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) DirectReports(tenantID, managerID int64) ([]*employee.Employee, error) {
	var reports []*employee.Employee
	err := r.db.Where("tenant_id = ? AND manager_id = ?", tenantID, managerID).
		Order("name ASC").
		Find(&reports).Error
	return reports, err
}
