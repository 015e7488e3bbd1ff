package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/workstack/workforce-management/internal/report"
	"github.com/workstack/workforce-management/internal/workflow"
)

// ReportSource implements report.Source with joined GORM queries.
type ReportSource struct {
	db *gorm.DB
}

func NewReportSource(db *gorm.DB) report.Source {
	return &ReportSource{db: db}
}

func (s *ReportSource) LeaveRecords(tenantID int64, year int, ownerIDs []int64) ([]report.LeaveRecord, error) {
	from, to := yearBounds(year)

	var rows []struct {
		OwnerID     int64
		Name        string
		Department  string
		LeaveType   string
		WorkingDays int
		StartDate   time.Time
		Status      workflow.Status
		SubmittedAt *time.Time
		DecidedAt   *time.Time
	}
	query := s.db.Table("leave_requests AS lr").
		Select(`lr.owner_id, e.name, e.department, lr.leave_type, lr.working_days,
			lr.start_date, lr.status, lr.submitted_at, lr.decided_at`).
		Joins("JOIN employees e ON e.id = lr.owner_id").
		Where("lr.tenant_id = ? AND lr.start_date >= ? AND lr.start_date <= ?", tenantID, from, to)
	if ownerIDs != nil {
		query = query.Where("lr.owner_id IN ?", ownerIDs)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]report.LeaveRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, report.LeaveRecord{
			OwnerID:     row.OwnerID,
			OwnerName:   row.Name,
			Department:  row.Department,
			Type:        row.LeaveType,
			WorkingDays: row.WorkingDays,
			StartDate:   row.StartDate,
			Status:      row.Status,
			SubmittedAt: row.SubmittedAt,
			DecidedAt:   row.DecidedAt,
		})
	}
	return records, nil
}

func (s *ReportSource) ExpenseRecords(tenantID int64, year int, ownerIDs []int64) ([]report.ExpenseRecord, error) {
	from, to := yearBounds(year)

	var rows []struct {
		OwnerID     int64
		Department  string
		Category    string
		Amount      decimal.Decimal
		ExpenseDate time.Time
		Status      workflow.Status
		SubmittedAt *time.Time
		DecidedAt   *time.Time
	}
	query := s.db.Table("expense_claims AS ec").
		Select(`ec.owner_id, e.department, ec.category, ec.amount,
			ec.expense_date, ec.status, ec.submitted_at, ec.decided_at`).
		Joins("JOIN employees e ON e.id = ec.owner_id").
		Where("ec.tenant_id = ? AND ec.expense_date >= ? AND ec.expense_date <= ?", tenantID, from, to)
	if ownerIDs != nil {
		query = query.Where("ec.owner_id IN ?", ownerIDs)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]report.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, report.ExpenseRecord{
			OwnerID:     row.OwnerID,
			Department:  row.Department,
			Category:    row.Category,
			Amount:      row.Amount,
			ExpenseDate: row.ExpenseDate,
			Status:      row.Status,
			SubmittedAt: row.SubmittedAt,
			DecidedAt:   row.DecidedAt,
		})
	}
	return records, nil
}

func (s *ReportSource) LeaveAllocations(tenantID int64, year int, ownerIDs []int64) (map[int64]int64, error) {
	var rows []struct {
		EmployeeID int64
		Total      int64
	}
	query := s.db.Table("leave_balances").
		Select("employee_id, COALESCE(SUM(allocated_days), 0) AS total").
		Where("tenant_id = ? AND year = ?", tenantID, year).
		Group("employee_id")
	if ownerIDs != nil {
		query = query.Where("employee_id IN ?", ownerIDs)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	allocations := make(map[int64]int64, len(rows))
	for _, row := range rows {
		allocations[row.EmployeeID] = row.Total
	}
	return allocations, nil
}

func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return from, to
}
