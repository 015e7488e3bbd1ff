package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/leave"
	"github.com/workstack/workforce-management/internal/workflow"
)

// LeaveRepository implements leave.Repository using GORM.
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(req *leave.Request) error {
	return r.db.Create(req).Error
}

func (r *LeaveRepository) GetByID(tenantID, id int64) (*leave.Request, error) {
	var request leave.Request
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *LeaveRepository) ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*leave.Request, error) {
	var requests []*leave.Request
	err := r.db.Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID).
		Order("start_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, err
}

func (r *LeaveRepository) Update(req *leave.Request) error {
	req.UpdatedAt = time.Now()
	return r.db.Save(req).Error
}

// UpdateWithBalance saves the request and the adjusted balance row in one
// transaction so an approval can never debit without recording the status,
// or vice versa.
func (r *LeaveRepository) UpdateWithBalance(req *leave.Request, balance *leave.Balance) error {
	if balance == nil {
		return r.Update(req)
	}
	req.UpdatedAt = time.Now()
	balance.UpdatedAt = req.UpdatedAt
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return tx.Save(balance).Error
	})
}

func (r *LeaveRepository) Delete(tenantID, id int64) error {
	return r.db.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&leave.Request{}).Error
}

func (r *LeaveRepository) PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*leave.Request, int64, error) {
	query := r.pendingQuery(tenantID, ownerIDs, q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*leave.Request
	// FIFO for approvals
	err := query.Order("submitted_at ASC, id ASC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&requests).Error
	return requests, total, err
}

func (r *LeaveRepository) SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (leave.LeaveSummary, error) {
	var rows []struct {
		LeaveType string
		Count     int64
		Days      int64
	}
	err := r.pendingQuery(tenantID, ownerIDs, q).
		Select(`leave_type, COUNT(*) AS count, COALESCE(SUM(working_days), 0) AS days`).
		Group("leave_type").
		Scan(&rows).Error
	if err != nil {
		return leave.LeaveSummary{}, err
	}

	summary := leave.LeaveSummary{ByType: make(map[string]int64, len(rows))}
	for _, row := range rows {
		summary.RequestCount += row.Count
		summary.TotalWorkingDays += row.Days
		summary.ByType[row.LeaveType] = row.Days
	}
	return summary, nil
}

func (r *LeaveRepository) pendingQuery(tenantID int64, ownerIDs []int64, q internal.PageQuery) *gorm.DB {
	query := r.db.Model(&leave.Request{}).
		Where("tenant_id = ? AND status = ?", tenantID, workflow.StatusSubmitted)

	if ownerIDs != nil {
		query = query.Where("owner_id IN ?", ownerIDs)
	}
	if q.From != nil {
		query = query.Where("end_date >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("start_date <= ?", *q.To)
	}
	if q.Search != "" {
		query = query.Where("reason LIKE ?", "%"+q.Search+"%")
	}
	return query
}

// BalanceRepository implements leave.BalanceRepository using GORM.
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) leave.BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Get(tenantID, employeeID int64, t leave.Type, year int) (*leave.Balance, error) {
	var balance leave.Balance
	err := r.db.Where("tenant_id = ? AND employee_id = ? AND leave_type = ? AND year = ?",
		tenantID, employeeID, t, year).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrRecordNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *BalanceRepository) Create(b *leave.Balance) error {
	return r.db.Create(b).Error
}

func (r *BalanceRepository) Update(b *leave.Balance) error {
	b.UpdatedAt = time.Now()
	return r.db.Save(b).Error
}

func (r *BalanceRepository) ListByEmployee(tenantID, employeeID int64, year int) ([]*leave.Balance, error) {
	var balances []*leave.Balance
	err := r.db.Where("tenant_id = ? AND employee_id = ? AND year = ?", tenantID, employeeID, year).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}
