package postgres

import (
	"time"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/timesheet"
	"github.com/workstack/workforce-management/internal/workflow"
	"gorm.io/gorm"
)

// TimesheetRepository implements timesheet.Repository using GORM.
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.Repository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) Create(e *timesheet.Entry) error {
	return r.db.Create(e).Error
}

func (r *TimesheetRepository) GetByID(tenantID, id int64) (*timesheet.Entry, error) {
	var entry timesheet.Entry
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimesheetRepository) ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*timesheet.Entry, error) {
	var entries []*timesheet.Entry
	err := r.db.Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID).
		Order("work_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *TimesheetRepository) Update(e *timesheet.Entry) error {
	e.UpdatedAt = time.Now()
	return r.db.Save(e).Error
}

func (r *TimesheetRepository) Delete(tenantID, id int64) error {
	return r.db.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&timesheet.Entry{}).Error
}

func (r *TimesheetRepository) PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*timesheet.Entry, int64, error) {
	query := r.pendingQuery(tenantID, ownerIDs, q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*timesheet.Entry
	// FIFO for approvals
	err := query.Order("submitted_at ASC, id ASC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&entries).Error
	return entries, total, err
}

func (r *TimesheetRepository) SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (timesheet.TeamSummary, error) {
	var row struct {
		EntryCount       int64
		TotalHours       float64
		BillableHours    float64
		NonBillableHours float64
	}
	err := r.pendingQuery(tenantID, ownerIDs, q).
		Select(`COUNT(*) AS entry_count,
			COALESCE(SUM(hours), 0) AS total_hours,
			COALESCE(SUM(CASE WHEN billable THEN hours ELSE 0 END), 0) AS billable_hours,
			COALESCE(SUM(CASE WHEN billable THEN 0 ELSE hours END), 0) AS non_billable_hours`).
		Scan(&row).Error
	if err != nil {
		return timesheet.TeamSummary{}, err
	}
	return timesheet.TeamSummary{
		EntryCount:       row.EntryCount,
		TotalHours:       row.TotalHours,
		BillableHours:    row.BillableHours,
		NonBillableHours: row.NonBillableHours,
	}, nil
}

func (r *TimesheetRepository) pendingQuery(tenantID int64, ownerIDs []int64, q internal.PageQuery) *gorm.DB {
	query := r.db.Model(&timesheet.Entry{}).
		Where("tenant_id = ? AND status = ?", tenantID, workflow.StatusSubmitted)

	if ownerIDs != nil {
		query = query.Where("owner_id IN ?", ownerIDs)
	}
	if q.From != nil {
		query = query.Where("work_date >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("work_date <= ?", *q.To)
	}
	if q.Search != "" {
		query = query.Where("description LIKE ?", "%"+q.Search+"%")
	}
	return query
}
