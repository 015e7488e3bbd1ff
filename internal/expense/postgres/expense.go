package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/expense"
	"github.com/workstack/workforce-management/internal/workflow"
)

// ExpenseRepository implements expense.Repository using GORM.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(c *expense.Claim) error {
	return r.db.Create(c).Error
}

func (r *ExpenseRepository) GetByID(tenantID, id int64) (*expense.Claim, error) {
	var claim expense.Claim
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&claim).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *ExpenseRepository) ListByOwner(tenantID, ownerID int64, limit, offset int) ([]*expense.Claim, error) {
	var claims []*expense.Claim
	err := r.db.Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID).
		Order("expense_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&claims).Error
	return claims, err
}

func (r *ExpenseRepository) Update(c *expense.Claim) error {
	c.UpdatedAt = time.Now()
	return r.db.Save(c).Error
}

func (r *ExpenseRepository) Delete(tenantID, id int64) error {
	return r.db.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&expense.Claim{}).Error
}

func (r *ExpenseRepository) PendingByOwners(tenantID int64, ownerIDs []int64, q internal.PageQuery) ([]*expense.Claim, int64, error) {
	query := r.pendingQuery(tenantID, ownerIDs, q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []*expense.Claim
	// FIFO for approvals
	err := query.Order("submitted_at ASC, id ASC").
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&claims).Error
	return claims, total, err
}

func (r *ExpenseRepository) SummarizePending(tenantID int64, ownerIDs []int64, q internal.PageQuery) (expense.ClaimSummary, error) {
	var rows []struct {
		Category string
		Count    int64
		Total    decimal.Decimal
	}
	err := r.pendingQuery(tenantID, ownerIDs, q).
		Select(`category, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total`).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return expense.ClaimSummary{}, err
	}

	summary := expense.ClaimSummary{
		TotalAmount: decimal.Zero,
		ByCategory:  make(map[string]decimal.Decimal, len(rows)),
	}
	for _, row := range rows {
		summary.ClaimCount += row.Count
		summary.TotalAmount = summary.TotalAmount.Add(row.Total)
		summary.ByCategory[row.Category] = row.Total
	}
	return summary, nil
}

// CountSimilar backs the duplicate guard: claims by the same owner with
// the same normalized title and amount created inside the window.
func (r *ExpenseRepository) CountSimilar(tenantID, ownerID int64, normalizedTitle string, amount decimal.Decimal, createdAfter time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&expense.Claim{}).
		Where("tenant_id = ? AND owner_id = ?", tenantID, ownerID).
		Where("LOWER(TRIM(title)) = ?", normalizedTitle).
		Where("amount = ?", amount).
		Where("created_at > ?", createdAfter).
		Count(&count).Error
	return count, err
}

func (r *ExpenseRepository) pendingQuery(tenantID int64, ownerIDs []int64, q internal.PageQuery) *gorm.DB {
	query := r.db.Model(&expense.Claim{}).
		Where("tenant_id = ? AND status = ?", tenantID, workflow.StatusSubmitted)

	if ownerIDs != nil {
		query = query.Where("owner_id IN ?", ownerIDs)
	}
	if q.From != nil {
		query = query.Where("expense_date >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("expense_date <= ?", *q.To)
	}
	if q.Search != "" {
		query = query.Where("title LIKE ?", "%"+q.Search+"%")
	}
	return query
}
