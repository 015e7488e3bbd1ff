package leave

import (
	"time"

	"github.com/workstack/workforce-management/internal/workflow"
)

// Type is the closed set of leave types.
type Type string

const (
	TypeAnnual    Type = "ANNUAL"
	TypeSick      Type = "SICK"
	TypePersonal  Type = "PERSONAL"
	TypeMaternity Type = "MATERNITY"
	TypePaternity Type = "PATERNITY"
	TypeUnpaid    Type = "UNPAID"
)

func (t Type) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypePersonal, TypeMaternity, TypePaternity, TypeUnpaid:
		return true
	}
	return false
}

// AllTypes lists every leave type in stable order for seeding and reports.
func AllTypes() []Type {
	return []Type{TypeAnnual, TypeSick, TypePersonal, TypeMaternity, TypePaternity, TypeUnpaid}
}

// DefaultAllocation is the org policy days-per-type table used to seed a
// year's balances at first access and to overwrite them on reset.
func DefaultAllocation(t Type) int {
	switch t {
	case TypeAnnual:
		return 20
	case TypeSick:
		return 10
	case TypePersonal:
		return 5
	case TypeMaternity:
		return 90
	case TypePaternity:
		return 14
	default:
		return 0
	}
}

// Request is a leave request moving through the approval workflow.
type Request struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	TenantID          int64           `json:"tenant_id" gorm:"column:tenant_id;not null;index:idx_leave_tenant_owner"`
	OwnerID           int64           `json:"owner_id" gorm:"column:owner_id;not null;index:idx_leave_tenant_owner"`
	Type              Type            `json:"type" gorm:"column:leave_type;not null"`
	StartDate         time.Time       `json:"start_date" gorm:"column:start_date;type:date;not null"`
	EndDate           time.Time       `json:"end_date" gorm:"column:end_date;type:date;not null"`
	WorkingDays       int             `json:"working_days" gorm:"column:working_days;not null"`
	Reason            string          `json:"reason"`
	Status            workflow.Status `json:"status" gorm:"not null;default:'DRAFT';index"`
	BalanceDebited    bool            `json:"balance_debited" gorm:"column:balance_debited;not null;default:false"`
	SubmittedAt       *time.Time      `json:"submitted_at,omitempty" gorm:"column:submitted_at"`
	DecidedAt         *time.Time      `json:"decided_at,omitempty" gorm:"column:decided_at"`
	ApproverID        *int64          `json:"approver_id,omitempty" gorm:"column:approver_id"`
	RejectionReason   *string         `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
	RejectionCategory *string         `json:"rejection_category,omitempty" gorm:"column:rejection_category"`
	CreatedAt         time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Request) TableName() string {
	return "leave_requests"
}

// Balance is the per-employee, per-type, per-year remaining-days row. It is
// seeded lazily from the org policy and may drift negative; a negative
// balance is flagged, never fatal, and only an explicit reset corrects it.
type Balance struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	TenantID      int64     `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_balance_key"`
	EmployeeID    int64     `json:"employee_id" gorm:"column:employee_id;not null;uniqueIndex:idx_balance_key"`
	Type          Type      `json:"type" gorm:"column:leave_type;not null;uniqueIndex:idx_balance_key"`
	Year          int       `json:"year" gorm:"not null;uniqueIndex:idx_balance_key"`
	AllocatedDays int       `json:"allocated_days" gorm:"column:allocated_days;not null"`
	RemainingDays int       `json:"remaining_days" gorm:"column:remaining_days;not null"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Balance) TableName() string {
	return "leave_balances"
}

// Overdrawn reports the drifted-negative state the UI flags.
func (b *Balance) Overdrawn() bool {
	return b.RemainingDays < 0
}

// BalanceAdjustment is the per-type before/after pair a reset returns.
type BalanceAdjustment struct {
	Type         Type `json:"type"`
	Year         int  `json:"year"`
	PreviousDays int  `json:"previous_days"`
	NewDays      int  `json:"new_days"`
}

// PendingPage is the paginated pending-approval response.
type PendingPage struct {
	Requests []*Request   `json:"requests"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	Limit    int          `json:"limit"`
	Summary  LeaveSummary `json:"summary"`
}

// LeaveSummary aggregates a pending queue's population by type.
type LeaveSummary struct {
	RequestCount     int64            `json:"request_count"`
	TotalWorkingDays int64            `json:"total_working_days"`
	ByType           map[string]int64 `json:"by_type"`
}
