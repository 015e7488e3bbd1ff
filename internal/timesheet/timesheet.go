package timesheet

import (
	"time"

	"github.com/workstack/workforce-management/internal/workflow"
)

// Entry is a single day's worked hours moving through the approval
// workflow.
type Entry struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	TenantID          int64           `json:"tenant_id" gorm:"column:tenant_id;not null;index:idx_timesheets_tenant_owner"`
	OwnerID           int64           `json:"owner_id" gorm:"column:owner_id;not null;index:idx_timesheets_tenant_owner"`
	WorkDate          time.Time       `json:"work_date" gorm:"column:work_date;type:date;not null"`
	Hours             float64         `json:"hours" gorm:"not null"`
	Billable          bool            `json:"billable" gorm:"not null;default:false"`
	ProjectRef        *string         `json:"project_ref,omitempty" gorm:"column:project_ref"`
	TaskRef           *string         `json:"task_ref,omitempty" gorm:"column:task_ref"`
	Description       string          `json:"description"`
	Status            workflow.Status `json:"status" gorm:"not null;default:'DRAFT';index"`
	SubmittedAt       *time.Time      `json:"submitted_at,omitempty" gorm:"column:submitted_at"`
	DecidedAt         *time.Time      `json:"decided_at,omitempty" gorm:"column:decided_at"`
	ApproverID        *int64          `json:"approver_id,omitempty" gorm:"column:approver_id"`
	RejectionReason   *string         `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
	RejectionCategory *string         `json:"rejection_category,omitempty" gorm:"column:rejection_category"`
	CreatedAt         time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "timesheet_entries"
}

// TeamSummary aggregates a pending queue page's population (not just the
// page) for manager dashboards.
type TeamSummary struct {
	EntryCount       int64   `json:"entry_count"`
	TotalHours       float64 `json:"total_hours"`
	BillableHours    float64 `json:"billable_hours"`
	NonBillableHours float64 `json:"non_billable_hours"`
}

// PendingPage is the paginated pending-approval response.
type PendingPage struct {
	Entries []*Entry    `json:"entries"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Summary TeamSummary `json:"summary"`
}
