package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workstack/workforce-management/internal/workflow"
)

// Category is the closed set of expense categories.
type Category string

const (
	CategoryTravel        Category = "TRAVEL"
	CategoryMeals         Category = "MEALS"
	CategoryAccommodation Category = "ACCOMMODATION"
	CategorySupplies      Category = "SUPPLIES"
	CategoryTraining      Category = "TRAINING"
	CategoryOther         Category = "OTHER"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTravel, CategoryMeals, CategoryAccommodation, CategorySupplies, CategoryTraining, CategoryOther:
		return true
	}
	return false
}

// Claim is an expense claim moving through the approval workflow.
type Claim struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	TenantID          int64           `json:"tenant_id" gorm:"column:tenant_id;not null;index:idx_expenses_tenant_owner"`
	OwnerID           int64           `json:"owner_id" gorm:"column:owner_id;not null;index:idx_expenses_tenant_owner"`
	ClaimNumber       string          `json:"claim_number" gorm:"column:claim_number;not null;uniqueIndex"`
	Title             string          `json:"title" gorm:"not null"`
	Category          Category        `json:"category" gorm:"not null"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency          string          `json:"currency" gorm:"not null;default:'USD'"`
	ExpenseDate       time.Time       `json:"expense_date" gorm:"column:expense_date;type:date;not null"`
	Description       string          `json:"description"`
	ReceiptURLs       []string        `json:"receipt_urls" gorm:"column:receipt_urls;serializer:json"`
	Status            workflow.Status `json:"status" gorm:"not null;default:'DRAFT';index"`
	SubmittedAt       *time.Time      `json:"submitted_at,omitempty" gorm:"column:submitted_at"`
	DecidedAt         *time.Time      `json:"decided_at,omitempty" gorm:"column:decided_at"`
	ApproverID        *int64          `json:"approver_id,omitempty" gorm:"column:approver_id"`
	RejectionReason   *string         `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
	RejectionCategory *string         `json:"rejection_category,omitempty" gorm:"column:rejection_category"`
	CreatedAt         time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Claim) TableName() string {
	return "expense_claims"
}

// NewClaimNumber generates a unique human-readable claim reference.
func NewClaimNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("EXP-%d-%s", at.Year(), suffix)
}

// NormalizeTitle is the case/whitespace normalization the duplicate guard
// matches on.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// ClaimSummary aggregates a pending queue's population for manager
// dashboards.
type ClaimSummary struct {
	ClaimCount  int64                      `json:"claim_count"`
	TotalAmount decimal.Decimal            `json:"total_amount"`
	ByCategory  map[string]decimal.Decimal `json:"by_category"`
}

// PendingPage is the paginated pending-approval response.
type PendingPage struct {
	Claims  []*Claim     `json:"claims"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
	Summary ClaimSummary `json:"summary"`
}
