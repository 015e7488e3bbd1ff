package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/workstack/workforce-management/internal"
)

// Rules bundles the tenant-tunable validation thresholds applied to claims.
type Rules struct {
	ReceiptRequiredThreshold decimal.Decimal
	DescriptionMinLength     int
	AllowFutureExpenseDate   bool
	DuplicateWindow          time.Duration
}

func NewRules(cfg internal.WorkflowConfig) Rules {
	return Rules{
		ReceiptRequiredThreshold: decimal.NewFromFloat(cfg.ReceiptRequiredThreshold),
		DescriptionMinLength:     cfg.DescriptionMinLength,
		AllowFutureExpenseDate:   cfg.AllowFutureExpenseDate,
		DuplicateWindow:          cfg.DuplicateWindow,
	}
}

// CreateClaimDTO is the request payload for creating or editing a claim.
type CreateClaimDTO struct {
	Title       string          `json:"title"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ExpenseDate time.Time       `json:"expense_date"`
	Description string          `json:"description"`
	ReceiptURLs []string        `json:"receipt_urls"`
}

func (dto CreateClaimDTO) Validate(rules Rules) error {
	if dto.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Category.Valid() {
		return internal.NewValidationFieldError("category", "unknown expense category", internal.ErrCodeValidationFailed)
	}
	if dto.Amount.LessThanOrEqual(decimal.Zero) {
		return internal.NewValidationFieldError("amount", "amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if dto.ExpenseDate.IsZero() {
		return internal.NewValidationFieldError("expense_date", "expense date is required", internal.ErrCodeInvalidDate)
	}
	if !rules.AllowFutureExpenseDate && dto.ExpenseDate.After(time.Now()) {
		return internal.NewValidationFieldError("expense_date", "expense date cannot be in the future", internal.ErrCodeInvalidDate)
	}
	if len(dto.Description) < rules.DescriptionMinLength {
		return internal.NewValidationFieldError("description",
			fmt.Sprintf("description must be at least %d characters", rules.DescriptionMinLength),
			internal.ErrCodeDescriptionShort)
	}
	if dto.Amount.GreaterThan(rules.ReceiptRequiredThreshold) && len(dto.ReceiptURLs) == 0 {
		return internal.NewValidationFieldError("receipt_urls", "Receipts are required", internal.ErrCodeReceiptsRequired)
	}
	return nil
}

// RejectClaimDTO carries the mandatory rejection metadata.
type RejectClaimDTO struct {
	Reason   string `json:"reason"`
	Category string `json:"category,omitempty"`
}

func (dto RejectClaimDTO) Validate() error {
	if dto.Reason == "" {
		return internal.NewValidationError("a reason is required when rejecting", internal.ErrCodeReasonRequired)
	}
	return nil
}
