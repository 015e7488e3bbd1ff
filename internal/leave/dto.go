package leave

import (
	"time"

	"github.com/workstack/workforce-management/internal"
)

// CreateRequestDTO is the request payload for creating or editing a leave
// request. Working days are computed server-side, never trusted from the
// client.
type CreateRequestDTO struct {
	Type      Type      `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

func (dto CreateRequestDTO) Validate() error {
	if !dto.Type.Valid() {
		return internal.NewValidationFieldError("type", "unknown leave type", internal.ErrCodeValidationFailed)
	}
	if dto.StartDate.IsZero() {
		return internal.NewValidationFieldError("start_date", "start date is required", internal.ErrCodeInvalidDate)
	}
	if dto.EndDate.IsZero() {
		return internal.NewValidationFieldError("end_date", "end date is required", internal.ErrCodeInvalidDate)
	}
	if dto.StartDate.After(dto.EndDate) {
		return internal.NewValidationFieldError("start_date", "start date must not be after end date", internal.ErrCodeInvalidDateRange)
	}
	if dto.Reason == "" {
		return internal.NewValidationFieldError("reason", "a reason is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// RejectRequestDTO carries the mandatory rejection metadata.
type RejectRequestDTO struct {
	Reason   string `json:"reason"`
	Category string `json:"category,omitempty"`
}

func (dto RejectRequestDTO) Validate() error {
	if dto.Reason == "" {
		return internal.NewValidationError("a reason is required when rejecting", internal.ErrCodeReasonRequired)
	}
	return nil
}

// ResetBalanceDTO identifies the employee and year a balance reset targets.
type ResetBalanceDTO struct {
	EmployeeID int64 `json:"employee_id"`
	Year       int   `json:"year"`
}

func (dto ResetBalanceDTO) Validate() error {
	if dto.EmployeeID <= 0 {
		return internal.NewValidationFieldError("employee_id", "employee id is required", internal.ErrCodeValidationFailed)
	}
	if dto.Year < 2000 || dto.Year > 2100 {
		return internal.NewValidationFieldError("year", "year is out of range", internal.ErrCodeValidationFailed)
	}
	return nil
}
