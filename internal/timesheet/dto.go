package timesheet

import (
	"time"

	"github.com/workstack/workforce-management/internal"
)

// CreateEntryDTO is the request payload for creating or editing an entry.
type CreateEntryDTO struct {
	WorkDate    time.Time `json:"work_date"`
	Hours       float64   `json:"hours"`
	Billable    bool      `json:"billable"`
	ProjectRef  *string   `json:"project_ref,omitempty"`
	TaskRef     *string   `json:"task_ref,omitempty"`
	Description string    `json:"description"`
}

func (dto CreateEntryDTO) Validate() error {
	if dto.WorkDate.IsZero() {
		return internal.NewValidationFieldError("work_date", "work date is required", internal.ErrCodeInvalidDate)
	}
	if dto.WorkDate.After(endOfToday()) {
		return internal.NewValidationFieldError("work_date", "work date cannot be in the future", internal.ErrCodeInvalidDate)
	}
	if dto.Hours <= 0 || dto.Hours > 24 {
		return internal.NewValidationFieldError("hours", "hours must be greater than 0 and at most 24", internal.ErrCodeInvalidHours)
	}
	return nil
}

func endOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

// RejectDTO carries the mandatory rejection metadata.
type RejectDTO struct {
	Reason   string `json:"reason"`
	Category string `json:"category,omitempty"`
}

func (dto RejectDTO) Validate() error {
	if dto.Reason == "" {
		return internal.NewValidationError("a reason is required when rejecting", internal.ErrCodeReasonRequired)
	}
	return nil
}

// BulkApproveDTO lists the entries to approve in one call.
type BulkApproveDTO struct {
	EntryIDs []int64 `json:"entry_ids"`
}

func (dto BulkApproveDTO) Validate() error {
	if len(dto.EntryIDs) == 0 {
		return internal.NewValidationFieldError("entry_ids", "at least one entry id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
