package calendar

import (
	"log/slog"
	"time"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
)

// HolidayStore is the write/read side of the holiday table, beyond the
// date lookups the Calculator needs.
type HolidayStore interface {
	Create(h *Holiday) error
	ListByYear(tenantID int64, year int) ([]*Holiday, error)
}

type CreateHolidayDTO struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

func (dto CreateHolidayDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "a name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Date.IsZero() {
		return internal.NewValidationFieldError("date", "a date is required", internal.ErrCodeInvalidDate)
	}
	return nil
}

// HolidayService administers the tenant holiday calendar. Writes are
// HR-only; the configured days feed straight into working-day counting.
type HolidayService struct {
	store  HolidayStore
	logger *slog.Logger
}

func NewHolidayService(store HolidayStore, logger *slog.Logger) *HolidayService {
	return &HolidayService{store: store, logger: logger}
}

func (s *HolidayService) AddHoliday(actor auth.Identity, dto CreateHolidayDTO) (*Holiday, error) {
	if actor.Role != auth.RoleHR {
		return nil, internal.NewForbiddenError("Only HR may configure holidays", internal.ErrCodeNotInChain)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	holiday := &Holiday{
		TenantID: actor.TenantID,
		Name:     dto.Name,
		Date:     truncate(dto.Date),
	}
	if err := s.store.Create(holiday); err != nil {
		s.logger.Error("failed to create holiday", "error", err, "tenant_id", actor.TenantID)
		return nil, internal.NewInternalError("failed to create holiday", err)
	}

	s.logger.Info("holiday configured",
		"tenant_id", actor.TenantID,
		"name", holiday.Name,
		"date", holiday.Date.Format("2006-01-02"))
	return holiday, nil
}

func (s *HolidayService) ListHolidays(actor auth.Identity, year int) ([]*Holiday, error) {
	holidays, err := s.store.ListByYear(actor.TenantID, year)
	if err != nil {
		s.logger.Error("failed to list holidays", "error", err, "tenant_id", actor.TenantID)
		return nil, internal.NewInternalError("failed to list holidays", err)
	}
	if holidays == nil {
		holidays = []*Holiday{}
	}
	return holidays, nil
}
