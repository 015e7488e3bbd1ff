package calendar

import (
	"log/slog"
	"time"
)

// DayKind classifies a single calendar day for leave computation and for
// per-day display in range previews.
type DayKind string

const (
	DayWorkday DayKind = "workday"
	DayWeekend DayKind = "weekend"
	DayHoliday DayKind = "holiday"
)

// Holiday is a tenant-configured non-working day.
type Holiday struct {
	ID       int64     `json:"id" gorm:"primaryKey"`
	TenantID int64     `json:"tenant_id" gorm:"column:tenant_id;not null;index:idx_holidays_tenant_date"`
	Name     string    `json:"name" gorm:"not null"`
	Date     time.Time `json:"date" gorm:"column:date;type:date;not null;index:idx_holidays_tenant_date"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// HolidayRepository provides the holiday dates the calculator excludes.
type HolidayRepository interface {
	DatesInRange(tenantID int64, from, to time.Time) ([]time.Time, error)
}

// DayClassification pairs a date with its kind for UI range previews.
type DayClassification struct {
	Date time.Time `json:"date"`
	Kind DayKind   `json:"kind"`
}

// HolidaySet is a date-keyed lookup. Keys are produced by DateKey so that
// time-of-day and timezone offsets on stored timestamps cannot cause misses.
type HolidaySet map[string]struct{}

func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[DateKey(d)] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(day time.Time) bool {
	_, ok := s[DateKey(day)]
	return ok
}

func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Classify returns the kind of a single day. Weekends win over holidays so a
// holiday landing on a Saturday still reads as a weekend.
func Classify(day time.Time, holidays HolidaySet) DayKind {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return DayWeekend
	}
	if holidays.Contains(day) {
		return DayHoliday
	}
	return DayWorkday
}

// CountWorkingDays counts the days in [start, end] that are neither weekend
// nor holiday. An inverted range counts as zero; callers treat zero as an
// invalid leave request, never as a silent success.
func CountWorkingDays(start, end time.Time, holidays HolidaySet) int {
	if start.After(end) {
		return 0
	}
	count := 0
	for day := truncate(start); !day.After(truncate(end)); day = day.AddDate(0, 0, 1) {
		if Classify(day, holidays) == DayWorkday {
			count++
		}
	}
	return count
}

// ClassifyRange returns the per-day classification of [start, end] in order.
// An inverted range yields an empty slice.
func ClassifyRange(start, end time.Time, holidays HolidaySet) []DayClassification {
	if start.After(end) {
		return []DayClassification{}
	}
	var days []DayClassification
	for day := truncate(start); !day.After(truncate(end)); day = day.AddDate(0, 0, 1) {
		days = append(days, DayClassification{Date: day, Kind: Classify(day, holidays)})
	}
	return days
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Calculator resolves a tenant's holidays and applies the pure counting
// functions above.
type Calculator struct {
	holidays HolidayRepository
	logger   *slog.Logger
}

func NewCalculator(holidays HolidayRepository, logger *slog.Logger) *Calculator {
	return &Calculator{holidays: holidays, logger: logger}
}

func (c *Calculator) WorkingDays(tenantID int64, start, end time.Time) (int, error) {
	if start.After(end) {
		return 0, nil
	}
	set, err := c.holidaySet(tenantID, start, end)
	if err != nil {
		return 0, err
	}
	return CountWorkingDays(start, end, set), nil
}

func (c *Calculator) ClassifyRange(tenantID int64, start, end time.Time) ([]DayClassification, error) {
	set, err := c.holidaySet(tenantID, start, end)
	if err != nil {
		return nil, err
	}
	return ClassifyRange(start, end, set), nil
}

func (c *Calculator) holidaySet(tenantID int64, start, end time.Time) (HolidaySet, error) {
	dates, err := c.holidays.DatesInRange(tenantID, start, end)
	if err != nil {
		c.logger.Error("failed to load holidays", "error", err, "tenant_id", tenantID)
		return nil, err
	}
	return NewHolidaySet(dates), nil
}
