package postgres

import (
	"time"

	"github.com/workstack/workforce-management/internal/calendar"
	"gorm.io/gorm"
)

// HolidayRepository implements calendar.HolidayRepository using GORM.
type HolidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) DatesInRange(tenantID int64, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&calendar.Holiday{}).
		Where("tenant_id = ? AND date >= ? AND date <= ?", tenantID, from, to).
		Order("date ASC").
		Pluck("date", &dates).Error
	return dates, err
}

func (r *HolidayRepository) Create(holiday *calendar.Holiday) error {
	return r.db.Create(holiday).Error
}

func (r *HolidayRepository) ListByYear(tenantID int64, year int) ([]*calendar.Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	var holidays []*calendar.Holiday
	err := r.db.Where("tenant_id = ? AND date >= ? AND date <= ?", tenantID, from, to).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}
