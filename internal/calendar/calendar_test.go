package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountWorkingDays(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := date(2026, time.March, 2)
	friday := date(2026, time.March, 6)
	saturday := date(2026, time.March, 7)
	sunday := date(2026, time.March, 8)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		holidays []time.Time
		want     int
	}{
		{name: "full work week", start: monday, end: friday, want: 5},
		{name: "week with midweek holiday", start: monday, end: friday, holidays: []time.Time{date(2026, time.March, 4)}, want: 4},
		{name: "single workday", start: monday, end: monday, want: 1},
		{name: "single holiday", start: monday, end: monday, holidays: []time.Time{monday}, want: 0},
		{name: "weekend only", start: saturday, end: sunday, want: 0},
		{name: "inverted range", start: friday, end: monday, want: 0},
		{name: "spanning two weeks", start: monday, end: date(2026, time.March, 13), want: 10},
		{name: "holiday outside range ignored", start: monday, end: friday, holidays: []time.Time{date(2026, time.March, 9)}, want: 5},
		{name: "holiday on weekend does not double count", start: monday, end: sunday, holidays: []time.Time{saturday}, want: 5},
		{name: "year boundary", start: date(2026, time.December, 31), end: date(2027, time.January, 4), holidays: []time.Time{date(2027, time.January, 1)}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountWorkingDays(tt.start, tt.end, NewHolidaySet(tt.holidays))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountWorkingDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2026, time.March, 2, 23, 30, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 6, 0, 15, 0, 0, time.UTC)
	holiday := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)

	got := CountWorkingDays(start, end, NewHolidaySet([]time.Time{holiday}))
	assert.Equal(t, 4, got)
}

func TestClassifyRange(t *testing.T) {
	monday := date(2026, time.March, 2)
	sunday := date(2026, time.March, 8)
	holidays := NewHolidaySet([]time.Time{date(2026, time.March, 4)})

	days := ClassifyRange(monday, sunday, holidays)
	require.Len(t, days, 7)

	assert.Equal(t, DayWorkday, days[0].Kind)
	assert.Equal(t, DayWorkday, days[1].Kind)
	assert.Equal(t, DayHoliday, days[2].Kind)
	assert.Equal(t, DayWorkday, days[3].Kind)
	assert.Equal(t, DayWorkday, days[4].Kind)
	assert.Equal(t, DayWeekend, days[5].Kind)
	assert.Equal(t, DayWeekend, days[6].Kind)
}

func TestClassifyRangeInverted(t *testing.T) {
	days := ClassifyRange(date(2026, time.March, 6), date(2026, time.March, 2), HolidaySet{})
	assert.Empty(t, days)
}
