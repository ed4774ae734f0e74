package quarter_test

import (
	"testing"
	"time"

	"github.com/pipemetric/insight-api/internal/quarter"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonths(t *testing.T) {
	tests := []struct {
		name string
		asOf time.Time
		want [3]string
	}{
		{"Q1 from February", date(2025, time.February, 10), [3]string{"2025-01", "2025-02", "2025-03"}},
		{"Q1 from first day", date(2025, time.January, 1), [3]string{"2025-01", "2025-02", "2025-03"}},
		{"Q2 from June", date(2025, time.June, 30), [3]string{"2025-04", "2025-05", "2025-06"}},
		{"Q3 from July", date(2024, time.July, 1), [3]string{"2024-07", "2024-08", "2024-09"}},
		{"Q4 from December", date(2024, time.December, 31), [3]string{"2024-10", "2024-11", "2024-12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quarter.Months(tt.asOf))
		})
	}
}

func TestPreviousMonths(t *testing.T) {
	tests := []struct {
		name string
		asOf time.Time
		want [3]string
	}{
		{"Q1 rolls back to prior-year Q4", date(2025, time.February, 10), [3]string{"2024-10", "2024-11", "2024-12"}},
		{"Q2 rolls back to Q1", date(2025, time.May, 15), [3]string{"2025-01", "2025-02", "2025-03"}},
		{"Q4 rolls back to Q3", date(2024, time.November, 2), [3]string{"2024-07", "2024-08", "2024-09"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quarter.PreviousMonths(tt.asOf))
		})
	}
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name      string
		asOf      time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"Q1 2025", date(2025, time.February, 10), date(2025, time.January, 1), date(2025, time.March, 31)},
		{"Q2 ends June 30", date(2025, time.April, 1), date(2025, time.April, 1), date(2025, time.June, 30)},
		{"Q4 ends December 31", date(2024, time.October, 9), date(2024, time.October, 1), date(2024, time.December, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := quarter.DateRange(tt.asOf)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestPreviousDateRange(t *testing.T) {
	// Q1 as-of rolls the range back across the year boundary
	start, end := quarter.PreviousDateRange(date(2025, time.February, 10))
	assert.Equal(t, date(2024, time.October, 1), start)
	assert.Equal(t, date(2024, time.December, 31), end)

	// Previous quarter of Q2 2024 is Q1 2024; leap year keeps 91 days
	start, end = quarter.PreviousDateRange(date(2024, time.May, 20))
	assert.Equal(t, date(2024, time.January, 1), start)
	assert.Equal(t, date(2024, time.March, 31), end)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Q1 2025", quarter.Label(date(2025, time.February, 10)))
	assert.Equal(t, "Q4 2024", quarter.Label(date(2024, time.December, 1)))
	assert.Equal(t, "Q3 2023", quarter.Label(date(2023, time.September, 30)))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-09", quarter.MonthKey(date(2024, time.September, 3)))
}
