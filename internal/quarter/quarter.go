// Package quarter provides the fiscal-quarter date arithmetic used by the
// analytics services. Quarters are fixed to the calendar year: Q1=Jan-Mar,
// Q2=Apr-Jun, Q3=Jul-Sep, Q4=Oct-Dec. All functions are pure and operate on
// the configured as-of date.
package quarter

import (
	"fmt"
	"time"
)

// MonthKey formats a date as its "YYYY-MM" month key
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func quarterOf(asOf time.Time) (year, q int) {
	return asOf.Year(), (int(asOf.Month()) + 2) / 3
}

func previousQuarterOf(asOf time.Time) (year, q int) {
	year, q = quarterOf(asOf)
	q--
	if q < 1 {
		q = 4
		year--
	}
	return year, q
}

func months(year, q int) [3]string {
	start := (q-1)*3 + 1
	var out [3]string
	for i := 0; i < 3; i++ {
		out[i] = fmt.Sprintf("%04d-%02d", year, start+i)
	}
	return out
}

func dateRange(year, q int) (start, end time.Time) {
	startMonth := time.Month((q-1)*3 + 1)
	start = time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the month after the quarter is the quarter's last day,
	// which keeps February correct in leap years.
	end = time.Date(year, startMonth+3, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// Months returns the three "YYYY-MM" month keys of the quarter containing asOf
func Months(asOf time.Time) [3]string {
	return months(quarterOf(asOf))
}

// PreviousMonths returns the month keys of the quarter before the one
// containing asOf, rolling back to Q4 of the prior year from Q1
func PreviousMonths(asOf time.Time) [3]string {
	return months(previousQuarterOf(asOf))
}

// DateRange returns the first and last calendar day of the quarter
// containing asOf, both at UTC midnight
func DateRange(asOf time.Time) (start, end time.Time) {
	y, q := quarterOf(asOf)
	return dateRange(y, q)
}

// PreviousDateRange returns the boundaries of the quarter immediately before
// the one containing asOf
func PreviousDateRange(asOf time.Time) (start, end time.Time) {
	y, q := previousQuarterOf(asOf)
	return dateRange(y, q)
}

// Label returns the "Qn YYYY" label of the quarter containing asOf
func Label(asOf time.Time) string {
	y, q := quarterOf(asOf)
	return fmt.Sprintf("Q%d %d", q, y)
}
