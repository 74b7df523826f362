package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount half-up to 2 fraction digits. Every amount
// crossing a calculation boundary goes through this.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// InstallmentDueDate calculates the due date of installment k (1..N).
// Monthly installments are due on the same day-of-month k months after the
// start date; weekly installments every 7 days.
func InstallmentDueDate(startDate time.Time, frequency string, k int) time.Time {
	if frequency == "weekly" {
		return startDate.AddDate(0, 0, 7*k)
	}
	return startDate.AddDate(0, k, 0)
}

// MonthPeriod returns the first and last day of a calendar month.
func MonthPeriod(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// ParseYearMonth parses a "2006-01" period key.
func ParseYearMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year-month %q: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// DateOnly strips the time-of-day component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WithinPeriod reports whether a date falls inside [start, end] inclusive,
// comparing dates only.
func WithinPeriod(date, start, end time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(start)) && !d.After(DateOnly(end))
}

// IsDateOverdue checks if a due date is in the past relative to now.
func IsDateOverdue(dueDate time.Time, now time.Time) bool {
	return DateOnly(dueDate).Before(DateOnly(now))
}

// SumAmounts totals a list of decimal amounts.
func SumAmounts(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// DecimalFromFloat converts float64 to decimal.Decimal.
func DecimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecimalFromString converts string to decimal.Decimal.
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
