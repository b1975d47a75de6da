package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyReport compares portions served with portions possible for a calendar month
type MonthlyReport struct {
	ID                    ReportID
	Month                 int
	Year                  int
	TotalPortionsServed   int64
	TotalPortionsPossible int64
	DifferencePercentage  decimal.Decimal
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ValidatePeriod checks a (month, year) pair
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return NewValidationError(fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	if year < 1 {
		return NewValidationError(fmt.Sprintf("year must be positive, got %d", year))
	}
	return nil
}

// MonthBounds returns [first day of month, first day of next month) in UTC
func MonthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DifferencePercentage is (possible - served) / possible * 100, or zero when nothing was possible
func DifferencePercentage(possible, served int64) decimal.Decimal {
	if possible == 0 {
		return decimal.Zero
	}
	p := decimal.NewFromInt(possible)
	return p.Sub(decimal.NewFromInt(served)).Div(p).Mul(decimal.NewFromInt(100))
}
