package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// CalculateDueDate returns the instant a loan started at loanDate falls due.
// Calendar arithmetic keeps large day counts from overflowing a Duration.
func CalculateDueDate(loanDate time.Time, loanDays int) time.Time {
	return loanDate.AddDate(0, 0, loanDays)
}

// DaysLate counts whole days elapsed between dueDate and reference.
// Partial days are truncated, not rounded: 23h59m late is zero days.
func DaysLate(dueDate, reference time.Time) int {
	if !reference.After(dueDate) {
		return 0
	}
	return int(reference.Sub(dueDate) / day)
}

// CalculateFine charges ratePerDay for every whole day late.
func CalculateFine(dueDate, reference time.Time, ratePerDay decimal.Decimal) decimal.Decimal {
	days := DaysLate(dueDate, reference)
	if days == 0 {
		return decimal.Zero
	}
	return ratePerDay.Mul(decimal.NewFromInt(int64(days)))
}

// IsDateOverdue checks if dueDate has passed as of now
func IsDateOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// FormatMoney renders an amount with two decimal places behind symbol.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	if symbol == "" {
		return amount.StringFixed(2)
	}
	return symbol + " " + amount.StringFixed(2)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
