package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoan(t *testing.T, loanedAt time.Time) *Loan {
	t.Helper()
	game := Game{ID: uuid.New(), Name: "Catan", Available: true}
	member := Member{ID: uuid.New(), Name: "Ana", Active: true}
	return NewLoan(game, member, loanedAt, DefaultLoanDays)
}

func TestNewLoan(t *testing.T) {
	loanedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	loan := newTestLoan(t, loanedAt)

	assert.NotEqual(t, uuid.Nil, loan.ID)
	assert.Equal(t, "Catan", loan.GameName)
	assert.Equal(t, "Ana", loan.MemberName)
	assert.Equal(t, loanedAt.AddDate(0, 0, 7), loan.DueAt)
	assert.True(t, loan.Active)
	assert.Nil(t, loan.ReturnedAt)
	assert.True(t, loan.Fine.IsZero())
}

func TestLoan_FineAtTruncatesPartialDays(t *testing.T) {
	loanedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	loan := newTestLoan(t, loanedAt)

	tests := []struct {
		name      string
		reference time.Time
		expected  decimal.Decimal
	}{
		{name: "before due", reference: loan.DueAt.Add(-time.Minute), expected: decimal.Zero},
		{name: "23h59m late", reference: loan.DueAt.Add(23*time.Hour + 59*time.Minute), expected: decimal.Zero},
		{name: "24h late", reference: loan.DueAt.Add(24 * time.Hour), expected: FineRatePerDay},
		{name: "48h01m late", reference: loan.DueAt.Add(48*time.Hour + time.Minute), expected: FineRatePerDay.Mul(decimal.NewFromInt(2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loan.FineAt(tt.reference)
			assert.True(t, got.Equal(tt.expected), "expected %s, got %s", tt.expected, got)
		})
	}
	assert.True(t, loan.Fine.IsZero(), "preview must not touch the stored fine")
}

func TestLoan_Close(t *testing.T) {
	loanedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	loan := newTestLoan(t, loanedAt)
	returnedAt := loan.DueAt.Add(72*time.Hour + 5*time.Hour)

	loan.Close(returnedAt)

	assert.False(t, loan.Active)
	require.NotNil(t, loan.ReturnedAt)
	assert.Equal(t, returnedAt, *loan.ReturnedAt)
	assert.True(t, loan.Fine.Equal(decimal.NewFromInt(15)))
	assert.True(t, loan.FineAt(returnedAt.Add(240*time.Hour)).Equal(decimal.NewFromInt(15)),
		"returned loans keep their final fine")
}

func TestLoan_IsOverdue(t *testing.T) {
	loanedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	loan := newTestLoan(t, loanedAt)

	assert.False(t, loan.IsOverdue(loan.DueAt))
	assert.True(t, loan.IsOverdue(loan.DueAt.Add(time.Second)))

	loan.Close(loan.DueAt.Add(time.Hour))
	assert.False(t, loan.IsOverdue(loan.DueAt.Add(100*time.Hour)))
}
