package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/ludoteca/pkg/utils"
)

// Loan length limits, in days.
const (
	DefaultLoanDays = 7
	MaxLoanDays     = 365
)

// FineRatePerDay is charged for every whole day a loan is returned late.
var FineRatePerDay = decimal.NewFromInt(5)

// Loan represents one lending of a game to a member.
//
// GameName and MemberName are captured when the loan is issued and never
// refreshed, so the loan keeps describing what was lent to whom even if the
// game or member changes later.
type Loan struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	GameID     uuid.UUID       `json:"game_id" db:"game_id"`
	MemberID   uuid.UUID       `json:"member_id" db:"member_id"`
	GameName   string          `json:"game_name" db:"game_name"`
	MemberName string          `json:"member_name" db:"member_name"`
	LoanedAt   time.Time       `json:"loaned_at" db:"loaned_at"`
	DueAt      time.Time       `json:"due_at" db:"due_at"`
	ReturnedAt *time.Time      `json:"returned_at" db:"returned_at"`
	Active     bool            `json:"active" db:"active"`
	Fine       decimal.Decimal `json:"fine" db:"fine"`
}

// NewLoan opens a loan of game to member starting at loanedAt.
func NewLoan(game Game, member Member, loanedAt time.Time, loanDays int) *Loan {
	return &Loan{
		ID:         uuid.New(),
		GameID:     game.ID,
		MemberID:   member.ID,
		GameName:   game.Name,
		MemberName: member.Name,
		LoanedAt:   loanedAt,
		DueAt:      utils.CalculateDueDate(loanedAt, loanDays),
		Active:     true,
		Fine:       decimal.Zero,
	}
}

// IsOverdue reports whether the loan is still out past its due date.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.Active && utils.IsDateOverdue(l.DueAt, now)
}

// FineAt is the fine owed if the loan were returned at reference. Returned
// loans always report the fine fixed at return time.
func (l Loan) FineAt(reference time.Time) decimal.Decimal {
	if !l.Active {
		return l.Fine
	}
	return utils.CalculateFine(l.DueAt, reference, FineRatePerDay)
}

// Close marks the loan returned at returnedAt and fixes its fine.
func (l *Loan) Close(returnedAt time.Time) {
	l.Fine = utils.CalculateFine(l.DueAt, returnedAt, FineRatePerDay)
	l.ReturnedAt = &returnedAt
	l.Active = false
}

func (l Loan) String() string {
	status := "ongoing"
	if !l.Active {
		status = "returned"
	}
	fine := ""
	if l.Fine.IsPositive() {
		fine = " - fine: " + l.Fine.StringFixed(2)
	}
	return fmt.Sprintf("%s -> %s - %s until %s - %s%s",
		l.GameName, l.MemberName, l.LoanedAt.Format("02/01/2006"), l.DueAt.Format("02/01/2006"), status, fine)
}

type IssueLoanRequest struct {
	GameID   uuid.UUID `json:"game_id" validate:"required"`
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	LoanDays int       `json:"loan_days"`
}

// FinePreview is what the front desk sees before committing a return.
type FinePreview struct {
	LoanID   uuid.UUID       `json:"loan_id"`
	DaysLate int             `json:"days_late"`
	Fine     decimal.Decimal `json:"fine"`
	Overdue  bool            `json:"overdue"`
}
