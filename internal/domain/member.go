package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/ludoteca/pkg/errors"
)

// Member represents a registered library member
type Member struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Email            string          `json:"email" db:"email"`
	Phone            string          `json:"phone" db:"phone"`
	MembershipNumber string          `json:"membership_number" db:"membership_number"`
	RegisteredAt     time.Time       `json:"registered_at" db:"registered_at"`
	Active           bool            `json:"active" db:"active"`
	PendingFine      decimal.Decimal `json:"pending_fine" db:"pending_fine"`
}

// HasPendingFine reports whether the member is blocked from new loans.
func (m Member) HasPendingFine() bool {
	return m.PendingFine.IsPositive()
}

// PayFine reduces the pending balance. Overpayment is rejected, so the
// balance never goes negative.
func (m *Member) PayFine(amount decimal.Decimal, method string) (*FinePayment, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(amount)
	}
	if amount.GreaterThan(m.PendingFine) {
		return nil, customError.WrapPaymentExceedsBalance(amount, m.PendingFine)
	}

	m.PendingFine = m.PendingFine.Sub(amount)

	return &FinePayment{
		MemberID:  m.ID,
		Amount:    amount,
		Method:    method,
		Remaining: m.PendingFine,
	}, nil
}

func (m Member) String() string {
	status := "active"
	if !m.Active {
		status = "inactive"
	}
	fine := ""
	if m.HasPendingFine() {
		fine = " - fine: " + m.PendingFine.StringFixed(2)
	}
	return fmt.Sprintf("%s (%s) - %s - %s%s", m.Name, m.MembershipNumber, m.Email, status, fine)
}

// RegisterMemberRequest carries the fields accepted by member registration.
type RegisterMemberRequest struct {
	Name             string `json:"name" validate:"notblank"`
	Email            string `json:"email" validate:"notblank,contains=@"`
	Phone            string `json:"phone" validate:"notblank"`
	MembershipNumber string `json:"membership_number" validate:"notblank"`
}
