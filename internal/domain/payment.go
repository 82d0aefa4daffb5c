package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods offered by the front desk. Any other label is accepted.
const (
	PaymentMethodPIX  = "PIX"
	PaymentMethodCash = "cash"
)

// FinePayment is the receipt of a fine payment. It is not persisted; the
// member's balance is the only lasting effect.
type FinePayment struct {
	MemberID  uuid.UUID       `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Remaining decimal.Decimal `json:"remaining"`
	PaidAt    time.Time       `json:"paid_at"`
}

type PayFineRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}
