package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/ludoteca/pkg/errors"
)

func TestMember_PayFine(t *testing.T) {
	tests := []struct {
		name          string
		balance       decimal.Decimal
		amount        decimal.Decimal
		expectedError bool
		errorCode     string
		remaining     decimal.Decimal
	}{
		{
			name:      "Success - exact balance",
			balance:   decimal.NewFromInt(10),
			amount:    decimal.NewFromInt(10),
			remaining: decimal.Zero,
		},
		{
			name:      "Success - partial payment",
			balance:   decimal.NewFromInt(10),
			amount:    decimal.RequireFromString("2.50"),
			remaining: decimal.RequireFromString("7.50"),
		},
		{
			name:          "Failure - one unit over balance",
			balance:       decimal.NewFromInt(10),
			amount:        decimal.NewFromInt(11),
			expectedError: true,
			errorCode:     customError.ErrCodePaymentExceedsBalance,
			remaining:     decimal.NewFromInt(10),
		},
		{
			name:          "Failure - zero amount",
			balance:       decimal.NewFromInt(10),
			amount:        decimal.Zero,
			expectedError: true,
			errorCode:     customError.ErrCodeInvalidPaymentAmount,
			remaining:     decimal.NewFromInt(10),
		},
		{
			name:          "Failure - negative amount",
			balance:       decimal.NewFromInt(10),
			amount:        decimal.NewFromInt(-5),
			expectedError: true,
			errorCode:     customError.ErrCodeInvalidPaymentAmount,
			remaining:     decimal.NewFromInt(10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member := &Member{ID: uuid.New(), Name: "Ana", Active: true, PendingFine: tt.balance}

			receipt, err := member.PayFine(tt.amount, PaymentMethodPIX)

			if tt.expectedError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, customError.ErrValidation))
				var be *customError.BusinessError
				require.True(t, errors.As(err, &be))
				assert.Equal(t, tt.errorCode, be.Code)
				assert.Nil(t, receipt)
			} else {
				require.NoError(t, err)
				assert.Equal(t, PaymentMethodPIX, receipt.Method)
				assert.True(t, receipt.Remaining.Equal(tt.remaining))
			}
			assert.True(t, member.PendingFine.Equal(tt.remaining),
				"expected balance %s, got %s", tt.remaining, member.PendingFine)
		})
	}
}

func TestMember_HasPendingFine(t *testing.T) {
	assert.False(t, Member{}.HasPendingFine())
	assert.True(t, Member{PendingFine: decimal.RequireFromString("0.01")}.HasPendingFine())
}

func TestRegisterGameRequest_ApplyDefaults(t *testing.T) {
	req := RegisterGameRequest{Name: "Azul", Year: 2017, Category: "Abstract"}
	req.ApplyDefaults()
	assert.Equal(t, DefaultMinPlayers, req.MinPlayers)
	assert.Equal(t, DefaultMaxPlayers, req.MaxPlayers)

	req = RegisterGameRequest{MinPlayers: 2, MaxPlayers: 4}
	req.ApplyDefaults()
	assert.Equal(t, 2, req.MinPlayers)
	assert.Equal(t, 4, req.MaxPlayers)
}
