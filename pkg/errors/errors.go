package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error kinds. Every BusinessError wraps exactly one of these so callers can
// classify failures with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrPersistence  = errors.New("persistence failed")
)

// Kind names, as returned by KindOf.
const (
	KindValidation  = "validation"
	KindDuplicate   = "duplicate"
	KindNotFound    = "not_found"
	KindState       = "state"
	KindPersistence = "persistence"
	KindUnknown     = "unknown"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodePaymentExceedsBalance = "PAYMENT_EXCEEDS_BALANCE"
	ErrCodeDuplicateGameName     = "DUPLICATE_GAME_NAME"
	ErrCodeDuplicateMembership   = "DUPLICATE_MEMBERSHIP_NUMBER"
	ErrCodeGameNotFound          = "GAME_NOT_FOUND"
	ErrCodeMemberNotFound        = "MEMBER_NOT_FOUND"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeGameUnavailable       = "GAME_UNAVAILABLE"
	ErrCodeMemberInactive        = "MEMBER_INACTIVE"
	ErrCodeMemberHasFine         = "MEMBER_HAS_PENDING_FINE"
	ErrCodeLoanAlreadyReturned   = "LOAN_ALREADY_RETURNED"
	ErrCodeStorageError          = "STORAGE_ERROR"
	ErrCodeDiscardedData         = "DISCARDED_DATA"
)

// KindOf reports which error kind err belongs to.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidState):
		return KindState
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindUnknown
	}
}

// Message returns the human readable part of a BusinessError, or err.Error()
// for anything else.
func Message(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

func WrapInvalidInput(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidInput, message, ErrValidation)
}

func WrapInvalidPaymentAmount(amount decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Payment amount must be positive, got %s", amount.StringFixed(2)),
		ErrValidation,
	)
}

func WrapPaymentExceedsBalance(amount, balance decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentExceedsBalance,
		fmt.Sprintf("Payment amount %s exceeds pending fine %s", amount.StringFixed(2), balance.StringFixed(2)),
		ErrValidation,
	)
}

func WrapDuplicateGameName(name string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateGameName,
		fmt.Sprintf("A game named '%s' is already registered", name),
		ErrDuplicate,
	)
}

func WrapDuplicateMembership(number string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateMembership,
		fmt.Sprintf("A member with membership number '%s' is already registered", number),
		ErrDuplicate,
	)
}

func WrapGameNotFound(id uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeGameNotFound,
		fmt.Sprintf("Game with ID %s not found", id),
		ErrNotFound,
	)
}

func WrapMemberNotFound(id uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", id),
		ErrNotFound,
	)
}

func WrapLoanNotFound(id uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", id),
		ErrNotFound,
	)
}

func WrapGameUnavailable(name string) *BusinessError {
	return NewBusinessError(
		ErrCodeGameUnavailable,
		fmt.Sprintf("Game '%s' is not available for loan", name),
		ErrInvalidState,
	)
}

func WrapMemberInactive(name string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberInactive,
		fmt.Sprintf("Member '%s' is not active", name),
		ErrInvalidState,
	)
}

func WrapMemberHasFine(name string, balance decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberHasFine,
		fmt.Sprintf("Member '%s' has a pending fine of %s", name, balance.StringFixed(2)),
		ErrInvalidState,
	)
}

func WrapLoanAlreadyReturned(id uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyReturned,
		fmt.Sprintf("Loan with ID %s was already returned", id),
		ErrInvalidState,
	)
}

// WrapDiscardedData refuses a write that would overwrite categories the
// store could not read.
func WrapDiscardedData(categories []string) *BusinessError {
	return NewBusinessError(
		ErrCodeDiscardedData,
		fmt.Sprintf("Stored %s could not be read; repair or remove the data file before making changes",
			strings.Join(categories, ", ")),
		ErrPersistence,
	)
}

// WrapStorageError keeps the adapter error reachable through errors.Is and
// errors.As while classifying it as a persistence failure.
func WrapStorageError(op string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStorageError,
		fmt.Sprintf("%s failed: %v", op, err),
		fmt.Errorf("%w: %w", ErrPersistence, err),
	)
}
