// Package catalog holds the in-memory library state and enforces every rule
// that spans games, members and loans.
package catalog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/internal/validation"
	customError "github.com/segyhp/ludoteca/pkg/errors"
	"github.com/segyhp/ludoteca/pkg/logger"
	"github.com/segyhp/ludoteca/pkg/utils"
)

// Catalog owns the games, members and loans of one library.
//
// Collections keep registration order; the id maps index into them. Loans
// refer to games and members by id only. Every mutating operation holds the
// write lock for its whole duration and performs all checks before its first
// mutation, so a failed call leaves the catalog untouched.
type Catalog struct {
	mu sync.RWMutex

	games   []*domain.Game
	members []*domain.Member
	loans   []*domain.Loan

	gamesByID   map[uuid.UUID]*domain.Game
	membersByID map[uuid.UUID]*domain.Member
	loansByID   map[uuid.UUID]*domain.Loan

	validate *validator.Validate
	now      func() time.Time
	log      logger.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock replaces time.Now as the catalog's notion of the current instant.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Catalog) {
		c.log = log
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		gamesByID:   make(map[uuid.UUID]*domain.Game),
		membersByID: make(map[uuid.UUID]*domain.Member),
		loansByID:   make(map[uuid.UUID]*domain.Loan),
		now:         time.Now,
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.validate = validation.New(c.now)
	return c
}

// Now returns the catalog clock's current instant.
func (c *Catalog) Now() time.Time {
	return c.now()
}

// RegisterGame validates req and adds a new, available game.
func (c *Catalog) RegisterGame(req domain.RegisterGameRequest) (*domain.Game, error) {
	req.ApplyDefaults()
	if err := validation.Translate(c.validate.Struct(req)); err != nil {
		c.log.BusinessError("game registration rejected", err, "name", req.Name)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, g := range c.games {
		if strings.EqualFold(g.Name, req.Name) {
			err := customError.WrapDuplicateGameName(req.Name)
			c.log.BusinessError("game registration rejected", err, "name", req.Name)
			return nil, err
		}
	}

	game := &domain.Game{
		ID:           uuid.New(),
		Name:         req.Name,
		Year:         req.Year,
		Category:     req.Category,
		MinPlayers:   req.MinPlayers,
		MaxPlayers:   req.MaxPlayers,
		RegisteredAt: c.now(),
		Available:    true,
	}
	c.games = append(c.games, game)
	c.gamesByID[game.ID] = game

	c.log.Info("game registered", "game_id", game.ID, "name", game.Name)
	out := *game
	return &out, nil
}

// RegisterMember validates req and adds a new, active member with no fine.
func (c *Catalog) RegisterMember(req domain.RegisterMemberRequest) (*domain.Member, error) {
	if err := validation.Translate(c.validate.Struct(req)); err != nil {
		c.log.BusinessError("member registration rejected", err, "membership_number", req.MembershipNumber)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.members {
		if strings.EqualFold(m.MembershipNumber, req.MembershipNumber) {
			err := customError.WrapDuplicateMembership(req.MembershipNumber)
			c.log.BusinessError("member registration rejected", err, "membership_number", req.MembershipNumber)
			return nil, err
		}
	}

	member := &domain.Member{
		ID:               uuid.New(),
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		MembershipNumber: req.MembershipNumber,
		RegisteredAt:     c.now(),
		Active:           true,
		PendingFine:      decimal.Zero,
	}
	c.members = append(c.members, member)
	c.membersByID[member.ID] = member

	c.log.Info("member registered", "member_id", member.ID, "name", member.Name, "membership_number", member.MembershipNumber)
	out := *member
	return &out, nil
}

// SetMemberActive enables or disables borrowing for a member.
func (c *Catalog) SetMemberActive(memberID uuid.UUID, active bool) (*domain.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member, ok := c.membersByID[memberID]
	if !ok {
		return nil, customError.WrapMemberNotFound(memberID)
	}
	member.Active = active

	c.log.Info("member status changed", "member_id", member.ID, "active", active)
	out := *member
	return &out, nil
}

// IssueLoan lends a game to a member for loanDays days.
//
// State checks run in a fixed order: game availability, member active flag,
// member pending fine.
func (c *Catalog) IssueLoan(gameID, memberID uuid.UUID, loanDays int) (*domain.Loan, error) {
	if loanDays <= 0 || loanDays > domain.MaxLoanDays {
		return nil, customError.WrapInvalidInput(fmt.Sprintf("loan_days must be between 1 and %d", domain.MaxLoanDays))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	game, ok := c.gamesByID[gameID]
	if !ok {
		return nil, customError.WrapGameNotFound(gameID)
	}
	member, ok := c.membersByID[memberID]
	if !ok {
		return nil, customError.WrapMemberNotFound(memberID)
	}

	var err error
	switch {
	case !game.Available:
		err = customError.WrapGameUnavailable(game.Name)
	case !member.Active:
		err = customError.WrapMemberInactive(member.Name)
	case member.HasPendingFine():
		err = customError.WrapMemberHasFine(member.Name, member.PendingFine)
	}
	if err != nil {
		c.log.BusinessError("loan rejected", err, "game_id", gameID, "member_id", memberID)
		return nil, err
	}

	loan := domain.NewLoan(*game, *member, c.now(), loanDays)
	c.loans = append(c.loans, loan)
	c.loansByID[loan.ID] = loan
	game.Available = false

	c.log.Info("loan issued", "loan_id", loan.ID, "game", loan.GameName, "member", loan.MemberName, "due_at", loan.DueAt)
	out := cloneLoan(loan)
	return &out, nil
}

// ReturnLoan closes an active loan, frees its game and charges any fine to
// the member. It returns the finalized loan.
func (c *Catalog) ReturnLoan(loanID uuid.UUID) (*domain.Loan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	loan, ok := c.loansByID[loanID]
	if !ok {
		return nil, customError.WrapLoanNotFound(loanID)
	}
	if !loan.Active {
		err := customError.WrapLoanAlreadyReturned(loanID)
		c.log.BusinessError("return rejected", err, "loan_id", loanID)
		return nil, err
	}

	loan.Close(c.now())

	if game, ok := c.gamesByID[loan.GameID]; ok {
		game.Available = true
	}
	if member, ok := c.membersByID[loan.MemberID]; ok {
		member.PendingFine = member.PendingFine.Add(loan.Fine)
	}

	c.log.Info("loan returned", "loan_id", loan.ID, "game", loan.GameName, "member", loan.MemberName, "fine", loan.Fine.StringFixed(2))
	out := cloneLoan(loan)
	return &out, nil
}

// PreviewFine returns the fine a loan would carry if returned now. Returned
// loans report their final fine. Nothing is mutated.
func (c *Catalog) PreviewFine(loanID uuid.UUID) (decimal.Decimal, error) {
	preview, err := c.DescribeFine(loanID)
	if err != nil {
		return decimal.Zero, err
	}
	return preview.Fine, nil
}

// DescribeFine is PreviewFine with the days late and overdue flag, all read
// under one lock. Days late for a returned loan count up to its return.
func (c *Catalog) DescribeFine(loanID uuid.UUID) (*domain.FinePreview, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	loan, ok := c.loansByID[loanID]
	if !ok {
		return nil, customError.WrapLoanNotFound(loanID)
	}

	now := c.now()
	reference := now
	if loan.ReturnedAt != nil {
		reference = *loan.ReturnedAt
	}

	return &domain.FinePreview{
		LoanID:   loan.ID,
		DaysLate: utils.DaysLate(loan.DueAt, reference),
		Fine:     loan.FineAt(now),
		Overdue:  loan.IsOverdue(now),
	}, nil
}

// PayFine takes a payment against a member's pending fine. method is only
// echoed on the receipt and in the log.
func (c *Catalog) PayFine(memberID uuid.UUID, amount decimal.Decimal, method string) (*domain.FinePayment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member, ok := c.membersByID[memberID]
	if !ok {
		return nil, customError.WrapMemberNotFound(memberID)
	}

	receipt, err := member.PayFine(amount, method)
	if err != nil {
		c.log.BusinessError("fine payment rejected", err, "member_id", memberID, "amount", amount.StringFixed(2))
		return nil, err
	}
	receipt.PaidAt = c.now()

	c.log.Info("fine paid",
		"member_id", member.ID,
		"amount", amount.StringFixed(2),
		"method", method,
		"remaining", member.PendingFine.StringFixed(2),
	)
	return receipt, nil
}
