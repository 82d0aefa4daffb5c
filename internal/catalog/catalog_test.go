package catalog

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/ludoteca/internal/domain"
	customError "github.com/segyhp/ludoteca/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCatalog(t *testing.T) (*Catalog, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return New(WithClock(clock.Now)), clock
}

func catanRequest() domain.RegisterGameRequest {
	return domain.RegisterGameRequest{Name: "Catan", Year: 1995, Category: "Strategy", MinPlayers: 3, MaxPlayers: 4}
}

func anaRequest() domain.RegisterMemberRequest {
	return domain.RegisterMemberRequest{Name: "Ana", Email: "a@x.com", Phone: "123", MembershipNumber: "M1"}
}

func seed(t *testing.T, c *Catalog) (*domain.Game, *domain.Member) {
	t.Helper()
	game, err := c.RegisterGame(catanRequest())
	require.NoError(t, err)
	member, err := c.RegisterMember(anaRequest())
	require.NoError(t, err)
	return game, member
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

func TestRegisterGame(t *testing.T) {
	c, clock := newTestCatalog(t)

	game, err := c.RegisterGame(catanRequest())
	require.NoError(t, err)

	found, err := c.Game(game.ID)
	require.NoError(t, err)
	assert.Equal(t, "Catan", found.Name)
	assert.Equal(t, 1995, found.Year)
	assert.Equal(t, "Strategy", found.Category)
	assert.Equal(t, 3, found.MinPlayers)
	assert.Equal(t, 4, found.MaxPlayers)
	assert.Equal(t, clock.Now(), found.RegisteredAt)
	assert.True(t, found.Available)
}

func TestRegisterGame_Defaults(t *testing.T) {
	c, _ := newTestCatalog(t)

	game, err := c.RegisterGame(domain.RegisterGameRequest{Name: "Uno", Year: 1971, Category: "Cards"})
	require.NoError(t, err)
	assert.Equal(t, 1, game.MinPlayers)
	assert.Equal(t, 10, game.MaxPlayers)
}

func TestRegisterGame_Failures(t *testing.T) {
	tests := []struct {
		name    string
		request domain.RegisterGameRequest
		kind    error
	}{
		{name: "empty name", request: domain.RegisterGameRequest{Name: "", Year: 2000, Category: "Party"}, kind: customError.ErrValidation},
		{name: "year too old", request: domain.RegisterGameRequest{Name: "Old", Year: 1200, Category: "Party"}, kind: customError.ErrValidation},
		{name: "year in future", request: domain.RegisterGameRequest{Name: "Next", Year: 2026, Category: "Party"}, kind: customError.ErrValidation},
		{name: "empty category", request: domain.RegisterGameRequest{Name: "Nameless", Year: 2000, Category: " "}, kind: customError.ErrValidation},
		{name: "max below min", request: domain.RegisterGameRequest{Name: "Odd", Year: 2000, Category: "Party", MinPlayers: 5, MaxPlayers: 2}, kind: customError.ErrValidation},
		{name: "negative min players", request: domain.RegisterGameRequest{Name: "Neg", Year: 2000, Category: "Party", MinPlayers: -1, MaxPlayers: 2}, kind: customError.ErrValidation},
		{name: "duplicate name differing in case", request: domain.RegisterGameRequest{Name: "cATAN", Year: 2000, Category: "Party"}, kind: customError.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCatalog(t)
			_, err := c.RegisterGame(catanRequest())
			require.NoError(t, err)

			game, err := c.RegisterGame(tt.request)

			assertKind(t, err, tt.kind)
			assert.Nil(t, game)
			assert.Len(t, c.Games(), 1)
		})
	}
}

func TestRegisterMember(t *testing.T) {
	c, _ := newTestCatalog(t)

	member, err := c.RegisterMember(anaRequest())
	require.NoError(t, err)
	assert.True(t, member.Active)
	assert.True(t, member.PendingFine.IsZero())

	_, err = c.RegisterMember(domain.RegisterMemberRequest{Name: "Bia", Email: "b@x.com", Phone: "9", MembershipNumber: "m1"})
	assertKind(t, err, customError.ErrDuplicate)

	_, err = c.RegisterMember(domain.RegisterMemberRequest{Name: "Bia", Email: "bx.com", Phone: "9", MembershipNumber: "M2"})
	assertKind(t, err, customError.ErrValidation)

	assert.Len(t, c.Members(), 1)
}

func TestIssueLoan(t *testing.T) {
	c, clock := newTestCatalog(t)
	game, member := seed(t, c)

	loan, err := c.IssueLoan(game.ID, member.ID, domain.DefaultLoanDays)
	require.NoError(t, err)
	assert.Equal(t, game.ID, loan.GameID)
	assert.Equal(t, member.ID, loan.MemberID)
	assert.Equal(t, "Catan", loan.GameName)
	assert.Equal(t, "Ana", loan.MemberName)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), loan.DueAt)
	assert.True(t, loan.Active)

	stored, err := c.Game(game.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)

	_, err = c.IssueLoan(game.ID, member.ID, domain.DefaultLoanDays)
	assertKind(t, err, customError.ErrInvalidState)

	stored, err = c.Game(game.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)
	assert.Len(t, c.Loans(), 1)
}

func TestIssueLoan_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, c *Catalog, game *domain.Game, member *domain.Member)
		gameID   func(game *domain.Game) uuid.UUID
		memberID func(member *domain.Member) uuid.UUID
		loanDays int
		kind     error
		code     string
	}{
		{
			name:     "unknown game",
			gameID:   func(*domain.Game) uuid.UUID { return uuid.New() },
			kind:     customError.ErrNotFound,
			code:     customError.ErrCodeGameNotFound,
			loanDays: 7,
		},
		{
			name:     "unknown member",
			memberID: func(*domain.Member) uuid.UUID { return uuid.New() },
			kind:     customError.ErrNotFound,
			code:     customError.ErrCodeMemberNotFound,
			loanDays: 7,
		},
		{
			name:     "non positive loan days",
			kind:     customError.ErrValidation,
			code:     customError.ErrCodeInvalidInput,
			loanDays: 0,
		},
		{
			name:     "loan days above the maximum",
			kind:     customError.ErrValidation,
			code:     customError.ErrCodeInvalidInput,
			loanDays: domain.MaxLoanDays + 1,
		},
		{
			name:     "loan days far past the maximum",
			kind:     customError.ErrValidation,
			code:     customError.ErrCodeInvalidInput,
			loanDays: 200000,
		},
		{
			name: "inactive member",
			setup: func(t *testing.T, c *Catalog, _ *domain.Game, member *domain.Member) {
				_, err := c.SetMemberActive(member.ID, false)
				require.NoError(t, err)
			},
			kind:     customError.ErrInvalidState,
			code:     customError.ErrCodeMemberInactive,
			loanDays: 7,
		},
		{
			name: "member with pending fine",
			setup: func(t *testing.T, c *Catalog, _ *domain.Game, member *domain.Member) {
				c.membersByID[member.ID].PendingFine = decimal.RequireFromString("0.01")
			},
			kind:     customError.ErrInvalidState,
			code:     customError.ErrCodeMemberHasFine,
			loanDays: 7,
		},
		{
			name: "game availability checked before member state",
			setup: func(t *testing.T, c *Catalog, game *domain.Game, member *domain.Member) {
				c.gamesByID[game.ID].Available = false
				c.membersByID[member.ID].Active = false
				c.membersByID[member.ID].PendingFine = decimal.NewFromInt(5)
			},
			kind:     customError.ErrInvalidState,
			code:     customError.ErrCodeGameUnavailable,
			loanDays: 7,
		},
		{
			name: "active flag checked before fine",
			setup: func(t *testing.T, c *Catalog, _ *domain.Game, member *domain.Member) {
				c.membersByID[member.ID].Active = false
				c.membersByID[member.ID].PendingFine = decimal.NewFromInt(5)
			},
			kind:     customError.ErrInvalidState,
			code:     customError.ErrCodeMemberInactive,
			loanDays: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCatalog(t)
			game, member := seed(t, c)
			if tt.setup != nil {
				tt.setup(t, c, game, member)
			}
			gameID, memberID := game.ID, member.ID
			if tt.gameID != nil {
				gameID = tt.gameID(game)
			}
			if tt.memberID != nil {
				memberID = tt.memberID(member)
			}
			availableBefore := c.gamesByID[game.ID].Available

			loan, err := c.IssueLoan(gameID, memberID, tt.loanDays)

			assertKind(t, err, tt.kind)
			var be *customError.BusinessError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.code, be.Code)
			assert.Nil(t, loan)
			assert.Empty(t, c.Loans())
			assert.Equal(t, availableBefore, c.gamesByID[game.ID].Available)
		})
	}
}

func TestIssueLoan_LongestLoanReturnedAtOnceIsFree(t *testing.T) {
	c, clock := newTestCatalog(t)
	game, member := seed(t, c)

	loan, err := c.IssueLoan(game.ID, member.ID, domain.MaxLoanDays)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().AddDate(0, 0, domain.MaxLoanDays), loan.DueAt)
	assert.True(t, loan.DueAt.After(loan.LoanedAt))

	returned, err := c.ReturnLoan(loan.ID)
	require.NoError(t, err)
	assert.True(t, returned.Fine.IsZero(), "got fine %s", returned.Fine)

	m, err := c.Member(member.ID)
	require.NoError(t, err)
	assert.False(t, m.HasPendingFine())
}

func TestIssueLoan_FinedMemberAlwaysRejected(t *testing.T) {
	c, _ := newTestCatalog(t)
	_, member := seed(t, c)
	c.membersByID[member.ID].PendingFine = decimal.NewFromInt(5)

	for _, name := range []string{"Azul", "Carcassonne", "Dixit"} {
		game, err := c.RegisterGame(domain.RegisterGameRequest{Name: name, Year: 2010, Category: "Family"})
		require.NoError(t, err)

		_, err = c.IssueLoan(game.ID, member.ID, 7)
		assertKind(t, err, customError.ErrInvalidState)
	}
}

func TestReturnLoan_FineTruncation(t *testing.T) {
	tests := []struct {
		name     string
		lateBy   time.Duration
		expected decimal.Decimal
	}{
		{name: "returned early", lateBy: -48 * time.Hour, expected: decimal.Zero},
		{name: "returned on due date", lateBy: 0, expected: decimal.Zero},
		{name: "23h59m late", lateBy: 23*time.Hour + 59*time.Minute, expected: decimal.Zero},
		{name: "24h late", lateBy: 24 * time.Hour, expected: decimal.NewFromInt(5)},
		{name: "48h01m late", lateBy: 48*time.Hour + time.Minute, expected: decimal.NewFromInt(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newTestCatalog(t)
			game, member := seed(t, c)
			loan, err := c.IssueLoan(game.ID, member.ID, 7)
			require.NoError(t, err)

			clock.Advance(7*24*time.Hour + tt.lateBy)
			returned, err := c.ReturnLoan(loan.ID)
			require.NoError(t, err)

			assert.True(t, returned.Fine.Equal(tt.expected), "expected %s, got %s", tt.expected, returned.Fine)
			assert.False(t, returned.Active)
			require.NotNil(t, returned.ReturnedAt)
			assert.Equal(t, clock.Now(), *returned.ReturnedAt)

			storedMember, err := c.Member(member.ID)
			require.NoError(t, err)
			assert.True(t, storedMember.PendingFine.Equal(tt.expected))

			storedGame, err := c.Game(game.ID)
			require.NoError(t, err)
			assert.True(t, storedGame.Available)
		})
	}
}

func TestReturnLoan_FinesAccumulate(t *testing.T) {
	c, clock := newTestCatalog(t)
	_, member := seed(t, c)
	azul, err := c.RegisterGame(domain.RegisterGameRequest{Name: "Azul", Year: 2017, Category: "Abstract"})
	require.NoError(t, err)
	catan := c.Games()[0]

	first, err := c.IssueLoan(catan.ID, member.ID, 7)
	require.NoError(t, err)
	second, err := c.IssueLoan(azul.ID, member.ID, 3)
	require.NoError(t, err)

	clock.Advance(9 * 24 * time.Hour)
	_, err = c.ReturnLoan(first.ID)
	require.NoError(t, err)
	_, err = c.ReturnLoan(second.ID)
	require.NoError(t, err)

	storedMember, err := c.Member(member.ID)
	require.NoError(t, err)
	// 2 days late on the first loan, 6 on the second.
	assert.True(t, storedMember.PendingFine.Equal(decimal.NewFromInt(40)), "got %s", storedMember.PendingFine)
	assert.Len(t, c.MembersWithFines(), 1)
}

func TestReturnLoan_AlreadyReturned(t *testing.T) {
	c, clock := newTestCatalog(t)
	game, member := seed(t, c)
	loan, err := c.IssueLoan(game.ID, member.ID, 7)
	require.NoError(t, err)

	clock.Advance(8 * 24 * time.Hour)
	first, err := c.ReturnLoan(loan.ID)
	require.NoError(t, err)

	clock.Advance(10 * 24 * time.Hour)
	_, err = c.ReturnLoan(loan.ID)
	assertKind(t, err, customError.ErrInvalidState)

	stored, err := c.Loan(loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.Fine.Equal(first.Fine))
	assert.Equal(t, *first.ReturnedAt, *stored.ReturnedAt)

	storedMember, err := c.Member(member.ID)
	require.NoError(t, err)
	assert.True(t, storedMember.PendingFine.Equal(decimal.NewFromInt(5)), "must not be charged twice")
}

func TestReturnLoan_Unknown(t *testing.T) {
	c, _ := newTestCatalog(t)
	_, err := c.ReturnLoan(uuid.New())
	assertKind(t, err, customError.ErrNotFound)
}

func TestPreviewFine(t *testing.T) {
	c, clock := newTestCatalog(t)
	game, member := seed(t, c)
	loan, err := c.IssueLoan(game.ID, member.ID, 7)
	require.NoError(t, err)

	fine, err := c.PreviewFine(loan.ID)
	require.NoError(t, err)
	assert.True(t, fine.IsZero())

	clock.Advance(10*24*time.Hour + time.Hour)
	fine, err = c.PreviewFine(loan.ID)
	require.NoError(t, err)
	assert.True(t, fine.Equal(decimal.NewFromInt(15)))
	assert.Len(t, c.OverdueLoans(), 1)

	stored, err := c.Loan(loan.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active, "preview must not return the loan")
	assert.True(t, stored.Fine.IsZero())

	_, err = c.ReturnLoan(loan.ID)
	require.NoError(t, err)
	clock.Advance(30 * 24 * time.Hour)
	fine, err = c.PreviewFine(loan.ID)
	require.NoError(t, err)
	assert.True(t, fine.Equal(decimal.NewFromInt(15)), "returned loans report their final fine")

	_, err = c.PreviewFine(uuid.New())
	assertKind(t, err, customError.ErrNotFound)
}

func TestPayFine(t *testing.T) {
	c, clock := newTestCatalog(t)
	game, member := seed(t, c)
	loan, err := c.IssueLoan(game.ID, member.ID, 7)
	require.NoError(t, err)
	clock.Advance(9 * 24 * time.Hour)
	_, err = c.ReturnLoan(loan.ID)
	require.NoError(t, err)

	_, err = c.PayFine(member.ID, decimal.NewFromInt(11), domain.PaymentMethodCash)
	assertKind(t, err, customError.ErrValidation)
	stored, _ := c.Member(member.ID)
	assert.True(t, stored.PendingFine.Equal(decimal.NewFromInt(10)))

	receipt, err := c.PayFine(member.ID, decimal.NewFromInt(10), domain.PaymentMethodPIX)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodPIX, receipt.Method)
	assert.Equal(t, clock.Now(), receipt.PaidAt)
	stored, _ = c.Member(member.ID)
	assert.True(t, stored.PendingFine.IsZero())

	_, err = c.PayFine(uuid.New(), decimal.NewFromInt(1), domain.PaymentMethodPIX)
	assertKind(t, err, customError.ErrNotFound)

	// Cleared members can borrow again.
	_, err = c.IssueLoan(game.ID, member.ID, 7)
	assert.NoError(t, err)
}

func TestSetMemberActive(t *testing.T) {
	c, _ := newTestCatalog(t)
	_, member := seed(t, c)

	updated, err := c.SetMemberActive(member.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Empty(t, c.ActiveMembers())

	_, err = c.SetMemberActive(member.ID, true)
	require.NoError(t, err)
	assert.Len(t, c.ActiveMembers(), 1)

	_, err = c.SetMemberActive(uuid.New(), true)
	assertKind(t, err, customError.ErrNotFound)
}

func TestAccessorsReturnCopies(t *testing.T) {
	c, _ := newTestCatalog(t)
	game, _ := seed(t, c)

	game.Available = false
	games := c.Games()
	games[0].Name = "Changed"

	stored, err := c.Game(game.ID)
	require.NoError(t, err)
	assert.True(t, stored.Available)
	assert.Equal(t, "Catan", stored.Name)
}

func TestLoanAccessorsReturnCopies(t *testing.T) {
	c, clock := newTestCatalog(t)
	game, member := seed(t, c)

	issued, err := c.IssueLoan(game.ID, member.ID, 7)
	require.NoError(t, err)
	clock.Advance(9 * 24 * time.Hour)
	returned, err := c.ReturnLoan(issued.ID)
	require.NoError(t, err)
	returnedAt := *returned.ReturnedAt

	byID, err := c.Loan(issued.ID)
	require.NoError(t, err)

	tampered := []*domain.Loan{returned, byID, &c.Loans()[0], &c.FinishedLoans()[0], &c.ExportState().Loans[0]}
	for _, loan := range tampered {
		require.NotNil(t, loan.ReturnedAt)
		*loan.ReturnedAt = time.Time{}
		loan.Fine = decimal.Zero
		loan.Active = true
	}

	stored, err := c.Loan(issued.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReturnedAt)
	assert.True(t, stored.ReturnedAt.Equal(returnedAt), "stored return time changed to %s", stored.ReturnedAt)
	assert.False(t, stored.Active)
	assert.True(t, stored.Fine.Equal(decimal.NewFromInt(10)))
}

func TestEndToEndScenario(t *testing.T) {
	c, clock := newTestCatalog(t)

	game, err := c.RegisterGame(domain.RegisterGameRequest{Name: "Catan", Year: 1995, Category: "Strategy", MinPlayers: 3, MaxPlayers: 4})
	require.NoError(t, err)
	member, err := c.RegisterMember(domain.RegisterMemberRequest{Name: "Ana", Email: "a@x.com", Phone: "123", MembershipNumber: "M1"})
	require.NoError(t, err)

	loan, err := c.IssueLoan(game.ID, member.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().AddDate(0, 0, 7), loan.DueAt)
	g, _ := c.Game(game.ID)
	assert.False(t, g.Available)

	returned, err := c.ReturnLoan(loan.ID)
	require.NoError(t, err)
	assert.True(t, returned.Fine.IsZero())

	g, _ = c.Game(game.ID)
	assert.True(t, g.Available)
	m, _ := c.Member(member.ID)
	assert.True(t, m.PendingFine.IsZero())
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	c, _ := newTestCatalog(t)
	game, member := seed(t, c)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if loan, err := c.IssueLoan(game.ID, member.ID, 7); err == nil {
				_, _ = c.ReturnLoan(loan.ID)
			}
		}()
		go func() {
			defer wg.Done()
			active := 0
			for _, l := range c.Loans() {
				if l.Active {
					active++
				}
			}
			assert.LessOrEqual(t, active, 1)
		}()
	}
	wg.Wait()

	g, err := c.Game(game.ID)
	require.NoError(t, err)
	assert.True(t, g.Available)
	assert.Empty(t, c.ActiveLoans())
}
