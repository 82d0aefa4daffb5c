package catalog

import (
	"github.com/google/uuid"

	"github.com/segyhp/ludoteca/internal/domain"
	customError "github.com/segyhp/ludoteca/pkg/errors"
)

// Read accessors hand out copies; the catalog's records are only changed
// through its operations.

func (c *Catalog) Game(id uuid.UUID) (*domain.Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	game, ok := c.gamesByID[id]
	if !ok {
		return nil, customError.WrapGameNotFound(id)
	}
	out := *game
	return &out, nil
}

func (c *Catalog) Member(id uuid.UUID) (*domain.Member, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	member, ok := c.membersByID[id]
	if !ok {
		return nil, customError.WrapMemberNotFound(id)
	}
	out := *member
	return &out, nil
}

func (c *Catalog) Loan(id uuid.UUID) (*domain.Loan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	loan, ok := c.loansByID[id]
	if !ok {
		return nil, customError.WrapLoanNotFound(id)
	}
	out := cloneLoan(loan)
	return &out, nil
}

// Games lists all games in registration order.
func (c *Catalog) Games() []domain.Game {
	return c.filterGames(func(domain.Game) bool { return true })
}

func (c *Catalog) AvailableGames() []domain.Game {
	return c.filterGames(func(g domain.Game) bool { return g.Available })
}

// Members lists all members in registration order.
func (c *Catalog) Members() []domain.Member {
	return c.filterMembers(func(domain.Member) bool { return true })
}

func (c *Catalog) ActiveMembers() []domain.Member {
	return c.filterMembers(func(m domain.Member) bool { return m.Active })
}

func (c *Catalog) MembersWithFines() []domain.Member {
	return c.filterMembers(domain.Member.HasPendingFine)
}

// Loans lists all loans in issue order.
func (c *Catalog) Loans() []domain.Loan {
	return c.filterLoans(func(domain.Loan) bool { return true })
}

func (c *Catalog) ActiveLoans() []domain.Loan {
	return c.filterLoans(func(l domain.Loan) bool { return l.Active })
}

func (c *Catalog) FinishedLoans() []domain.Loan {
	return c.filterLoans(func(l domain.Loan) bool { return !l.Active })
}

func (c *Catalog) OverdueLoans() []domain.Loan {
	now := c.now()
	return c.filterLoans(func(l domain.Loan) bool { return l.IsOverdue(now) })
}

func (c *Catalog) filterGames(keep func(domain.Game) bool) []domain.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Game, 0, len(c.games))
	for _, g := range c.games {
		if keep(*g) {
			out = append(out, *g)
		}
	}
	return out
}

func (c *Catalog) filterMembers(keep func(domain.Member) bool) []domain.Member {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Member, 0, len(c.members))
	for _, m := range c.members {
		if keep(*m) {
			out = append(out, *m)
		}
	}
	return out
}

func (c *Catalog) filterLoans(keep func(domain.Loan) bool) []domain.Loan {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Loan, 0, len(c.loans))
	for _, l := range c.loans {
		if keep(*l) {
			out = append(out, cloneLoan(l))
		}
	}
	return out
}

// cloneLoan copies l including the return timestamp it points to.
func cloneLoan(l *domain.Loan) domain.Loan {
	out := *l
	if l.ReturnedAt != nil {
		returnedAt := *l.ReturnedAt
		out.ReturnedAt = &returnedAt
	}
	return out
}
