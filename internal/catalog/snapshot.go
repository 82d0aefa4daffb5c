package catalog

import (
	"github.com/google/uuid"

	"github.com/segyhp/ludoteca/internal/domain"
)

// ExportState copies the full catalog state. LastUpdated is stamped with the
// catalog clock.
func (c *Catalog) ExportState() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := domain.Snapshot{
		Games:       make([]domain.Game, 0, len(c.games)),
		Members:     make([]domain.Member, 0, len(c.members)),
		Loans:       make([]domain.Loan, 0, len(c.loans)),
		LastUpdated: c.now(),
	}
	for _, g := range c.games {
		snap.Games = append(snap.Games, *g)
	}
	for _, m := range c.members {
		snap.Members = append(snap.Members, *m)
	}
	for _, l := range c.loans {
		snap.Loans = append(snap.Loans, cloneLoan(l))
	}
	return snap
}

// ImportState replaces all three collections with the snapshot's contents.
// There is no merge: whatever the catalog held before is discarded.
func (c *Catalog) ImportState(snap domain.Snapshot) {
	games := make([]*domain.Game, 0, len(snap.Games))
	gamesByID := make(map[uuid.UUID]*domain.Game, len(snap.Games))
	for i := range snap.Games {
		g := snap.Games[i]
		games = append(games, &g)
		gamesByID[g.ID] = &g
	}

	members := make([]*domain.Member, 0, len(snap.Members))
	membersByID := make(map[uuid.UUID]*domain.Member, len(snap.Members))
	for i := range snap.Members {
		m := snap.Members[i]
		members = append(members, &m)
		membersByID[m.ID] = &m
	}

	loans := make([]*domain.Loan, 0, len(snap.Loans))
	loansByID := make(map[uuid.UUID]*domain.Loan, len(snap.Loans))
	for i := range snap.Loans {
		l := cloneLoan(&snap.Loans[i])
		loans = append(loans, &l)
		loansByID[l.ID] = &l
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.games, c.gamesByID = games, gamesByID
	c.members, c.membersByID = members, membersByID
	c.loans, c.loansByID = loans, loansByID

	c.log.Info("catalog state imported", "games", len(games), "members", len(members), "loans", len(loans))
}
