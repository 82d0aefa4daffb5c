package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/pkg/utils"
)

const timestampLayout = "02/01/2006 15:04:05"

// Source is the read-only view of the catalog a report is built from.
type Source interface {
	Games() []domain.Game
	Members() []domain.Member
	Loans() []domain.Loan
}

type snapshotSource struct {
	snapshot domain.Snapshot
}

// FromSnapshot serves a report from one exported catalog state, so every
// figure describes the same instant.
func FromSnapshot(snapshot domain.Snapshot) Source {
	return snapshotSource{snapshot: snapshot}
}

func (s snapshotSource) Games() []domain.Game     { return s.snapshot.Games }
func (s snapshotSource) Members() []domain.Member { return s.snapshot.Members }
func (s snapshotSource) Loans() []domain.Loan     { return s.snapshot.Loans }

// Stats are the report figures, in the order they are rendered.
type Stats struct {
	GeneratedAt time.Time `json:"generated_at"`

	GamesTotal     int `json:"games_total"`
	GamesAvailable int `json:"games_available"`
	GamesOnLoan    int `json:"games_on_loan"`

	MembersTotal    int `json:"members_total"`
	MembersActive   int `json:"members_active"`
	MembersWithFine int `json:"members_with_fine"`

	LoansActive   int `json:"loans_active"`
	LoansFinished int `json:"loans_finished"`
	LoansOverdue  int `json:"loans_overdue"`

	PendingFines decimal.Decimal `json:"pending_fines"`
}

// Build counts everything in source as of now.
func Build(source Source, now time.Time) Stats {
	stats := Stats{GeneratedAt: now, PendingFines: decimal.Zero}

	for _, game := range source.Games() {
		stats.GamesTotal++
		if game.Available {
			stats.GamesAvailable++
		} else {
			stats.GamesOnLoan++
		}
	}

	for _, member := range source.Members() {
		stats.MembersTotal++
		if member.Active {
			stats.MembersActive++
		}
		if member.HasPendingFine() {
			stats.MembersWithFine++
		}
		stats.PendingFines = stats.PendingFines.Add(member.PendingFine)
	}

	for _, loan := range source.Loans() {
		if loan.Active {
			stats.LoansActive++
		} else {
			stats.LoansFinished++
		}
		if loan.IsOverdue(now) {
			stats.LoansOverdue++
		}
	}

	return stats
}

type Generator struct {
	CurrencySymbol string
}

func NewGenerator(currencySymbol string) *Generator {
	return &Generator{CurrencySymbol: currencySymbol}
}

// Render writes the plain-text report.
func (g *Generator) Render(w io.Writer, stats Stats) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "=== LUDOTECA REPORT ===")
	fmt.Fprintf(bw, "Generated at: %s\n", stats.GeneratedAt.Format(timestampLayout))
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "TOTAL GAMES: %d\n", stats.GamesTotal)
	fmt.Fprintf(bw, "Available games: %d\n", stats.GamesAvailable)
	fmt.Fprintf(bw, "Games on loan: %d\n", stats.GamesOnLoan)
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "TOTAL MEMBERS: %d\n", stats.MembersTotal)
	fmt.Fprintf(bw, "Active members: %d\n", stats.MembersActive)
	fmt.Fprintf(bw, "Members with pending fines: %d\n", stats.MembersWithFine)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "LOANS:")
	fmt.Fprintf(bw, "Active: %d\n", stats.LoansActive)
	fmt.Fprintf(bw, "Finished: %d\n", stats.LoansFinished)
	fmt.Fprintf(bw, "Overdue: %d\n", stats.LoansOverdue)
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "TOTAL PENDING FINES: %s\n", utils.FormatMoney(g.CurrencySymbol, stats.PendingFines))

	return bw.Flush()
}

// WriteFile renders the report to path, replacing any previous report.
func (g *Generator) WriteFile(path string, stats Stats) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	if err := g.Render(f, stats); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
