package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/ludoteca/internal/catalog"
	"github.com/segyhp/ludoteca/internal/config"
	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/internal/report"
	"github.com/segyhp/ludoteca/internal/repository"
	customError "github.com/segyhp/ludoteca/pkg/errors"
	"github.com/segyhp/ludoteca/pkg/logger"
)

// Loan list filters accepted by Loans.
const (
	LoanFilterAll      = ""
	LoanFilterActive   = "active"
	LoanFilterOverdue  = "overdue"
	LoanFilterFinished = "finished"
)

// LibraryService ties the catalog to its snapshot store and report output.
type LibraryService struct {
	catalog    *catalog.Catalog
	store      repository.SnapshotStore
	reports    *report.Generator
	reportPath string
	log        logger.Logger

	mu        sync.Mutex
	discarded []string
}

func NewLibraryService(
	catalog *catalog.Catalog,
	store repository.SnapshotStore,
	reportConfig config.ReportConfig,
	log logger.Logger,
) *LibraryService {
	return &LibraryService{
		catalog:    catalog,
		store:      store,
		reports:    report.NewGenerator(reportConfig.CurrencySymbol),
		reportPath: reportConfig.Path,
		log:        log,
	}
}

// Load replaces the catalog state with the stored snapshot. A store that
// cannot be read is logged and the catalog keeps whatever it held before.
func (s *LibraryService) Load(ctx context.Context) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		s.log.InternalError("loading library failed, keeping current state", err)
		return
	}

	s.catalog.ImportState(snapshot)

	s.mu.Lock()
	s.discarded = snapshot.Discarded
	s.mu.Unlock()
	if len(snapshot.Discarded) > 0 {
		s.log.Warn("library loaded without unreadable categories; saving will overwrite them",
			"discarded", snapshot.Discarded)
	}

	s.log.Info("library loaded",
		"games", len(snapshot.Games),
		"members", len(snapshot.Members),
		"loans", len(snapshot.Loans),
	)
}

// Save writes the current catalog state and returns the instant it was
// stamped with. Failures are always returned.
func (s *LibraryService) Save(ctx context.Context) (time.Time, error) {
	snapshot := s.catalog.ExportState()

	if err := s.store.Save(ctx, snapshot); err != nil {
		s.log.InternalError("saving library failed", err)
		return time.Time{}, customError.WrapStorageError("save", err)
	}

	s.log.Debug("library saved", "last_updated", snapshot.LastUpdated)
	return snapshot.LastUpdated, nil
}

// Discarded lists the categories the last Load could not read.
func (s *LibraryService) Discarded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.discarded...)
}

// Now is the catalog clock's current instant.
func (s *LibraryService) Now() time.Time {
	return s.catalog.Now()
}

// Ping reports whether the snapshot store is reachable.
func (s *LibraryService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *LibraryService) RegisterGame(req domain.RegisterGameRequest) (*domain.Game, error) {
	return s.catalog.RegisterGame(req)
}

func (s *LibraryService) RegisterMember(req domain.RegisterMemberRequest) (*domain.Member, error) {
	return s.catalog.RegisterMember(req)
}

func (s *LibraryService) SetMemberActive(memberID uuid.UUID, active bool) (*domain.Member, error) {
	return s.catalog.SetMemberActive(memberID, active)
}

// IssueLoan lends a game using the default grace period when the request
// leaves loan_days out.
func (s *LibraryService) IssueLoan(req domain.IssueLoanRequest) (*domain.Loan, error) {
	loanDays := req.LoanDays
	if loanDays == 0 {
		loanDays = domain.DefaultLoanDays
	}
	return s.catalog.IssueLoan(req.GameID, req.MemberID, loanDays)
}

func (s *LibraryService) ReturnLoan(loanID uuid.UUID) (*domain.Loan, error) {
	return s.catalog.ReturnLoan(loanID)
}

// PreviewFine describes what returning the loan right now would cost.
func (s *LibraryService) PreviewFine(loanID uuid.UUID) (*domain.FinePreview, error) {
	return s.catalog.DescribeFine(loanID)
}

// PayFine records a payment; a blank method is taken as cash.
func (s *LibraryService) PayFine(memberID uuid.UUID, req domain.PayFineRequest) (*domain.FinePayment, error) {
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = domain.PaymentMethodCash
	}
	return s.catalog.PayFine(memberID, req.Amount, method)
}

func (s *LibraryService) Game(id uuid.UUID) (*domain.Game, error) {
	return s.catalog.Game(id)
}

func (s *LibraryService) Member(id uuid.UUID) (*domain.Member, error) {
	return s.catalog.Member(id)
}

func (s *LibraryService) Loan(id uuid.UUID) (*domain.Loan, error) {
	return s.catalog.Loan(id)
}

func (s *LibraryService) Games(availableOnly bool) []domain.Game {
	if availableOnly {
		return s.catalog.AvailableGames()
	}
	return s.catalog.Games()
}

func (s *LibraryService) Members(withFineOnly bool) []domain.Member {
	if withFineOnly {
		return s.catalog.MembersWithFines()
	}
	return s.catalog.Members()
}

// Loans lists loans matching one of the LoanFilter values.
func (s *LibraryService) Loans(filter string) ([]domain.Loan, error) {
	switch strings.ToLower(filter) {
	case LoanFilterAll:
		return s.catalog.Loans(), nil
	case LoanFilterActive:
		return s.catalog.ActiveLoans(), nil
	case LoanFilterOverdue:
		return s.catalog.OverdueLoans(), nil
	case LoanFilterFinished:
		return s.catalog.FinishedLoans(), nil
	default:
		return nil, customError.WrapInvalidInput(fmt.Sprintf("unknown loan filter '%s'", filter))
	}
}

// Report computes the current report figures without writing anything.
func (s *LibraryService) Report() report.Stats {
	snapshot := s.catalog.ExportState()
	return report.Build(report.FromSnapshot(snapshot), snapshot.LastUpdated)
}

// GenerateReport writes the report to the configured path.
func (s *LibraryService) GenerateReport() (report.Stats, error) {
	stats := s.Report()

	if err := s.reports.WriteFile(s.reportPath, stats); err != nil {
		s.log.InternalError("writing report failed", err, "path", s.reportPath)
		return stats, customError.WrapStorageError("write report", err)
	}

	s.log.Info("report generated", "path", s.reportPath)
	return stats, nil
}

// RenderReport writes the current report to an arbitrary destination.
func (s *LibraryService) RenderReport(w io.Writer) error {
	return s.reports.Render(w, s.Report())
}
