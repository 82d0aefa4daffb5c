// Package scheduler runs the periodic library jobs: autosave, report
// regeneration and the overdue loan sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/ludoteca/internal/config"
	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/internal/report"
	"github.com/segyhp/ludoteca/internal/service"
	"github.com/segyhp/ludoteca/pkg/logger"
)

const jobTimeout = 30 * time.Second

// Library is the part of the library service the jobs drive.
type Library interface {
	Load(ctx context.Context)
	Save(ctx context.Context) (time.Time, error)
	Now() time.Time
	GenerateReport() (report.Stats, error)
	Loans(filter string) ([]domain.Loan, error)
}

type Scheduler struct {
	cron    *cron.Cron
	library Library
	log     logger.Logger

	// reload makes every job read the store first; used when another
	// process owns the catalog.
	reload bool
}

type Option func(*Scheduler)

// WithReload refreshes the catalog from the store before each job.
func WithReload() Option {
	return func(s *Scheduler) {
		s.reload = true
	}
}

func New(library Library, log logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		library: library,
		log:     log.With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleAutosave saves the catalog every interval.
func (s *Scheduler) ScheduleAutosave(interval time.Duration) error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.Autosave); err != nil {
		return fmt.Errorf("schedule autosave: %w", err)
	}
	return nil
}

// ScheduleReports regenerates the report file on the cron schedule.
func (s *Scheduler) ScheduleReports(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.Report); err != nil {
		return fmt.Errorf("schedule report: %w", err)
	}
	return nil
}

// ScheduleOverdueSweep logs the overdue loans on the cron schedule.
func (s *Scheduler) ScheduleOverdueSweep(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.OverdueSweep); err != nil {
		return fmt.Errorf("schedule overdue sweep: %w", err)
	}
	return nil
}

// ScheduleFromConfig registers the report and overdue jobs, plus autosave
// when withAutosave is set.
func (s *Scheduler) ScheduleFromConfig(cfg config.SchedulerConfig, withAutosave bool) error {
	if withAutosave {
		if err := s.ScheduleAutosave(cfg.AutosaveInterval); err != nil {
			return err
		}
	}
	if err := s.ScheduleReports(cfg.ReportSchedule); err != nil {
		return err
	}
	return s.ScheduleOverdueSweep(cfg.OverdueSchedule)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) Autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	savedAt, err := s.library.Save(ctx)
	if err != nil {
		s.log.InternalError("autosave failed", err)
		return
	}
	s.log.Debug("autosave complete", "saved_at", savedAt)
}

func (s *Scheduler) Report() {
	s.refresh()

	stats, err := s.library.GenerateReport()
	if err != nil {
		s.log.InternalError("scheduled report failed", err)
		return
	}
	s.log.Info("scheduled report written",
		"loans_active", stats.LoansActive,
		"loans_overdue", stats.LoansOverdue,
		"pending_fines", stats.PendingFines.StringFixed(2),
	)
}

// OverdueSweep logs one warning per overdue loan with the fine accrued so far.
func (s *Scheduler) OverdueSweep() {
	s.refresh()

	loans, err := s.library.Loans(service.LoanFilterOverdue)
	if err != nil {
		s.log.InternalError("overdue sweep failed", err)
		return
	}

	now := s.library.Now()
	for _, loan := range loans {
		s.log.Warn("loan overdue",
			"loan_id", loan.ID,
			"game", loan.GameName,
			"member", loan.MemberName,
			"due_at", loan.DueAt,
			"fine_so_far", loan.FineAt(now).StringFixed(2),
		)
	}
	s.log.Info("overdue sweep complete", "overdue", len(loans))
}

func (s *Scheduler) refresh() {
	if !s.reload {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.library.Load(ctx)
}
