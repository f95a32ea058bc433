package rooms

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teemow/freerooms/internal/logging"
)

// DefaultSchedule runs a check every five minutes
const DefaultSchedule = "@every 5m"

// ResultHandler receives the outcome of every scheduled check
type ResultHandler func(ctx context.Context, result *Result, err error)

// Scheduler runs checks periodically. Checks never overlap: a run that is due
// while the previous one is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	checker *Checker
	handle  ResultHandler
	logger  *slog.Logger
	entry   cron.EntryID
	first   cron.Job

	mu  sync.Mutex
	ctx context.Context
}

// NewScheduler creates a scheduler running checker on the given cron spec
// (standard five-field syntax or descriptors such as "@every 5m").
func NewScheduler(checker *Checker, spec string, handle ResultHandler, logger *slog.Logger) (*Scheduler, error) {
	if checker == nil {
		return nil, fmt.Errorf("checker cannot be nil")
	}
	if handle == nil {
		return nil, fmt.Errorf("result handler cannot be nil")
	}
	if spec == "" {
		spec = DefaultSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}

	cronLogger := logging.NewCronAdapter(logger)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		checker: checker,
		handle:  handle,
		logger:  logging.WithService(logger, "scheduler"),
		ctx:     context.Background(),
	}

	// The immediate check in Start gets the same panic recovery as scheduled ones
	s.first = cron.NewChain(cron.Recover(cronLogger)).Then(cron.FuncJob(s.run))

	entry, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = entry

	return s, nil
}

// Start runs a first check right away and then hands over to the schedule.
// Scheduled checks use ctx; Stop must still be called to halt the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.logger.Info("starting room checks")
	s.first.Run()
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Time("next_run", s.Next()))
}

// Stop halts the schedule and waits for a running check to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Next returns when the next check is due; zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	result, err := s.checker.Check(ctx)
	s.handle(ctx, result, err)
}
