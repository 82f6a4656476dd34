package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
	"github.com/orris-inc/leasebot/internal/shared/config"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

const (
	defaultNotifyBefore    = 24 * time.Hour
	defaultNotifyTolerance = 12 * time.Hour
)

type Options struct {
	DeductionHour   int
	DeductionMinute int
	// NotifyBefore is how long before end_time the pre-expiry notice fires.
	NotifyBefore time.Duration
	// NotifyTolerance is how late a missed notice may still be sent.
	NotifyTolerance time.Duration
}

func OptionsFromConfig(cfg config.SchedulerConfig) Options {
	opts := Options{
		DeductionHour:   cfg.DeductionHour,
		DeductionMinute: cfg.DeductionMinute,
		NotifyBefore:    cfg.NotifyBefore,
		NotifyTolerance: cfg.NotifyTolerance,
	}
	if opts.NotifyBefore <= 0 {
		opts.NotifyBefore = defaultNotifyBefore
	}
	if opts.NotifyTolerance < 0 {
		opts.NotifyTolerance = defaultNotifyTolerance
	}
	return opts
}

// RentalLister is the slice of the rental repository the bootstrap needs.
type RentalLister interface {
	List(ctx context.Context, filter rental.Filter) ([]*rental.Rental, error)
}

type entry struct {
	gen      uint64
	engineID uuid.UUID
	job      job.Job
}

// JobScheduler owns the live job set. Each registration gets a generation
// number; a timer only runs its callback while its generation is current, so
// a replaced or removed job can never fire.
type JobScheduler struct {
	engine  Engine
	store   job.Store
	rentals RentalLister
	logger  logger.Interface
	opts    Options
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	nextGen uint64
	handler Handler

	baseCtx context.Context
	cancel  context.CancelFunc

	started   bool
	startedMu sync.RWMutex
}

func NewJobScheduler(engine Engine, store job.Store, rentals RentalLister, opts Options, log logger.Interface) *JobScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobScheduler{
		engine:  engine,
		store:   store,
		rentals: rentals,
		logger:  log,
		opts:    opts,
		now:     biztime.NowUTC,
		entries: make(map[string]*entry),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// SetHandler wires the callbacks. It is separate from the constructor because
// the use cases behind the handler depend on the scheduler themselves.
func (s *JobScheduler) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// AddJob registers j, replacing any job with the same id, and persists it.
func (s *JobScheduler) AddJob(ctx context.Context, j job.Job) error {
	return s.addJob(ctx, j, true)
}

func (s *JobScheduler) addJob(ctx context.Context, j job.Job, persist bool) error {
	if err := j.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := j.ID
	old, replacing := s.entries[id]

	// The durable record goes first so a failed save leaves the live set untouched.
	if persist {
		if err := s.store.Save(ctx, j.ToRecord()); err != nil {
			s.logger.Errorw("failed to persist job", "job_id", id, "error", err)
			return fmt.Errorf("failed to persist job %s: %w", id, err)
		}
	}

	s.nextGen++
	gen := s.nextGen
	engineID, err := s.engine.Schedule(j, func() { s.fire(id, gen) })
	if err != nil {
		if persist {
			s.restoreRecord(ctx, id, old)
		}
		return fmt.Errorf("failed to schedule job %s: %w", id, err)
	}
	if replacing {
		if err := s.engine.Remove(old.engineID); err != nil {
			s.logger.Warnw("failed to cancel replaced timer", "job_id", id, "error", err)
		}
	}
	s.entries[id] = &entry{gen: gen, engineID: engineID, job: j}

	s.logger.Infow("job scheduled",
		"job_id", id,
		"kind", j.Kind,
		"trigger", j.Trigger.String(),
		"persisted", persist,
	)
	return nil
}

// restoreRecord puts the store back to match the live entry for id.
func (s *JobScheduler) restoreRecord(ctx context.Context, id string, old *entry) {
	var err error
	if old != nil {
		err = s.store.Save(ctx, old.job.ToRecord())
	} else {
		err = s.store.Delete(ctx, id)
	}
	if err != nil {
		s.logger.Errorw("failed to restore job record", "job_id", id, "error", err)
	}
}

// RemoveJob cancels the timer and deletes the durable record. Unknown ids are ignored.
func (s *JobScheduler) RemoveJob(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[jobID]; ok {
		delete(s.entries, jobID)
		if err := s.engine.Remove(e.engineID); err != nil {
			s.logger.Warnw("failed to cancel timer", "job_id", jobID, "error", err)
		}
	}
	if err := s.store.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", jobID, err)
	}
	return nil
}

// Jobs returns the live job set ordered by id.
func (s *JobScheduler) Jobs() []job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]job.Job, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *JobScheduler) fire(jobID string, gen uint64) {
	j, ok := s.claim(jobID, gen)
	if !ok {
		s.logger.Debugw("ignoring superseded timer", "job_id", jobID)
		return
	}
	_ = s.execute(s.baseCtx, j)
}

// claim reports whether the timer of generation gen may run jobID. One-shot
// jobs leave the live set and the store before their callback starts.
func (s *JobScheduler) claim(jobID string, gen uint64) (job.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[jobID]
	if !ok || e.gen != gen {
		return job.Job{}, false
	}
	if e.job.Trigger.IsOneShot() {
		delete(s.entries, jobID)
		if err := s.store.Delete(s.baseCtx, jobID); err != nil {
			s.logger.Warnw("failed to delete fired job record", "job_id", jobID, "error", err)
		}
	}
	return e.job, true
}

// execute runs the callback once. Errors and panics are logged, never retried.
func (s *JobScheduler) execute(ctx context.Context, j job.Job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.ID, r)
			s.logger.Errorw("job panicked", "job_id", j.ID, "kind", j.Kind, "panic", r)
		}
	}()

	if err = s.dispatch(ctx, j); err != nil {
		s.logger.Errorw("job failed",
			"job_id", j.ID,
			"kind", j.Kind,
			"error", err,
			"duration", time.Since(start),
		)
		return err
	}

	s.logger.Infow("job completed",
		"job_id", j.ID,
		"kind", j.Kind,
		"duration", time.Since(start),
	)
	return nil
}

func (s *JobScheduler) dispatch(ctx context.Context, j job.Job) error {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		return errors.New("no job handler registered")
	}

	switch j.Kind {
	case job.KindExpireRental:
		return h.HandleExpireRental(ctx, j.RentalID)
	case job.KindNotifyRental:
		return h.HandleNotifyRental(ctx, j.RentalID)
	case job.KindDailyDeduction:
		return h.HandleDailyDeduction(ctx)
	default:
		return fmt.Errorf("%w: %q", job.ErrUnknownKind, j.Kind)
	}
}

// RunDeductionNow runs the deduction callback synchronously, outside the timer.
func (s *JobScheduler) RunDeductionNow(ctx context.Context) error {
	return s.execute(ctx, job.DailyDeduction(s.opts.DeductionHour, s.opts.DeductionMinute))
}

// Start starts the timer engine.
func (s *JobScheduler) Start() {
	s.startedMu.Lock()
	defer s.startedMu.Unlock()

	if s.started {
		return
	}

	s.engine.Start()
	s.started = true
	s.logger.Infow("job scheduler started", "job_count", len(s.Jobs()))
}

// Stop shuts the engine down, waiting for running callbacks.
func (s *JobScheduler) Stop() error {
	s.startedMu.Lock()
	defer s.startedMu.Unlock()

	if !s.started {
		s.cancel()
		return nil
	}

	s.logger.Infow("stopping job scheduler")
	err := s.engine.Shutdown()
	s.cancel()
	s.started = false

	if err != nil {
		s.logger.Errorw("job scheduler shutdown with error", "error", err)
		return err
	}

	s.logger.Infow("job scheduler stopped")
	return nil
}

func (s *JobScheduler) IsStarted() bool {
	s.startedMu.RLock()
	defer s.startedMu.RUnlock()
	return s.started
}
