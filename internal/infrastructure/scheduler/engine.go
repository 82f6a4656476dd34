// Package scheduler keeps the rental and deduction timers alive across
// restarts. Every registered job is mirrored into a job.Store and replayed by
// Reload on startup.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/orris-inc/leasebot/internal/domain/job"
)

// Engine fires tasks at their trigger time. Each task must run on its own
// goroutine so a slow callback never holds back other timers.
type Engine interface {
	Schedule(j job.Job, task func()) (uuid.UUID, error)
	// Remove cancels a pending timer. An unknown id is not an error.
	Remove(id uuid.UUID) error
	Start()
	Shutdown() error
}

// One-shot triggers closer than this are started immediately; gocron rejects
// start times that are already in the past.
const immediateThreshold = time.Second

// GocronEngine is the production Engine.
type GocronEngine struct {
	scheduler gocron.Scheduler
}

// NewGocronEngine creates an engine whose daily triggers are evaluated in loc.
func NewGocronEngine(loc *time.Location) (*GocronEngine, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &GocronEngine{scheduler: s}, nil
}

func (e *GocronEngine) Schedule(j job.Job, task func()) (uuid.UUID, error) {
	def, err := definitionFor(j.Trigger)
	if err != nil {
		return uuid.Nil, err
	}

	gj, err := e.scheduler.NewJob(
		def,
		gocron.NewTask(task),
		gocron.WithName(j.ID),
		gocron.WithTags(string(j.Category), string(j.Kind)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to register %s with gocron: %w", j.ID, err)
	}
	return gj.ID(), nil
}

func definitionFor(t job.Trigger) (gocron.JobDefinition, error) {
	switch t.Kind {
	case job.TriggerAt:
		if time.Until(t.RunAt) < immediateThreshold {
			return gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()), nil
		}
		return gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(t.RunAt)), nil
	case job.TriggerCron:
		return gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(t.Hour), uint(t.Minute), 0),
		)), nil
	default:
		return nil, fmt.Errorf("%w: kind %q", job.ErrInvalidTrigger, t.Kind)
	}
}

func (e *GocronEngine) Remove(id uuid.UUID) error {
	if err := e.scheduler.RemoveJob(id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		return fmt.Errorf("failed to remove gocron job: %w", err)
	}
	return nil
}

func (e *GocronEngine) Start() {
	e.scheduler.Start()
}

func (e *GocronEngine) Shutdown() error {
	return e.scheduler.Shutdown()
}

// Handler executes the closed set of job kinds.
type Handler interface {
	HandleExpireRental(ctx context.Context, rentalID uint) error
	HandleNotifyRental(ctx context.Context, rentalID uint) error
	HandleDailyDeduction(ctx context.Context) error
}
