package scheduler

import (
	"context"
	"fmt"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
)

// ReloadReport summarizes one Reload pass.
type ReloadReport struct {
	Restored     int
	Discarded    int
	Invalid      int
	Bootstrapped bool
	CatchUp      bool
}

// Reload rebuilds the live job set from the store. Elapsed one-shot jobs are
// deleted without firing. The deduction job is always registered. An empty
// store triggers a bootstrap from the active rentals. When the day's deduction
// time has already passed, one deduction runs before Reload returns.
func (s *JobScheduler) Reload(ctx context.Context) (ReloadReport, error) {
	var report ReloadReport

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load persisted jobs: %w", err)
	}
	now := s.now()

	if len(records) == 0 {
		if err := s.bootstrap(ctx); err != nil {
			return report, err
		}
		report.Bootstrapped = true
	} else {
		hasDeduction := false
		for _, rec := range records {
			j, err := job.FromRecord(rec)
			if err != nil {
				s.logger.Warnw("dropping invalid job record", "job_id", rec.JobID, "error", err)
				report.Invalid++
				s.discard(ctx, rec.JobID)
				continue
			}

			if j.Kind == job.KindDailyDeduction {
				hasDeduction = true
				if err := s.restoreDeduction(ctx, j); err != nil {
					return report, err
				}
				report.Restored++
				continue
			}

			if !j.IsRecurring() && !j.Trigger.RunAt.After(now) {
				s.logger.Infow("discarding elapsed job", "job_id", j.ID, "run_at", j.Trigger.RunAt)
				report.Discarded++
				s.discard(ctx, j.ID)
				continue
			}

			if err := s.addJob(ctx, j, false); err != nil {
				return report, err
			}
			report.Restored++
		}

		if !hasDeduction {
			if err := s.ScheduleDeduction(ctx); err != nil {
				return report, err
			}
		}
	}

	s.logger.Infow("job reload finished",
		"restored", report.Restored,
		"discarded", report.Discarded,
		"invalid", report.Invalid,
		"bootstrapped", report.Bootstrapped,
	)

	if !now.Before(biztime.DailyAtUTC(now, s.opts.DeductionHour, s.opts.DeductionMinute)) {
		report.CatchUp = true
		s.logger.Infow("deduction time already passed today, running catch-up sweep")
		if err := s.RunDeductionNow(ctx); err != nil {
			s.logger.Warnw("catch-up deduction failed", "error", err)
		}
	}
	return report, nil
}

// restoreDeduction keeps the persisted record unless the configured time changed.
func (s *JobScheduler) restoreDeduction(ctx context.Context, stored job.Job) error {
	current := job.DailyDeduction(s.opts.DeductionHour, s.opts.DeductionMinute)
	changed := stored.Trigger.String() != current.Trigger.String()
	if changed {
		s.logger.Infow("deduction time changed",
			"stored", stored.Trigger.String(),
			"configured", current.Trigger.String(),
		)
	}
	return s.addJob(ctx, current, changed)
}

func (s *JobScheduler) bootstrap(ctx context.Context) error {
	rentals, err := s.rentals.List(ctx, rental.Filter{
		Active:  rental.BoolPtr(true),
		Expired: rental.BoolPtr(false),
	})
	if err != nil {
		return fmt.Errorf("failed to list active rentals: %w", err)
	}

	s.logger.Infow("job store empty, bootstrapping from active rentals", "count", len(rentals))
	for _, r := range rentals {
		if err := s.ScheduleRentalJobs(ctx, r); err != nil {
			return fmt.Errorf("failed to bootstrap jobs for rental %d: %w", r.ID(), err)
		}
	}
	return s.ScheduleDeduction(ctx)
}

func (s *JobScheduler) discard(ctx context.Context, jobID string) {
	if err := s.store.Delete(ctx, jobID); err != nil {
		s.logger.Warnw("failed to delete job record", "job_id", jobID, "error", err)
	}
}
