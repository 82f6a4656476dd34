package scheduler

import (
	"context"
	"time"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/domain/rental"
)

// ScheduleRentalExpiration registers expire_rental_{id} at the rental's end_time.
func (s *JobScheduler) ScheduleRentalExpiration(ctx context.Context, r *rental.Rental) error {
	return s.AddJob(ctx, job.ExpireRental(r.ID(), r.EndAt()))
}

// ScheduleNotificationJob registers the pre-expiry notice for r. A notice
// whose fire time passed less than NotifyTolerance ago fires immediately;
// older ones are skipped and any stale job is removed. It reports whether a
// job was registered.
func (s *JobScheduler) ScheduleNotificationJob(ctx context.Context, r *rental.Rental) (bool, error) {
	jobID := job.NotifyRentalID(r.ID())
	if r.State() != rental.StateActive {
		return false, s.RemoveJob(ctx, jobID)
	}

	fireAt, ok := s.notificationFireTime(r.EndAt(), s.now())
	if !ok {
		s.logger.Debugw("notification window missed", "rental_id", r.ID(), "end_time", r.EndTime())
		return false, s.RemoveJob(ctx, jobID)
	}
	if err := s.AddJob(ctx, job.NotifyRental(r.ID(), fireAt)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *JobScheduler) notificationFireTime(endAt, now time.Time) (time.Time, bool) {
	at := endAt.Add(-s.opts.NotifyBefore)
	if at.After(now) {
		return at, true
	}
	if now.Sub(at) <= s.opts.NotifyTolerance && endAt.After(now) {
		return now, true
	}
	return time.Time{}, false
}

// ScheduleRentalJobs (re)registers both timers of r.
func (s *JobScheduler) ScheduleRentalJobs(ctx context.Context, r *rental.Rental) error {
	if err := s.ScheduleRentalExpiration(ctx, r); err != nil {
		return err
	}
	_, err := s.ScheduleNotificationJob(ctx, r)
	return err
}

// RemoveRentalJobs drops both timers of a rental.
func (s *JobScheduler) RemoveRentalJobs(ctx context.Context, rentalID uint) error {
	if err := s.RemoveJob(ctx, job.ExpireRentalID(rentalID)); err != nil {
		return err
	}
	return s.RemoveJob(ctx, job.NotifyRentalID(rentalID))
}

// ScheduleDeduction registers the single recurring deduction job.
func (s *JobScheduler) ScheduleDeduction(ctx context.Context) error {
	return s.AddJob(ctx, job.DailyDeduction(s.opts.DeductionHour, s.opts.DeductionMinute))
}
