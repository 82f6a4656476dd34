package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/shared/biztime"
)

// 03:00 in the business timezone, before the 06:00 deduction.
func earlyMorning() time.Time {
	return time.Date(2025, time.March, 11, 3, 0, 0, 0, biztime.Location()).UTC()
}

func TestAddJob_ReplaceKeepsOneRecordAndOldTimerNeverFires(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, h := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	require.NoError(t, s.AddJob(ctx, job.ExpireRental(1, now.Add(time.Hour))))
	oldTask := engine.task("expire_rental_1")
	require.NotNil(t, oldTask)

	later := now.Add(48 * time.Hour)
	require.NoError(t, s.AddJob(ctx, job.ExpireRental(1, later)))

	assert.Equal(t, []string{"expire_rental_1"}, store.ids())
	rec, err := store.Get(ctx, "expire_rental_1")
	require.NoError(t, err)
	assert.True(t, later.Equal(rec.Trigger.RunAt))
	assert.Len(t, engine.pending(), 1)

	// A superseded timer that still manages to run is a no-op.
	oldTask()
	assert.Empty(t, h.expired)

	assert.Equal(t, 1, engine.fire("expire_rental_1"))
	assert.Equal(t, []uint{1}, h.expired)
	assert.Empty(t, store.ids())
	assert.Empty(t, s.Jobs())
}

func TestAddJob_SaveFailureKeepsPreviousJob(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, h := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	first := now.Add(time.Hour)
	require.NoError(t, s.AddJob(ctx, job.ExpireRental(5, first)))

	store.saveErr = errors.New("disk full")
	err := s.AddJob(ctx, job.ExpireRental(5, now.Add(72*time.Hour)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist job expire_rental_5")

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.True(t, first.Equal(jobs[0].Trigger.RunAt))
	assert.Len(t, engine.pending(), 1)
	rec, err := store.Get(ctx, "expire_rental_5")
	require.NoError(t, err)
	assert.True(t, first.Equal(rec.Trigger.RunAt))

	assert.Equal(t, 1, engine.fire("expire_rental_5"))
	assert.Equal(t, []uint{5}, h.expired)
}

func TestAddJob_SaveFailureOnNewJobSchedulesNothing(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	s, engine, _ := newTestScheduler(store, staticRentals{}, now)

	require.Error(t, s.AddJob(context.Background(), job.NotifyRental(2, now.Add(time.Hour))))

	assert.Empty(t, s.Jobs())
	assert.Empty(t, engine.pending())
	assert.Empty(t, store.ids())
}

func TestAddJob_ScheduleFailureRestoresRecord(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, _ := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	first := now.Add(time.Hour)
	require.NoError(t, s.AddJob(ctx, job.ExpireRental(6, first)))

	engine.err = errors.New("engine closed")
	require.Error(t, s.AddJob(ctx, job.ExpireRental(6, now.Add(72*time.Hour))))
	require.Error(t, s.AddJob(ctx, job.ExpireRental(7, now.Add(72*time.Hour))))

	rec, err := store.Get(ctx, "expire_rental_6")
	require.NoError(t, err)
	assert.True(t, first.Equal(rec.Trigger.RunAt))
	assert.Equal(t, []string{"expire_rental_6"}, store.ids())
	require.Len(t, s.Jobs(), 1)
}

func TestAddJob_RejectsInvalidJob(t *testing.T) {
	s, _, _ := newTestScheduler(newMemStore(), staticRentals{}, earlyMorning())

	err := s.AddJob(context.Background(), job.Job{ID: "x", Kind: "bogus", Trigger: job.Daily(1, 0)})
	assert.ErrorIs(t, err, job.ErrUnknownKind)
}

func TestRemoveJob_IsIdempotent(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, h := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	require.NoError(t, s.AddJob(ctx, job.NotifyRental(4, now.Add(time.Hour))))
	task := engine.task("notify_rental_4")

	require.NoError(t, s.RemoveJob(ctx, "notify_rental_4"))
	require.NoError(t, s.RemoveJob(ctx, "notify_rental_4"))
	require.NoError(t, s.RemoveJob(ctx, "never_existed"))

	task()
	assert.Empty(t, h.notified)
	assert.Empty(t, store.ids())
	assert.Empty(t, engine.pending())
}

func TestFire_FailuresAreContainedAndNotRetried(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, h := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	h.panicOn = job.KindExpireRental
	h.err = errHandler

	require.NoError(t, s.AddJob(ctx, job.ExpireRental(2, now.Add(time.Minute))))
	require.NoError(t, s.AddJob(ctx, job.NotifyRental(3, now.Add(time.Minute))))

	assert.NotPanics(t, func() { engine.fire("expire_rental_2") })
	engine.fire("notify_rental_3")

	assert.Equal(t, []uint{2}, h.expired)
	assert.Equal(t, []uint{3}, h.notified)
	assert.Empty(t, store.ids())
	assert.Zero(t, engine.fire("expire_rental_2"))
}

func TestDeductionJob_IsRecurring(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, h := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	require.NoError(t, s.ScheduleDeduction(ctx))
	require.NoError(t, s.ScheduleDeduction(ctx))
	assert.Len(t, engine.pending(), 1)

	engine.fire(job.DeductionJobID)
	engine.fire(job.DeductionJobID)

	assert.Equal(t, 2, h.deductions)
	assert.Equal(t, []string{job.DeductionJobID}, store.ids())
}

func TestRunDeductionNow_ReturnsHandlerError(t *testing.T) {
	s, _, h := newTestScheduler(newMemStore(), staticRentals{}, earlyMorning())
	h.err = errHandler

	err := s.RunDeductionNow(context.Background())
	assert.ErrorIs(t, err, errHandler)
	assert.Equal(t, 1, h.deductions)
}

func TestFire_WithoutHandler(t *testing.T) {
	now := earlyMorning()
	engine := newFakeEngine()
	s := NewJobScheduler(engine, newMemStore(), staticRentals{}, Options{NotifyBefore: time.Hour}, nopLogger())
	s.now = func() time.Time { return now }

	require.NoError(t, s.AddJob(context.Background(), job.ExpireRental(1, now)))
	assert.NotPanics(t, func() { engine.fire("expire_rental_1") })
	assert.Error(t, s.RunDeductionNow(context.Background()))
}

func TestStartStop(t *testing.T) {
	s, engine, _ := newTestScheduler(newMemStore(), staticRentals{}, earlyMorning())

	s.Start()
	s.Start()
	assert.True(t, s.IsStarted())
	assert.True(t, engine.started)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsStarted())
	assert.False(t, engine.started)
	require.NoError(t, s.Stop())
}
