package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/domain/job"
)

func TestScheduleRentalExpiration_UsesEndTime(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, _, _ := newTestScheduler(store, staticRentals{}, now)
	end := now.Add(7 * 24 * time.Hour)

	require.NoError(t, s.ScheduleRentalExpiration(context.Background(), testRental(5, end, false)))

	rec, err := store.Get(context.Background(), "expire_rental_5")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, string(job.KindExpireRental), rec.CallbackName)
	assert.Equal(t, []uint64{5}, rec.Args)
	assert.True(t, end.Equal(rec.Trigger.RunAt))
}

func TestScheduleNotificationJob_Window(t *testing.T) {
	now := earlyMorning()

	tests := []struct {
		name      string
		end       time.Time
		notified  bool
		scheduled bool
		fireAt    time.Time
	}{
		{name: "future threshold", end: now.Add(48 * time.Hour), scheduled: true, fireAt: now.Add(24 * time.Hour)},
		{name: "threshold missed within tolerance", end: now.Add(20 * time.Hour), scheduled: true, fireAt: now},
		{name: "threshold missed beyond tolerance", end: now.Add(6 * time.Hour), scheduled: false},
		{name: "already past due", end: now.Add(-time.Hour), scheduled: false},
		{name: "already notified", end: now.Add(48 * time.Hour), notified: true, scheduled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			s, _, _ := newTestScheduler(store, staticRentals{}, now)

			ok, err := s.ScheduleNotificationJob(context.Background(), testRental(9, tt.end, tt.notified))
			require.NoError(t, err)
			assert.Equal(t, tt.scheduled, ok)

			rec, err := store.Get(context.Background(), "notify_rental_9")
			require.NoError(t, err)
			if !tt.scheduled {
				assert.Nil(t, rec)
				return
			}
			require.NotNil(t, rec)
			assert.True(t, tt.fireAt.Equal(rec.Trigger.RunAt), "got %s", rec.Trigger.RunAt)
		})
	}
}

func TestScheduleNotificationJob_SkipRemovesStaleJob(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, _ := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	ok, err := s.ScheduleNotificationJob(ctx, testRental(3, now.Add(72*time.Hour), false))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.ScheduleNotificationJob(ctx, testRental(3, now.Add(72*time.Hour), true))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.ids())
	assert.Empty(t, engine.pending())
}

func TestRemoveRentalJobs(t *testing.T) {
	now := earlyMorning()
	store := newMemStore()
	s, engine, _ := newTestScheduler(store, staticRentals{}, now)
	ctx := context.Background()

	require.NoError(t, s.ScheduleRentalJobs(ctx, testRental(8, now.Add(5*24*time.Hour), false)))
	require.NoError(t, s.ScheduleDeduction(ctx))
	assert.Len(t, store.ids(), 3)

	require.NoError(t, s.RemoveRentalJobs(ctx, 8))
	assert.Equal(t, []string{job.DeductionJobID}, store.ids())
	assert.Len(t, engine.pending(), 1)
}
