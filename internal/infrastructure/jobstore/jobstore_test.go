package jobstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "test:jobs", logger.NewNopLogger()), mr
}

func setupDBStore(t *testing.T) *DBStore {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&models.ScheduledJobModel{}))
	return NewDBStore(gdb, logger.NewNopLogger())
}

func stores(t *testing.T) map[string]job.Store {
	rs, _ := setupRedisStore(t)
	return map[string]job.Store{
		"redis":    rs,
		"database": setupDBStore(t),
	}
}

func TestStore_SaveReplacesByJobID(t *testing.T) {
	runAt := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Save(ctx, job.ExpireRental(7, runAt).ToRecord()))
			require.NoError(t, store.Save(ctx, job.ExpireRental(7, runAt.Add(48*time.Hour)).ToRecord()))

			all, err := store.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "expire_rental_7", all[0].JobID)
			assert.True(t, runAt.Add(48*time.Hour).Equal(all[0].Trigger.RunAt))
			assert.Equal(t, []uint64{7}, all[0].Args)
		})
	}
}

func TestStore_RoundTripsEveryKind(t *testing.T) {
	runAt := time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC)
	want := []job.Job{
		job.DailyDeduction(0, 0),
		job.ExpireRental(3, runAt),
		job.NotifyRental(3, runAt.Add(-24*time.Hour)),
	}

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, j := range want {
				require.NoError(t, store.Save(ctx, j.ToRecord()))
			}

			all, err := store.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)

			got := make(map[string]job.Job, len(all))
			for _, rec := range all {
				j, err := job.FromRecord(rec)
				require.NoError(t, err)
				got[j.ID] = j
			}
			for _, j := range want {
				assert.Equal(t, j.Kind, got[j.ID].Kind)
				assert.Equal(t, j.RentalID, got[j.ID].RentalID)
				assert.Equal(t, j.Trigger.String(), got[j.ID].Trigger.String())
			}
		})
	}
}

func TestStore_DeleteAndGet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, job.NotifyRental(9, time.Unix(1_800_000_000, 0)).ToRecord()))

			rec, err := store.Get(ctx, "notify_rental_9")
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, string(job.KindNotifyRental), rec.CallbackName)

			require.NoError(t, store.Delete(ctx, "notify_rental_9"))
			require.NoError(t, store.Delete(ctx, "notify_rental_9"))

			rec, err = store.Get(ctx, "notify_rental_9")
			assert.NoError(t, err)
			assert.Nil(t, rec)
		})
	}
}

func TestRedisStore_SkipsUndecodableFields(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, job.DailyDeduction(0, 0).ToRecord()))
	mr.HSet("test:jobs", "garbage", "{not json")

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, job.DeductionJobID, all[0].JobID)
}
