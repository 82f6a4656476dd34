package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/domain/job"
)

func newGocronEngine(t *testing.T) *GocronEngine {
	t.Helper()
	e, err := NewGocronEngine(time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

// oneShotAt skips the whole-second truncation of job.At so sub-second offsets survive.
func oneShotAt(rentalID uint, at time.Time) job.Job {
	j := job.ExpireRental(rentalID, at)
	j.Trigger = job.Trigger{Kind: job.TriggerAt, RunAt: at}
	return j
}

func signal(ch chan string, name string) func() {
	return func() { ch <- name }
}

func TestGocronEngine_ImmediateOneShotBeforeStart(t *testing.T) {
	e := newGocronEngine(t)
	fired := make(chan string, 1)

	_, err := e.Schedule(oneShotAt(1, time.Now().Add(-time.Minute)), signal(fired, "overdue"))
	require.NoError(t, err)
	e.Start()

	select {
	case name := <-fired:
		assert.Equal(t, "overdue", name)
	case <-time.After(3 * time.Second):
		t.Fatal("overdue one-shot did not fire after Start")
	}
}

func TestGocronEngine_ImmediateOneShotAfterStart(t *testing.T) {
	e := newGocronEngine(t)
	e.Start()
	fired := make(chan string, 1)

	_, err := e.Schedule(oneShotAt(2, time.Now().Add(300*time.Millisecond)), signal(fired, "soon"))
	require.NoError(t, err)

	select {
	case name := <-fired:
		assert.Equal(t, "soon", name)
	case <-time.After(3 * time.Second):
		t.Fatal("sub-second one-shot did not fire")
	}
}

func TestGocronEngine_RemovedTimerNeverFires(t *testing.T) {
	e := newGocronEngine(t)
	e.Start()
	fired := make(chan string, 2)

	oldID, err := e.Schedule(oneShotAt(3, time.Now().Add(1500*time.Millisecond)), signal(fired, "old"))
	require.NoError(t, err)
	_, err = e.Schedule(oneShotAt(3, time.Now().Add(-time.Second)), signal(fired, "new"))
	require.NoError(t, err)
	require.NoError(t, e.Remove(oldID))
	require.NoError(t, e.Remove(oldID), "removing twice is not an error")

	select {
	case name := <-fired:
		assert.Equal(t, "new", name)
	case <-time.After(3 * time.Second):
		t.Fatal("replacement timer did not fire")
	}
	select {
	case name := <-fired:
		t.Fatalf("replaced timer fired: %s", name)
	case <-time.After(2500 * time.Millisecond):
	}
}
