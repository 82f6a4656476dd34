package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/domain/rental"
	"github.com/orris-inc/leasebot/internal/domain/shared"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

type fakeTimer struct {
	job  job.Job
	task func()
}

// fakeEngine never fires on its own; tests call fire.
type fakeEngine struct {
	mu      sync.Mutex
	timers  map[uuid.UUID]fakeTimer
	started bool
	err     error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{timers: make(map[uuid.UUID]fakeTimer)}
}

func (f *fakeEngine) Schedule(j job.Job, task func()) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id := uuid.New()
	f.timers[id] = fakeTimer{job: j, task: task}
	return id, nil
}

func (f *fakeEngine) Remove(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.timers, id)
	return nil
}

func (f *fakeEngine) Start() {
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
}

func (f *fakeEngine) Shutdown() error {
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
	return nil
}

// task returns the pending task for jobID without firing it.
func (f *fakeEngine) task(jobID string) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.timers {
		if t.job.ID == jobID {
			return t.task
		}
	}
	return nil
}

// fire runs every pending timer of jobID. One-shot timers are consumed.
func (f *fakeEngine) fire(jobID string) int {
	f.mu.Lock()
	var tasks []func()
	for id, t := range f.timers {
		if t.job.ID != jobID {
			continue
		}
		tasks = append(tasks, t.task)
		if t.job.Trigger.IsOneShot() {
			delete(f.timers, id)
		}
	}
	f.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

func (f *fakeEngine) pending() []job.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]job.Job, 0, len(f.timers))
	for _, t := range f.timers {
		out = append(out, t.job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memStore struct {
	mu      sync.Mutex
	records map[string]job.Record
	saves   int
	saveErr error
}

func newMemStore(recs ...job.Record) *memStore {
	s := &memStore{records: make(map[string]job.Record)}
	for _, r := range recs {
		s.records[r.JobID] = r
	}
	return s
}

func (s *memStore) Save(_ context.Context, rec job.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[rec.JobID] = rec
	s.saves++
	return nil
}

func (s *memStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, jobID)
	return nil
}

func (s *memStore) Get(_ context.Context, jobID string) (*job.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[jobID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *memStore) LoadAll(context.Context) ([]job.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]job.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobID < out[j].JobID })
	return out, nil
}

func (s *memStore) ids() []string {
	recs, _ := s.LoadAll(context.Background())
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.JobID)
	}
	return ids
}

type recordingHandler struct {
	mu         sync.Mutex
	expired    []uint
	notified   []uint
	deductions int
	err        error
	panicOn    job.Kind
}

func (h *recordingHandler) HandleExpireRental(_ context.Context, rentalID uint) error {
	h.mu.Lock()
	h.expired = append(h.expired, rentalID)
	h.mu.Unlock()
	if h.panicOn == job.KindExpireRental {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) HandleNotifyRental(_ context.Context, rentalID uint) error {
	h.mu.Lock()
	h.notified = append(h.notified, rentalID)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) HandleDailyDeduction(context.Context) error {
	h.mu.Lock()
	h.deductions++
	h.mu.Unlock()
	return h.err
}

type staticRentals struct {
	rentals []*rental.Rental
	err     error
}

func (s staticRentals) List(context.Context, rental.Filter) ([]*rental.Rental, error) {
	return s.rentals, s.err
}

var errHandler = errors.New("handler failed")

func newTestScheduler(store job.Store, rentals RentalLister, now time.Time) (*JobScheduler, *fakeEngine, *recordingHandler) {
	engine := newFakeEngine()
	s := NewJobScheduler(engine, store, rentals, Options{
		DeductionHour:   6,
		DeductionMinute: 0,
		NotifyBefore:    24 * time.Hour,
		NotifyTolerance: 12 * time.Hour,
	}, logger.NewNopLogger())
	s.now = func() time.Time { return now }
	h := &recordingHandler{}
	s.SetHandler(h)
	return s, engine, h
}

func testRental(id uint, end time.Time, notified bool) *rental.Rental {
	r, err := rental.Reconstruct(rental.ReconstructParams{
		ID:                     id,
		UserID:                 id,
		StartTime:              end.Add(-30 * 24 * time.Hour).Unix(),
		EndTime:                end.Unix(),
		PlanDuration:           30 * 86400,
		Amount:                 decimal.Zero,
		Currency:               shared.CurrencyINR,
		PriceRate:              decimal.NewFromInt(40),
		IsActive:               true,
		SentExpiryNotification: notified,
	})
	if err != nil {
		panic(err)
	}
	return r
}

func nopLogger() logger.Interface {
	return logger.NewNopLogger()
}
