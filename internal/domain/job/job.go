// Package job describes the timed callbacks the scheduler keeps durable.
package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownKind    = errors.New("unknown job kind")
	ErrInvalidTrigger = errors.New("invalid job trigger")
	ErrMissingPayload = errors.New("job payload missing")
)

// Kind is the closed set of callbacks the scheduler can fire.
type Kind string

const (
	KindExpireRental   Kind = "expire_rental"
	KindNotifyRental   Kind = "notify_rental"
	KindDailyDeduction Kind = "daily_deduction"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindExpireRental, KindNotifyRental, KindDailyDeduction:
		return true
	}
	return false
}

// Category separates the recurring deduction job from one-shot rental jobs.
type Category string

const (
	CategoryRental    Category = "rental"
	CategoryDeduction Category = "deduction"
)

// DeductionJobID is the id of the single recurring deduction job.
const DeductionJobID = "deduction"

func ExpireRentalID(rentalID uint) string {
	return fmt.Sprintf("expire_rental_%d", rentalID)
}

func NotifyRentalID(rentalID uint) string {
	return fmt.Sprintf("notify_rental_%d", rentalID)
}

// TriggerKind tags the Trigger union.
type TriggerKind string

const (
	TriggerAt   TriggerKind = "at"
	TriggerCron TriggerKind = "cron"
)

// Trigger is either a fixed run-at instant or a daily hour:minute.
type Trigger struct {
	Kind   TriggerKind
	RunAt  time.Time
	Hour   int
	Minute int
}

func At(t time.Time) Trigger {
	return Trigger{Kind: TriggerAt, RunAt: t.UTC().Truncate(time.Second)}
}

func Daily(hour, minute int) Trigger {
	return Trigger{Kind: TriggerCron, Hour: hour, Minute: minute}
}

func (t Trigger) IsOneShot() bool {
	return t.Kind == TriggerAt
}

func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerAt:
		if t.RunAt.IsZero() {
			return fmt.Errorf("%w: run_at is required", ErrInvalidTrigger)
		}
	case TriggerCron:
		if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
			return fmt.Errorf("%w: %02d:%02d", ErrInvalidTrigger, t.Hour, t.Minute)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidTrigger, t.Kind)
	}
	return nil
}

type triggerWire struct {
	Kind   TriggerKind `json:"kind"`
	RunAt  *time.Time  `json:"run_at,omitempty"`
	Hour   *int        `json:"hour,omitempty"`
	Minute *int        `json:"minute,omitempty"`
}

// MarshalJSON writes only the fields of the active variant.
func (t Trigger) MarshalJSON() ([]byte, error) {
	w := triggerWire{Kind: t.Kind}
	if t.IsOneShot() {
		runAt := t.RunAt.UTC()
		w.RunAt = &runAt
	} else {
		hour, minute := t.Hour, t.Minute
		w.Hour, w.Minute = &hour, &minute
	}
	return json.Marshal(w)
}

func (t *Trigger) UnmarshalJSON(data []byte) error {
	var w triggerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Trigger{Kind: w.Kind}
	if w.RunAt != nil {
		t.RunAt = w.RunAt.UTC()
	}
	if w.Hour != nil {
		t.Hour = *w.Hour
	}
	if w.Minute != nil {
		t.Minute = *w.Minute
	}
	return nil
}

func (t Trigger) String() string {
	if t.IsOneShot() {
		return "at " + t.RunAt.Format(time.RFC3339)
	}
	return fmt.Sprintf("daily %02d:%02d", t.Hour, t.Minute)
}

// Job is a typed callback descriptor. RentalID is the payload of the rental kinds.
type Job struct {
	ID       string
	Kind     Kind
	Trigger  Trigger
	RentalID uint
	Category Category
}

func ExpireRental(rentalID uint, at time.Time) Job {
	return Job{ID: ExpireRentalID(rentalID), Kind: KindExpireRental, Trigger: At(at), RentalID: rentalID, Category: CategoryRental}
}

func NotifyRental(rentalID uint, at time.Time) Job {
	return Job{ID: NotifyRentalID(rentalID), Kind: KindNotifyRental, Trigger: At(at), RentalID: rentalID, Category: CategoryRental}
}

func DailyDeduction(hour, minute int) Job {
	return Job{ID: DeductionJobID, Kind: KindDailyDeduction, Trigger: Daily(hour, minute), Category: CategoryDeduction}
}

// IsRecurring reports whether reload must keep the job regardless of elapsed time.
func (j Job) IsRecurring() bool {
	return j.Category == CategoryDeduction || !j.Trigger.IsOneShot()
}

func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if !j.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, j.Kind)
	}
	if (j.Kind == KindExpireRental || j.Kind == KindNotifyRental) && j.RentalID == 0 {
		return fmt.Errorf("%w: %s needs a rental id", ErrMissingPayload, j.Kind)
	}
	return j.Trigger.Validate()
}
