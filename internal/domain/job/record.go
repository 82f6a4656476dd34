package job

import (
	"context"
	"encoding/json"
	"fmt"
)

// Record is the persisted form of a Job.
type Record struct {
	JobID        string   `json:"job_id"`
	CallbackName string   `json:"callback_name"`
	Trigger      Trigger  `json:"trigger"`
	Args         []uint64 `json:"args"`
	Category     string   `json:"category"`
}

func (j Job) ToRecord() Record {
	rec := Record{
		JobID:        j.ID,
		CallbackName: string(j.Kind),
		Trigger:      j.Trigger,
		Args:         []uint64{},
		Category:     string(j.Category),
	}
	if j.RentalID != 0 {
		rec.Args = append(rec.Args, uint64(j.RentalID))
	}
	return rec
}

// FromRecord decodes a persisted record, rejecting unknown callbacks.
func FromRecord(rec Record) (Job, error) {
	j := Job{
		ID:       rec.JobID,
		Kind:     Kind(rec.CallbackName),
		Trigger:  rec.Trigger,
		Category: Category(rec.Category),
	}
	if !j.Kind.IsValid() {
		return Job{}, fmt.Errorf("%w: %q", ErrUnknownKind, rec.CallbackName)
	}
	if j.Kind != KindDailyDeduction {
		if len(rec.Args) != 1 {
			return Job{}, fmt.Errorf("%w: %s expects one argument, got %d", ErrMissingPayload, j.Kind, len(rec.Args))
		}
		j.RentalID = uint(rec.Args[0])
	}
	if j.Category == "" {
		j.Category = CategoryRental
		if j.Kind == KindDailyDeduction {
			j.Category = CategoryDeduction
		}
	}
	if err := j.Validate(); err != nil {
		return Job{}, err
	}
	return j, nil
}

func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func UnmarshalRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode job record: %w", err)
	}
	return rec, nil
}

// Store is the durable job ledger, keyed by job id.
type Store interface {
	// Save inserts or replaces the record with the same job id.
	Save(ctx context.Context, rec Record) error
	// Delete removes the record; a missing id is not an error.
	Delete(ctx context.Context, jobID string) error
	Get(ctx context.Context, jobID string) (*Record, error)
	LoadAll(ctx context.Context) ([]Record, error)
}
