package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/infrastructure/persistence/models"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// DBStore keeps job records in the scheduled_jobs table.
type DBStore struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewDBStore(db *gorm.DB, log logger.Interface) *DBStore {
	return &DBStore{db: db, logger: log}
}

func (s *DBStore) Save(ctx context.Context, rec job.Record) error {
	if rec.JobID == "" {
		return errors.New("job id cannot be empty")
	}
	trigger, err := json.Marshal(rec.Trigger)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger: %w", err)
	}
	args, err := json.Marshal(rec.Args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}

	model := &models.ScheduledJobModel{
		JobID:        rec.JobID,
		CallbackName: rec.CallbackName,
		Trigger:      trigger,
		Args:         args,
		Category:     rec.Category,
	}
	if rec.Trigger.IsOneShot() {
		runAt := rec.Trigger.RunAt.Unix()
		model.RunAt = &runAt
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"callback_name", "trigger", "args", "category", "run_at", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		s.logger.Errorw("failed to save scheduled job", "job_id", rec.JobID, "error", err)
		return fmt.Errorf("failed to save scheduled job: %w", err)
	}
	return nil
}

func (s *DBStore) Delete(ctx context.Context, jobID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.ScheduledJobModel{}, "job_id = ?", jobID).Error; err != nil {
		s.logger.Errorw("failed to delete scheduled job", "job_id", jobID, "error", err)
		return fmt.Errorf("failed to delete scheduled job: %w", err)
	}
	return nil
}

func (s *DBStore) Get(ctx context.Context, jobID string) (*job.Record, error) {
	var model models.ScheduledJobModel
	if err := s.db.WithContext(ctx).Where("job_id = ?", jobID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scheduled job: %w", err)
	}
	rec, err := toRecord(&model)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *DBStore) LoadAll(ctx context.Context) ([]job.Record, error) {
	var ms []*models.ScheduledJobModel
	if err := s.db.WithContext(ctx).Order("job_id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("failed to load scheduled jobs: %w", err)
	}
	records := make([]job.Record, 0, len(ms))
	for _, m := range ms {
		rec, err := toRecord(m)
		if err != nil {
			s.logger.Warnw("skipping undecodable job record", "job_id", m.JobID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRecord(m *models.ScheduledJobModel) (job.Record, error) {
	rec := job.Record{
		JobID:        m.JobID,
		CallbackName: m.CallbackName,
		Category:     m.Category,
	}
	if err := json.Unmarshal(m.Trigger, &rec.Trigger); err != nil {
		return job.Record{}, fmt.Errorf("failed to decode trigger for %s: %w", m.JobID, err)
	}
	if len(m.Args) > 0 {
		if err := json.Unmarshal(m.Args, &rec.Args); err != nil {
			return job.Record{}, fmt.Errorf("failed to decode args for %s: %w", m.JobID, err)
		}
	}
	return rec, nil
}
