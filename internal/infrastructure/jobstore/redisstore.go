// Package jobstore persists scheduled job records so the scheduler can
// rebuild its timers after a restart.
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/leasebot/internal/domain/job"
	"github.com/orris-inc/leasebot/internal/shared/constants"
	"github.com/orris-inc/leasebot/internal/shared/logger"
)

// RedisStore keeps every record as one field of a single hash, keyed by job id.
type RedisStore struct {
	client *redis.Client
	key    string
	logger logger.Interface
}

func NewRedisStore(client *redis.Client, key string, log logger.Interface) *RedisStore {
	if key == "" {
		key = constants.DefaultJobKeyPrefix
	}
	return &RedisStore{client: client, key: key, logger: log}
}

func (s *RedisStore) Save(ctx context.Context, rec job.Record) error {
	if rec.JobID == "" {
		return errors.New("job id cannot be empty")
	}
	data, err := rec.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, rec.JobID, data).Err(); err != nil {
		return fmt.Errorf("failed to store job in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, jobID string) error {
	if err := s.client.HDel(ctx, s.key, jobID).Err(); err != nil {
		return fmt.Errorf("failed to delete job from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*job.Record, error) {
	data, err := s.client.HGet(ctx, s.key, jobID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job from redis: %w", err)
	}
	rec, err := job.UnmarshalRecord(data)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LoadAll returns every decodable record ordered by job id. Undecodable
// fields are logged and skipped.
func (s *RedisStore) LoadAll(ctx context.Context) ([]job.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs from redis: %w", err)
	}

	records := make([]job.Record, 0, len(fields))
	for id, raw := range fields {
		rec, err := job.UnmarshalRecord([]byte(raw))
		if err != nil {
			s.logger.Warnw("skipping undecodable job record", "job_id", id, "error", err)
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].JobID < records[j].JobID })
	return records, nil
}
