package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const defaultOffsetKey = "leasebot:telegram:offset"

// PollingOffsetStore keeps the next Telegram update offset so a restarted
// bot does not replay commands it already handled.
type PollingOffsetStore struct {
	client *redis.Client
	key    string
}

func NewPollingOffsetStore(client *redis.Client, key string) *PollingOffsetStore {
	if key == "" {
		key = defaultOffsetKey
	}
	return &PollingOffsetStore{client: client, key: key}
}

// GetOffset returns the saved offset, or 0 when none was saved.
func (s *PollingOffsetStore) GetOffset(ctx context.Context) (int, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get polling offset: %w", err)
	}

	offset, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse polling offset %q: %w", val, err)
	}
	return offset, nil
}

func (s *PollingOffsetStore) SaveOffset(ctx context.Context, offset int) error {
	if err := s.client.Set(ctx, s.key, strconv.Itoa(offset), 0).Err(); err != nil {
		return fmt.Errorf("failed to save polling offset: %w", err)
	}
	return nil
}
