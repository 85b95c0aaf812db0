package bot

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"happylink/internal/models"
)

// StateStore keeps the conversation stage of each chat. Entries expire after
// a TTL so abandoned support prompts do not capture later messages.
type StateStore interface {
	Get(ctx context.Context, chatID int64) (models.Stage, bool, error)
	Set(ctx context.Context, chatID int64, stage models.Stage) error
	Delete(ctx context.Context, chatID int64) error
}

type stateEntry struct {
	stage   models.Stage
	expires time.Time
}

// MemoryStateStore is a process-local StateStore
type MemoryStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]stateEntry
	now     func() time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		ttl:     ttl,
		entries: make(map[int64]stateEntry),
		now:     time.Now,
	}
}

func (s *MemoryStateStore) Get(ctx context.Context, chatID int64) (models.Stage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[chatID]
	if !ok {
		return "", false, nil
	}
	if s.ttl > 0 && !s.now().Before(e.expires) {
		delete(s.entries, chatID)
		return "", false, nil
	}
	return e.stage, true, nil
}

func (s *MemoryStateStore) Set(ctx context.Context, chatID int64, stage models.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[chatID] = stateEntry{stage: stage, expires: s.now().Add(s.ttl)}
	s.sweep()
	return nil
}

func (s *MemoryStateStore) Delete(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, chatID)
	return nil
}

// sweep drops expired entries. Called with mu held.
func (s *MemoryStateStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
		}
	}
}

const redisKeyPrefix = "happylink:bot:stage:"

// RedisStateStore shares conversation state between bot restarts
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

func redisKey(chatID int64) string {
	return redisKeyPrefix + strconv.FormatInt(chatID, 10)
}

func (s *RedisStateStore) Get(ctx context.Context, chatID int64) (models.Stage, bool, error) {
	v, err := s.client.Get(ctx, redisKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return models.Stage(v), true, nil
}

func (s *RedisStateStore) Set(ctx context.Context, chatID int64, stage models.Stage) error {
	return s.client.Set(ctx, redisKey(chatID), string(stage), s.ttl).Err()
}

func (s *RedisStateStore) Delete(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, redisKey(chatID)).Err()
}
