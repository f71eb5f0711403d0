package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"payments-register/internal/domain"
	"payments-register/internal/service"
)

const DefaultTTL = 8 * time.Hour

const keyPrefix = "session:"

// MemoryStore keeps sessions in process. Expired entries are dropped on read.
type MemoryStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	items map[string]memoryEntry
}

type memoryEntry struct {
	state     domain.SessionState
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, items: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.items, id)
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return e.state, nil
}

func (s *MemoryStore) Save(ctx context.Context, state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[state.ID] = memoryEntry{state: state, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// KV is the subset of the Redis client the store needs.
type KV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
}

// RedisStore keeps sessions as JSON with a sliding TTL.
type RedisStore struct {
	kv  KV
	ttl time.Duration
}

func NewRedisStore(kv KV, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{kv: kv, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (domain.SessionState, error) {
	raw, found, err := s.kv.Get(ctx, keyPrefix+id)
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if !found {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}

	var state domain.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state domain.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	return s.kv.Set(ctx, keyPrefix+state.ID, raw, s.ttl)
}

var (
	_ service.SessionStore = (*MemoryStore)(nil)
	_ service.SessionStore = (*RedisStore)(nil)
)
