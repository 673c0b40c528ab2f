package memory

import (
	"context"
	"sync"
	"time"

	"hotelbooking/internal/app/middleware"
)

// IdempotencyStore keeps replayable booking results in memory. Records older
// than TTL read as missing and are swept on the next write.
type IdempotencyStore struct {
	TTL time.Duration

	mu    sync.Mutex
	items map[string]middleware.IdempotencyRecord
	now   func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{TTL: ttl, items: make(map[string]middleware.IdempotencyRecord), now: time.Now}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	if !ok || s.expired(rec) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

// Save keeps the first record stored under a key while it is live.
func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, existing := range s.items {
		if s.expired(existing) {
			delete(s.items, k)
		}
	}
	if _, ok := s.items[rec.Key]; !ok {
		s.items[rec.Key] = rec
	}
	return nil
}

func (s *IdempotencyStore) expired(rec middleware.IdempotencyRecord) bool {
	return s.TTL > 0 && s.now().Sub(rec.OccurredAt) >= s.TTL
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
