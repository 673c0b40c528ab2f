package locks

import (
	"context"
	"sort"
	"sync"
)

// Keyed serializes work per key. Keys are acquired in sorted order so
// callers holding several keys cannot deadlock each other.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Acquire blocks until every key is held or ctx is done. The release func is idempotent.
func (k *Keyed) Acquire(ctx context.Context, keys ...string) (func(), error) {
	ordered := normalize(keys)
	held := make([]string, 0, len(ordered))
	for _, key := range ordered {
		e := k.ref(key)
		select {
		case e.sem <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			k.unref(key)
			k.releaseAll(held)
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() {
		once.Do(func() { k.releaseAll(held) })
	}, nil
}

// Held reports how many keys currently have holders or waiters.
func (k *Keyed) Held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *Keyed) ref(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) unref(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(k.entries, key)
	}
}

func (k *Keyed) releaseAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		k.mu.Lock()
		e := k.entries[keys[i]]
		k.mu.Unlock()
		if e != nil {
			<-e.sem
		}
		k.unref(keys[i])
	}
}

func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// RoomKey and BookingKey namespace lock keys.
func RoomKey(id string) string    { return "room:" + id }
func BookingKey(id string) string { return "booking:" + id }
