package memory

import (
	"context"
	"sync"

	"hotelbooking/internal/app/policies"
)

// Ledger is the in-process inventory ledger used when no Scylla cluster is configured.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string][]policies.LedgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string][]policies.LedgerEntry)}
}

func (l *Ledger) Append(ctx context.Context, entries ...policies.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range entries {
		l.entries[e.RoomID] = append(l.entries[e.RoomID], e)
	}
	return nil
}

// List returns the newest entries first.
func (l *Ledger) List(ctx context.Context, roomID string, limit int) ([]policies.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := l.entries[roomID]
	out := make([]policies.LedgerEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}

var _ policies.Ledger = (*Ledger)(nil)
