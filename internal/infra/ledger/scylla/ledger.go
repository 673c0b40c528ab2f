package scylla

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gocql/gocql"

	"hotelbooking/internal/app/policies"
)

// Ledger appends counter deltas to inventory_ledger, one partition per room,
// newest first.
type Ledger struct {
	session *gocql.Session
	logger  *slog.Logger
}

func NewLedger(session *gocql.Session, logger *slog.Logger) *Ledger {
	return &Ledger{session: session, logger: logger}
}

func (l *Ledger) Append(ctx context.Context, entries ...policies.LedgerEntry) error {
	if l.session == nil {
		return errors.New("scylla session not initialized")
	}
	for _, e := range entries {
		at := e.At
		if at.IsZero() {
			at = time.Now()
		}
		err := l.session.
			Query(`INSERT INTO inventory_ledger (room_id, entry_id, reference, delta, booked_slots, available_slots, reason, at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				e.RoomID, gocql.UUIDFromTime(at), e.Reference, e.Delta, e.Booked, e.Available, e.Reason, at.UTC()).
			WithContext(ctx).
			Exec()
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) List(ctx context.Context, roomID string, limit int) ([]policies.LedgerEntry, error) {
	if l.session == nil {
		return nil, errors.New("scylla session not initialized")
	}
	if limit <= 0 {
		limit = 100
	}
	iter := l.session.
		Query(`SELECT reference, delta, booked_slots, available_slots, reason, at FROM inventory_ledger WHERE room_id = ? LIMIT ?`, roomID, limit).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()

	var (
		out       []policies.LedgerEntry
		reference string
		delta     int
		booked    int
		available int
		reason    string
		at        time.Time
	)
	for iter.Scan(&reference, &delta, &booked, &available, &reason, &at) {
		out = append(out, policies.LedgerEntry{
			RoomID:    roomID,
			Reference: reference,
			Delta:     delta,
			Booked:    booked,
			Available: available,
			Reason:    reason,
			At:        at.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) Close() {
	if l.session != nil {
		l.session.Close()
	}
}

var _ policies.Ledger = (*Ledger)(nil)
