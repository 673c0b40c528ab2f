package memory

import (
	"context"
	"sync"

	appoutbox "hotelbooking/internal/app/outbox"
	"hotelbooking/internal/app/uow"
)

// Relay delivers one committed record, typically to a broker.
type Relay interface {
	Send(ctx context.Context, record appoutbox.EventRecord) error
}

// Outbox keeps committed records until Flush hands them to Relay. Records
// added inside a memory unit become visible only when that unit commits.
type Outbox struct {
	Relay Relay

	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewOutbox(relay Relay) *Outbox {
	return &Outbox{Relay: relay}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if mu, ok := unit.(*Unit); ok {
			return mu.stageRecord(record)
		}
	}
	o.append(record)
	return nil
}

// Flush sends pending records in order. A failed record and everything after
// it stay queued for the next flush.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()
	if o.Relay == nil {
		return nil
	}
	for i, rec := range pending {
		if err := o.Relay.Send(ctx, rec); err != nil {
			o.mu.Lock()
			o.records = append(append([]appoutbox.EventRecord(nil), pending[i:]...), o.records...)
			o.mu.Unlock()
			return err
		}
	}
	return nil
}

// Pending returns a copy of the queued records.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.records))
	copy(out, o.records)
	return out
}

func (o *Outbox) append(records ...appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
