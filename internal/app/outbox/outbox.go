// Package outbox turns room and booking events into records that commit in
// the same unit of work as the state change, for later relay to the broker.
package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotelbooking/internal/domain/shared/events"
)

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox stores records inside the caller's unit of work; Flush runs after commit.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event struct as the payload. NewID defaults
// to a random UUID.
type JSONEventEncoder struct {
	NewID func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	newID := e.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	name := ev.EventName()
	return EventRecord{
		ID:         newID(),
		Name:       name,
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers: map[string]string{
			"aggregate-type": aggregateType(name),
			"event-name":     name,
		},
	}, nil
}

// aggregateType is "booking" for "booking.created".
func aggregateType(name string) string {
	kind, _, _ := strings.Cut(name, ".")
	return kind
}

// EventSource is an aggregate embedding events.EventRecorder.
type EventSource interface {
	Drain() []events.DomainEvent
}

// RecordAggregates drains every source into box, preserving the order events
// were recorded in. A nil box still drains the sources.
func RecordAggregates(ctx context.Context, box Outbox, encoder EventEncoder, sources ...EventSource) error {
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, ev := range src.Drain() {
			if box == nil {
				continue
			}
			rec, err := encoder.Encode(ev)
			if err != nil {
				return err
			}
			if err := box.Add(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}
