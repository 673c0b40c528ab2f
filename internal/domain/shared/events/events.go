// Package events holds the facts room and booking aggregates record while a
// command runs. The outbox drains them in the same unit of work.
package events

import "time"

type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates. Its zero value is ready to use.
type EventRecorder struct {
	pending []DomainEvent
}

// Record queues evs in order, skipping nils.
func (r *EventRecorder) Record(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			r.pending = append(r.pending, ev)
		}
	}
}

// PendingEvents returns a copy; callers may not mutate the queue through it.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return append([]DomainEvent(nil), r.pending...)
}

func (r *EventRecorder) ClearEvents() { r.pending = nil }

func (r *EventRecorder) Drain() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
