package policies

import (
	"context"
	"time"
)

// LedgerEntry is one change of a room's booked counter.
type LedgerEntry struct {
	RoomID    string    `json:"roomId"`
	Reference string    `json:"reference"`
	Delta     int       `json:"delta"`
	Booked    int       `json:"bookedSlots"`
	Available int       `json:"availableSlots"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

type Ledger interface {
	Append(ctx context.Context, entries ...LedgerEntry) error
	List(ctx context.Context, roomID string, limit int) ([]LedgerEntry, error)
}
