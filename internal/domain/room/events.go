package room

import "time"

type InventoryReason string

const (
	ReasonReserve    InventoryReason = "reserve"
	ReasonRelease    InventoryReason = "release"
	ReasonReschedule InventoryReason = "reschedule"
	ReasonReconcile  InventoryReason = "reconcile"
)

type RoomCreated struct {
	RoomID     ID
	Name       Category
	TotalSlots int
	At         time.Time
}

func (e RoomCreated) EventName() string     { return "room.created" }
func (e RoomCreated) AggregateID() string   { return string(e.RoomID) }
func (e RoomCreated) OccurredAt() time.Time { return e.At }

// InventoryChanged is recorded for every counter mutation.
type InventoryChanged struct {
	RoomID    ID
	Reference string
	Delta     int
	Booked    int
	Available int
	Reason    InventoryReason
	At        time.Time
}

func (e InventoryChanged) EventName() string     { return "room.inventory_changed" }
func (e InventoryChanged) AggregateID() string   { return string(e.RoomID) }
func (e InventoryChanged) OccurredAt() time.Time { return e.At }

type RoomRated struct {
	RoomID ID
	UserID string
	Score  int
	At     time.Time
}

func (e RoomRated) EventName() string     { return "room.rated" }
func (e RoomRated) AggregateID() string   { return string(e.RoomID) }
func (e RoomRated) OccurredAt() time.Time { return e.At }
