package booking

import (
	"time"

	"hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
)

type BookingCreated struct {
	BookingID  ID
	RoomID     room.ID
	UserID     string
	Range      daterange.DateRange
	Guests     int
	NoOfRooms  int
	TotalPrice float64
	Currency   string
	At         time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingUpdated struct {
	BookingID    ID
	PreviousRoom room.ID
	RoomID       room.ID
	Range        daterange.DateRange
	Guests       int
	NoOfRooms    int
	TotalPrice   float64
	At           time.Time
}

func (e BookingUpdated) EventName() string     { return "booking.updated" }
func (e BookingUpdated) AggregateID() string   { return string(e.BookingID) }
func (e BookingUpdated) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID ID
	RoomID    room.ID
	Reference string
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID ID
	RoomID    room.ID
	NoOfRooms int
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }
