package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbooking/internal/domain/pricing"
	"hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
	"hotelbooking/internal/domain/shared/events"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidGuests     = errors.New("booking: guests count must be a positive integer")
	ErrInvalidChildren   = errors.New("booking: children count cannot be negative")
	ErrInvalidRoomCount  = errors.New("booking: number of rooms must be at least 1")
	ErrUserRequired      = errors.New("booking: user id required")
	ErrRoomRequired      = errors.New("booking: room id required")
	ErrAlreadyCancelled  = errors.New("booking: booking is already cancelled")
	ErrStayCompleted     = errors.New("booking: stay has already been completed")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrInvalidStatus     = errors.New("booking: status must be one of Pending, Confirmed, Cancelled")
)

type ID string

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
)

// transitions lists the allowed targets per status. Cancelled is terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
	StatusCancelled: nil,
}

func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for status := range transitions {
		if strings.EqualFold(string(status), raw) {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionError names the rejected edge of the state machine.
type TransitionError struct {
	From Status
	To   Status
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("booking: cannot change status from %s to %s", e.From, e.To)
}

func (e TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type Booking struct {
	ID          ID
	UserID      string
	RoomID      room.ID
	Range       daterange.DateRange
	Guests      int
	Children    int
	NoOfRooms   int
	Price       pricing.Breakdown
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListByRoom(ctx context.Context, roomID room.ID) ([]*Booking, error)
	// Overlapping returns non-cancelled bookings with ci < qe AND co > qs.
	Overlapping(ctx context.Context, roomID room.ID, dr daterange.DateRange) ([]*Booking, error)
}

type CreateParams struct {
	ID        ID
	UserID    string
	RoomID    room.ID
	Range     daterange.DateRange
	Guests    int
	Children  int
	NoOfRooms int
	Price     pricing.Breakdown
	CreatedAt time.Time
}

// Stay is the mutable part of a booking.
type Stay struct {
	RoomID    room.ID
	Range     daterange.DateRange
	Guests    int
	Children  int
	NoOfRooms int
	Price     pricing.Breakdown
}

func (s Stay) validate() error {
	if strings.TrimSpace(string(s.RoomID)) == "" {
		return ErrRoomRequired
	}
	if err := s.Range.Validate(); err != nil {
		return err
	}
	return ValidateCounts(s.Guests, s.Children, s.NoOfRooms)
}

// ValidateCounts checks guest, child and unit counts.
func ValidateCounts(guests, children, noOfRooms int) error {
	if guests < 1 {
		return ErrInvalidGuests
	}
	if children < 0 {
		return ErrInvalidChildren
	}
	if noOfRooms < 1 {
		return ErrInvalidRoomCount
	}
	return nil
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	stay := Stay{
		RoomID:    params.RoomID,
		Range:     params.Range,
		Guests:    params.Guests,
		Children:  params.Children,
		NoOfRooms: params.NoOfRooms,
		Price:     params.Price,
	}
	if err := stay.validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	b := &Booking{
		ID:        params.ID,
		UserID:    params.UserID,
		RoomID:    params.RoomID,
		Range:     params.Range,
		Guests:    params.Guests,
		Children:  params.Children,
		NoOfRooms: params.NoOfRooms,
		Price:     params.Price,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingCreated{
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		UserID:     b.UserID,
		Range:      b.Range,
		Guests:     b.Guests,
		NoOfRooms:  b.NoOfRooms,
		TotalPrice: b.Price.TotalPrice,
		Currency:   b.Price.Currency,
		At:         now,
	})
	return b, nil
}

// Active bookings hold inventory.
func (b *Booking) Active() bool {
	return b.Status != StatusCancelled
}

func (b *Booking) Stay() Stay {
	return Stay{
		RoomID:    b.RoomID,
		Range:     b.Range,
		Guests:    b.Guests,
		Children:  b.Children,
		NoOfRooms: b.NoOfRooms,
		Price:     b.Price,
	}
}

// Reschedule replaces the stay parameters of a non-cancelled booking.
func (b *Booking) Reschedule(next Stay, now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if err := next.validate(); err != nil {
		return err
	}
	previous := b.RoomID
	b.RoomID = next.RoomID
	b.Range = next.Range
	b.Guests = next.Guests
	b.Children = next.Children
	b.NoOfRooms = next.NoOfRooms
	b.Price = next.Price
	b.UpdatedAt = now.UTC()
	b.Record(BookingUpdated{
		BookingID:    b.ID,
		PreviousRoom: previous,
		RoomID:       b.RoomID,
		Range:        b.Range,
		Guests:       b.Guests,
		NoOfRooms:    b.NoOfRooms,
		TotalPrice:   b.Price.TotalPrice,
		At:           b.UpdatedAt,
	})
	return nil
}

// Confirm is a no-op for an already confirmed booking.
func (b *Booking) Confirm(reference string, now time.Time) error {
	if b.Status == StatusConfirmed {
		return nil
	}
	if !CanTransition(b.Status, StatusConfirmed) {
		return TransitionError{From: b.Status, To: StatusConfirmed}
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, RoomID: b.RoomID, Reference: reference, At: b.UpdatedAt})
	return nil
}

// Cancel is allowed once, and only while checkOut is today or later.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if b.Range.CheckOut.Before(daterange.StartOfDay(now)) {
		return ErrStayCompleted
	}
	at := now.UTC()
	b.Status = StatusCancelled
	b.UpdatedAt = at
	b.CancelledAt = &at
	b.Record(BookingCancelled{BookingID: b.ID, RoomID: b.RoomID, NoOfRooms: b.NoOfRooms, Reason: reason, At: at})
	return nil
}

// SetStatus applies an admin status change through the transition table.
func (b *Booking) SetStatus(target Status, reason string, now time.Time) error {
	if _, ok := transitions[target]; !ok {
		return ErrInvalidStatus
	}
	if target == b.Status {
		if target == StatusCancelled {
			return ErrAlreadyCancelled
		}
		return nil
	}
	if !CanTransition(b.Status, target) {
		return TransitionError{From: b.Status, To: target}
	}
	switch target {
	case StatusConfirmed:
		return b.Confirm(reason, now)
	case StatusCancelled:
		return b.Cancel(reason, now)
	default:
		return TransitionError{From: b.Status, To: target}
	}
}
