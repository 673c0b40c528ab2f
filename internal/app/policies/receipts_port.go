package policies

import (
	"context"
	"time"

	"hotelbooking/internal/domain/pricing"
)

// Receipt is the audit copy of a booking and its persisted price breakdown.
type Receipt struct {
	BookingID string            `json:"bookingId"`
	UserID    string            `json:"userId"`
	RoomID    string            `json:"roomId"`
	RoomName  string            `json:"roomName"`
	CheckIn   time.Time         `json:"checkInDate"`
	CheckOut  time.Time         `json:"checkOutDate"`
	Guests    int               `json:"noofguests"`
	Children  int               `json:"noofchildren"`
	NoOfRooms int               `json:"noOfRooms"`
	Status    string            `json:"status"`
	Price     pricing.Breakdown `json:"price"`
	IssuedAt  time.Time         `json:"issuedAt"`
}

type ReceiptArchive interface {
	Store(ctx context.Context, receipt Receipt) (location string, err error)
}
