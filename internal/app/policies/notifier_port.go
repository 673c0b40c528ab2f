package policies

import (
	"context"
	"time"
)

type NoticeKind string

const (
	NoticeBookingConfirmation NoticeKind = "booking_confirmation"
	NoticeCancellation        NoticeKind = "cancellation_confirmation"
)

// BookingNotice is the payload for guest emails.
type BookingNotice struct {
	Kind       NoticeKind `json:"kind"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	BookingID  string     `json:"bookingId"`
	RoomName   string     `json:"roomName"`
	CheckIn    time.Time  `json:"checkInDate"`
	CheckOut   time.Time  `json:"checkOutDate"`
	TotalPrice string     `json:"totalPrice"`
	Currency   string     `json:"currency"`
}

// Notifier failures never abort a booking; callers log and move on.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, notice BookingNotice) error
	SendCancellationConfirmation(ctx context.Context, notice BookingNotice) error
}
