package dto

import (
	"time"

	domainbooking "hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/pricing"
	"hotelbooking/internal/domain/shared/money"
)

type BookingView struct {
	ID           string             `json:"id"`
	UserID       string             `json:"userId"`
	RoomID       string             `json:"roomId"`
	CheckIn      time.Time          `json:"checkInDate"`
	CheckOut     time.Time          `json:"checkOutDate"`
	Nights       int                `json:"nights"`
	Guests       int                `json:"noofguests"`
	Children     int                `json:"noofchildren"`
	NoOfRooms    int                `json:"noOfRooms"`
	Status       string             `json:"status"`
	NightlyRate  float64            `json:"nightlyRate"`
	BasePrice    float64            `json:"basePrice"`
	Taxes        pricing.TaxAmounts `json:"taxes"`
	TotalTax     float64            `json:"totalTax"`
	TotalPrice   float64            `json:"totalPrice"`
	Currency     string             `json:"currency"`
	DisplayTotal string             `json:"displayTotal"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	CancelledAt  *time.Time         `json:"cancelledAt,omitempty"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	return BookingView{
		ID:           string(b.ID),
		UserID:       b.UserID,
		RoomID:       string(b.RoomID),
		CheckIn:      b.Range.CheckIn,
		CheckOut:     b.Range.CheckOut,
		Nights:       b.Range.Nights(),
		Guests:       b.Guests,
		Children:     b.Children,
		NoOfRooms:    b.NoOfRooms,
		Status:       string(b.Status),
		NightlyRate:  b.Price.NightlyRate,
		BasePrice:    b.Price.BasePrice,
		Taxes:        b.Price.Taxes,
		TotalTax:     b.Price.TotalTax,
		TotalPrice:   b.Price.TotalPrice,
		Currency:     b.Price.Currency,
		DisplayTotal: money.Fixed(b.Price.TotalPrice),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
		CancelledAt:  b.CancelledAt,
	}
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]BookingView, 0, len(items))}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}
