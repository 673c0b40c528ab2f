package dto

import (
	"time"

	"hotelbooking/internal/app/policies"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
)

type RoomView struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Currency        string           `json:"currency"`
	Price           float64          `json:"price"`
	DiscountedPrice float64          `json:"discountedPrice"`
	WeekendPrice    float64          `json:"weekendPrice,omitempty"`
	Taxes           pricing.TaxRates `json:"taxes"`
	MaxOccupancy    int              `json:"maxOccupancy"`
	TotalSlots      int              `json:"totalSlots"`
	BookedSlots     int              `json:"bookedSlots"`
	AvailableSlots  int              `json:"availableSlots"`
	IsAvailable     bool             `json:"isAvailable"`
	AverageRating   float64          `json:"averageRating"`
	RatingsCount    int              `json:"ratingsCount"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type RoomCollection struct {
	Items []RoomView `json:"items"`
}

type RatingView struct {
	RoomID        string  `json:"roomId"`
	AverageRating float64 `json:"averageRating"`
	Count         int     `json:"count"`
}

type LedgerView struct {
	RoomID string                 `json:"roomId"`
	Items  []policies.LedgerEntry `json:"items"`
}

func MapRoom(r *domainroom.Room) RoomView {
	return RoomView{
		ID:              string(r.ID),
		Name:            string(r.Name),
		Description:     r.Description,
		Currency:        r.Currency,
		Price:           r.Price,
		DiscountedPrice: r.DiscountedPrice,
		WeekendPrice:    r.WeekendPrice,
		Taxes:           r.Taxes,
		MaxOccupancy:    r.MaxOccupancy,
		TotalSlots:      r.TotalSlots,
		BookedSlots:     r.BookedSlots,
		AvailableSlots:  r.AvailableSlots,
		IsAvailable:     r.IsAvailable,
		AverageRating:   r.AverageRating(),
		RatingsCount:    len(r.Ratings),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func MapRating(r *domainroom.Room) RatingView {
	return RatingView{RoomID: string(r.ID), AverageRating: r.AverageRating(), Count: len(r.Ratings)}
}
