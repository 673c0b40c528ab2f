package booking

import (
	"context"
	"fmt"

	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/inventory"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
)

// AdmissionRequest is one proposed stay. Exclude names the booking being
// modified so its own reservation does not count against it.
type AdmissionRequest struct {
	RoomID    domainroom.ID
	Range     daterange.DateRange
	Guests    int
	Children  int
	NoOfRooms int
	Exclude   domainbooking.ID
}

// Admit validates the request and checks every night of the stay against the
// room's inventory. It returns the loaded room for the caller to mutate.
func Admit(ctx context.Context, unit uow.UnitOfWork, req AdmissionRequest) (*domainroom.Room, error) {
	if err := req.Range.Validate(); err != nil {
		return nil, err
	}
	if err := domainbooking.ValidateCounts(req.Guests, req.Children, req.NoOfRooms); err != nil {
		return nil, err
	}
	room, err := unit.Rooms().ByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if err := room.CheckOccupancy(req.Guests, req.NoOfRooms); err != nil {
		return nil, err
	}
	overlapping, err := unit.Bookings().Overlapping(ctx, room.ID, req.Range)
	if err != nil {
		return nil, fmt.Errorf("load overlapping bookings: %w", err)
	}
	if err := inventory.Admit(room, inventory.Reservations(overlapping, req.Exclude), req.Range, req.NoOfRooms); err != nil {
		return nil, err
	}
	return room, nil
}

// Quote prices a stay from the room's current rates.
func Quote(room *domainroom.Room, dr daterange.DateRange, noOfRooms int) (pricing.Breakdown, error) {
	nights, err := pricing.NightsFor(dr)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return pricing.Quote(pricing.Input{
		BasePrice:       room.Price,
		DiscountedPrice: room.DiscountedPrice,
		Taxes:           room.Taxes,
		Nights:          nights,
		NoOfRooms:       noOfRooms,
		Currency:        room.Currency,
	})
}
