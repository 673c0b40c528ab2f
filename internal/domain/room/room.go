package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbooking/internal/domain/pricing"
	"hotelbooking/internal/domain/shared/events"
	"hotelbooking/internal/domain/shared/money"
)

var (
	ErrNotFound              = errors.New("room: not found")
	ErrIDRequired            = errors.New("room: id is required")
	ErrInvalidCategory       = errors.New("room: name must be one of Single, Double, Deluxe, Suite, Family")
	ErrInvalidPrice          = errors.New("room: price must be positive and discounted price must not be negative")
	ErrInvalidSlots          = errors.New("room: total slots must not be negative")
	ErrInvalidOccupancy      = errors.New("room: max occupancy must be at least 1")
	ErrInvalidUnits          = errors.New("room: number of rooms must be at least 1")
	ErrInsufficientInventory = errors.New("room: insufficient inventory")
	ErrHeldOutOfRange        = errors.New("room: held units must be between 0 and total slots")
	ErrInvalidRating         = errors.New("room: rating must be between 0 and 5")
	ErrUnavailable           = errors.New("room: room is not available")
	ErrExceedsMaxOccupancy   = errors.New("room: guest count exceeds max occupancy")
)

type ID string

// Category is the closed set of room names.
type Category string

const (
	CategorySingle Category = "Single"
	CategoryDouble Category = "Double"
	CategoryDeluxe Category = "Deluxe"
	CategorySuite  Category = "Suite"
	CategoryFamily Category = "Family"
)

var categories = []Category{CategorySingle, CategoryDouble, CategoryDeluxe, CategorySuite, CategoryFamily}

// ParseCategory matches case-insensitively against the closed enum.
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	for _, c := range categories {
		if strings.EqualFold(string(c), raw) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// InsufficientInventoryError carries the remaining slot count for user guidance.
type InsufficientInventoryError struct {
	Available int
}

func (e InsufficientInventoryError) Error() string {
	if e.Available <= 0 {
		return "No rooms are available for the selected dates"
	}
	if e.Available == 1 {
		return "Only 1 room is available for the selected dates"
	}
	return fmt.Sprintf("Only %d rooms are available for the selected dates", e.Available)
}

func (e InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// OccupancyError reports the capacity limit that was exceeded.
type OccupancyError struct {
	Guests   int
	Capacity int
}

func (e OccupancyError) Error() string {
	return fmt.Sprintf("%d guests exceed the maximum occupancy of %d for this booking", e.Guests, e.Capacity)
}

func (e OccupancyError) Is(target error) bool {
	return target == ErrExceedsMaxOccupancy
}

type Rating struct {
	UserID    string
	Score     int
	CreatedAt time.Time
}

// Room is a category with a pool of identical bookable units.
type Room struct {
	ID              ID
	Name            Category
	Description     string
	Currency        string
	Price           float64
	DiscountedPrice float64
	WeekendPrice    float64
	Taxes           pricing.TaxRates
	MaxOccupancy    int
	TotalSlots      int
	BookedSlots     int
	AvailableSlots  int
	IsAvailable     bool
	Ratings         []Rating
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type ListParams struct {
	Name          Category
	OnlyAvailable bool
	Limit         int
	Offset        int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Room, error)
	Save(ctx context.Context, room *Room) error
	List(ctx context.Context, params ListParams) ([]*Room, error)
}

type CreateParams struct {
	ID              ID
	Name            string
	Description     string
	Currency        string
	Price           float64
	DiscountedPrice float64
	WeekendPrice    float64
	Taxes           pricing.TaxRates
	MaxOccupancy    int
	TotalSlots      int
	Now             time.Time
}

func NewRoom(params CreateParams) (*Room, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	category, err := ParseCategory(params.Name)
	if err != nil {
		return nil, err
	}
	if params.Price <= 0 || params.DiscountedPrice < 0 || params.WeekendPrice < 0 {
		return nil, ErrInvalidPrice
	}
	if err := params.Taxes.Validate(); err != nil {
		return nil, err
	}
	if params.MaxOccupancy < 1 {
		return nil, ErrInvalidOccupancy
	}
	if params.TotalSlots < 0 {
		return nil, ErrInvalidSlots
	}
	currency, err := money.NormalizeCurrency(params.Currency)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	r := &Room{
		ID:              params.ID,
		Name:            category,
		Description:     strings.TrimSpace(params.Description),
		Currency:        currency,
		Price:           params.Price,
		DiscountedPrice: params.DiscountedPrice,
		WeekendPrice:    params.WeekendPrice,
		Taxes:           params.Taxes,
		MaxOccupancy:    params.MaxOccupancy,
		TotalSlots:      params.TotalSlots,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.sync()
	r.Record(RoomCreated{RoomID: r.ID, Name: r.Name, TotalSlots: r.TotalSlots, At: now})
	return r, nil
}

// NightlyRate is the effective rate used for booking quotes.
func (r *Room) NightlyRate() float64 {
	return pricing.EffectiveNightlyRate(r.Price, r.DiscountedPrice)
}

// PriceOn is the calendar price for one night; weekendPrice overrides on weekend nights.
func (r *Room) PriceOn(weekend bool) float64 {
	if weekend && r.WeekendPrice > 0 {
		return r.WeekendPrice
	}
	return r.NightlyRate()
}

// Capacity is the number of guests that n units accommodate.
func (r *Room) Capacity(units int) int {
	if units < 1 {
		units = 1
	}
	return r.MaxOccupancy * units
}

func (r *Room) CheckOccupancy(guests, units int) error {
	capacity := r.Capacity(units)
	if guests > capacity {
		return OccupancyError{Guests: guests, Capacity: capacity}
	}
	return nil
}

// Hold sets the counter to held, the peak number of units booked on any
// remaining night. Admission keeps that peak within totalSlots, so a value
// outside [0, totalSlots] means the booking set is corrupt.
func (r *Room) Hold(held int, reference string, reason InventoryReason, now time.Time) error {
	if held < 0 || held > r.TotalSlots {
		return ErrHeldOutOfRange
	}
	delta := held - r.BookedSlots
	r.BookedSlots = held
	r.touch(now)
	if delta != 0 {
		r.Record(r.inventoryEvent(delta, reference, reason))
	}
	return nil
}

func (r *Room) Rate(userID string, score int, now time.Time) error {
	if score < 0 || score > 5 {
		return ErrInvalidRating
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("room: rating requires a user id")
	}
	if now.IsZero() {
		now = time.Now()
	}
	r.Ratings = append(r.Ratings, Rating{UserID: userID, Score: score, CreatedAt: now.UTC()})
	r.UpdatedAt = now.UTC()
	r.Record(RoomRated{RoomID: r.ID, UserID: userID, Score: score, At: now.UTC()})
	return nil
}

// AverageRating is recomputed on every call.
func (r *Room) AverageRating() float64 {
	if len(r.Ratings) == 0 {
		return 0
	}
	total := 0
	for _, rating := range r.Ratings {
		total += rating.Score
	}
	return float64(total) / float64(len(r.Ratings))
}

// CanAcceptSwap reports whether the room can take over an existing booking.
func (r *Room) CanAcceptSwap() error {
	if !r.IsAvailable || r.AvailableSlots < 1 {
		return ErrUnavailable
	}
	return nil
}

func (r *Room) sync() {
	r.AvailableSlots = r.TotalSlots - r.BookedSlots
	r.IsAvailable = r.AvailableSlots > 0
}

func (r *Room) touch(now time.Time) {
	r.sync()
	if now.IsZero() {
		now = time.Now()
	}
	r.UpdatedAt = now.UTC()
}

func (r *Room) inventoryEvent(delta int, reference string, reason InventoryReason) InventoryChanged {
	return InventoryChanged{
		RoomID:    r.ID,
		Reference: reference,
		Delta:     delta,
		Booked:    r.BookedSlots,
		Available: r.AvailableSlots,
		Reason:    reason,
		At:        r.UpdatedAt,
	}
}
