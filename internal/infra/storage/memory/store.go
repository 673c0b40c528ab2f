package memory

import (
	"sync"

	domainbooking "hotelbooking/internal/domain/booking"
	domainroom "hotelbooking/internal/domain/room"
	domainuser "hotelbooking/internal/domain/user"
)

// Store holds committed state. Units read clones and write back on commit,
// so a caller never observes another unit's uncommitted changes.
type Store struct {
	mu       sync.RWMutex
	rooms    map[domainroom.ID]*domainroom.Room
	bookings map[domainbooking.ID]*domainbooking.Booking
	users    map[domainuser.ID]*domainuser.User
}

func NewStore() *Store {
	return &Store{
		rooms:    make(map[domainroom.ID]*domainroom.Room),
		bookings: make(map[domainbooking.ID]*domainbooking.Booking),
		users:    make(map[domainuser.ID]*domainuser.User),
	}
}

// SeedRooms stores rooms directly, bypassing units. Used for fixtures.
func (s *Store) SeedRooms(rooms ...*domainroom.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rooms {
		if r == nil {
			continue
		}
		s.rooms[r.ID] = cloneRoom(r)
	}
}

// SeedBookings stores bookings as-is without touching room counters.
func (s *Store) SeedBookings(bookings ...*domainbooking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bookings {
		if b == nil {
			continue
		}
		s.bookings[b.ID] = cloneBooking(b)
	}
}

func cloneRoom(r *domainroom.Room) *domainroom.Room {
	cp := *r
	cp.ClearEvents()
	if r.Ratings != nil {
		cp.Ratings = append([]domainroom.Rating(nil), r.Ratings...)
	}
	return &cp
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.ClearEvents()
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		cp.CancelledAt = &at
	}
	return &cp
}

func cloneUser(u *domainuser.User) *domainuser.User {
	cp := *u
	return &cp
}
