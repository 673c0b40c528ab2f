package memory

import (
	"context"
	"sort"

	domainbooking "hotelbooking/internal/domain/booking"
	domainroom "hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
	domainuser "hotelbooking/internal/domain/user"
)

type roomRepository struct {
	u *Unit
}

func (r roomRepository) ByID(ctx context.Context, id domainroom.ID) (*domainroom.Room, error) {
	r.u.mu.Lock()
	if st, ok := r.u.rooms[id]; ok {
		r.u.mu.Unlock()
		return cloneRoom(st.value), nil
	}
	r.u.mu.Unlock()

	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, domainroom.ErrNotFound
	}
	return cloneRoom(room), nil
}

// Save stages room and bumps its version the way the mongo repository does.
func (r roomRepository) Save(ctx context.Context, room *domainroom.Room) error {
	if room == nil || room.ID == "" {
		return domainroom.ErrIDRequired
	}
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	if err := r.u.writable(); err != nil {
		return err
	}
	expected := room.Version
	if prev, ok := r.u.rooms[room.ID]; ok {
		expected = prev.expected
	}
	room.Version++
	r.u.rooms[room.ID] = staged[*domainroom.Room]{value: cloneRoom(room), expected: expected}
	return nil
}

func (r roomRepository) List(ctx context.Context, params domainroom.ListParams) ([]*domainroom.Room, error) {
	merged := make(map[domainroom.ID]*domainroom.Room)
	s := r.u.store
	s.mu.RLock()
	for id, room := range s.rooms {
		merged[id] = room
	}
	s.mu.RUnlock()
	r.u.mu.Lock()
	for id, st := range r.u.rooms {
		merged[id] = st.value
	}
	r.u.mu.Unlock()

	out := make([]*domainroom.Room, 0, len(merged))
	for _, room := range merged {
		if params.Name != "" && room.Name != params.Name {
			continue
		}
		if params.OnlyAvailable && !room.IsAvailable {
			continue
		}
		out = append(out, cloneRoom(room))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return []*domainroom.Room{}, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

type bookingRepository struct {
	u *Unit
}

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.u.mu.Lock()
	if st, ok := r.u.bookings[id]; ok {
		r.u.mu.Unlock()
		return cloneBooking(st.value), nil
	}
	r.u.mu.Unlock()

	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r bookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b == nil || b.ID == "" {
		return domainbooking.ErrNotFound
	}
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	if err := r.u.writable(); err != nil {
		return err
	}
	expected := b.Version
	if prev, ok := r.u.bookings[b.ID]; ok {
		expected = prev.expected
	}
	b.Version++
	r.u.bookings[b.ID] = staged[*domainbooking.Booking]{value: cloneBooking(b), expected: expected}
	return nil
}

func (r bookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.UserID == userID }), nil
}

func (r bookingRepository) ListByRoom(ctx context.Context, roomID domainroom.ID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.RoomID == roomID }), nil
}

func (r bookingRepository) Overlapping(ctx context.Context, roomID domainroom.ID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool {
		return b.RoomID == roomID && b.Active() && b.Range.Overlaps(dr)
	}), nil
}

// filter sees committed bookings overlaid with this unit's staged ones.
func (r bookingRepository) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	merged := make(map[domainbooking.ID]*domainbooking.Booking)
	s := r.u.store
	s.mu.RLock()
	for id, b := range s.bookings {
		merged[id] = b
	}
	s.mu.RUnlock()
	r.u.mu.Lock()
	for id, st := range r.u.bookings {
		merged[id] = st.value
	}
	r.u.mu.Unlock()

	out := make([]*domainbooking.Booking, 0)
	for _, b := range merged {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

type userRepository struct {
	u *Unit
}

func (r userRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.u.mu.Lock()
	if usr, ok := r.u.users[id]; ok {
		r.u.mu.Unlock()
		return cloneUser(usr), nil
	}
	r.u.mu.Unlock()

	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	usr, ok := s.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(usr), nil
}

func (r userRepository) Save(ctx context.Context, usr *domainuser.User) error {
	if usr == nil || usr.ID == "" {
		return domainuser.ErrIDRequired
	}
	r.u.mu.Lock()
	defer r.u.mu.Unlock()
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.users[usr.ID] = cloneUser(usr)
	return nil
}

var (
	_ domainroom.Repository    = roomRepository{}
	_ domainbooking.Repository = bookingRepository{}
	_ domainuser.Repository    = userRepository{}
)
