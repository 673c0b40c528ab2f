package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	roomsapp "hotelbooking/internal/app/handlers/rooms"
	"hotelbooking/internal/app/queries"
	domainuser "hotelbooking/internal/domain/user"
)

const defaultSweepPage = 100

// SweepActor is the identity the sweep dispatches under.
var SweepActor = auth.Actor{UserID: "inventory-sweep", Role: domainuser.RoleAdmin, Name: "inventory sweep"}

// InventorySweep reconciles every room's counters against its booking set,
// which also returns units held by stays that have ended.
type InventorySweep struct {
	Commands commands.Bus
	Queries  queries.Bus
	PageSize int
	Logger   *slog.Logger
}

func (s *InventorySweep) Name() string { return "inventory_sweep" }

func (s *InventorySweep) Run(ctx context.Context) error {
	ctx = auth.WithActor(ctx, SweepActor)
	page := s.PageSize
	if page <= 0 {
		page = defaultSweepPage
	}
	var errs []error
	fixed := 0
	for offset := 0; ; offset += page {
		rooms, err := queries.Ask[roomsapp.ListRoomsQuery, dto.RoomCollection](ctx, s.Queries, roomsapp.ListRoomsQuery{Limit: page, Offset: offset})
		if err != nil {
			return fmt.Errorf("list rooms: %w", err)
		}
		for _, room := range rooms.Items {
			res, err := commands.Dispatch[roomsapp.ReconcileRoomCommand, *roomsapp.ReconcileResult](ctx, s.Commands, roomsapp.ReconcileRoomCommand{RoomID: room.ID})
			if err != nil {
				errs = append(errs, fmt.Errorf("room %s: %w", room.ID, err))
				continue
			}
			if !res.Drift.InSync {
				fixed++
			}
		}
		if len(rooms.Items) < page {
			break
		}
	}
	if fixed > 0 && s.Logger != nil {
		s.Logger.Info("inventory sweep corrected rooms", "rooms", fixed)
	}
	return errors.Join(errs...)
}

var _ Job = (*InventorySweep)(nil)
