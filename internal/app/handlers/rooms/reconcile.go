package rooms

import (
	"context"
	"fmt"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/locks"
	"hotelbooking/internal/app/middleware"
	"hotelbooking/internal/app/policies"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/uow"
	"hotelbooking/internal/domain/inventory"
	domainroom "hotelbooking/internal/domain/room"
)

const (
	ReconcileRoomKey = "room.reconcile"
	ListLedgerKey    = "room.ledger"
)

// ReconcileRoomCommand rewrites a room's counters from its booking set.
type ReconcileRoomCommand struct {
	RoomID string `validate:"required"`
}

func (c ReconcileRoomCommand) Key() string { return ReconcileRoomKey }

func (c ReconcileRoomCommand) LockKeys() []string { return []string{locks.RoomKey(c.RoomID)} }

func (c ReconcileRoomCommand) Permission() (string, string) { return "room", "reconcile" }

type ReconcileResult struct {
	Drift inventory.Drift `json:"drift"`
	Room  dto.RoomView    `json:"room"`
}

type ReconcileRoomHandler struct {
	Deps
	Ledger policies.Ledger
}

func (h *ReconcileRoomHandler) Handle(ctx context.Context, cmd ReconcileRoomCommand) (*ReconcileResult, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	now := h.now()
	var result *ReconcileResult
	err = handlersupport.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := unit.Rooms().ByID(ctx, domainroom.ID(cmd.RoomID))
		if err != nil {
			return err
		}
		bookings, err := unit.Bookings().ListByRoom(ctx, room.ID)
		if err != nil {
			return err
		}
		drift := inventory.Reconcile(room, bookings, now)
		if !drift.InSync {
			if err := unit.Rooms().Save(ctx, room); err != nil {
				return fmt.Errorf("save room: %w", err)
			}
			var entries []policies.LedgerEntry
			for _, ev := range room.PendingEvents() {
				if changed, ok := ev.(domainroom.InventoryChanged); ok {
					entries = append(entries, policies.LedgerEntry{
						RoomID:    string(changed.RoomID),
						Reference: changed.Reference,
						Delta:     changed.Delta,
						Booked:    changed.Booked,
						Available: changed.Available,
						Reason:    string(changed.Reason),
						At:        changed.At,
					})
				}
			}
			if err := h.record(ctx, room); err != nil {
				return err
			}
			uow.AfterCommit(ctx, func() { h.appendLedger(ctx, entries) })
		}
		result = &ReconcileResult{Drift: drift, Room: dto.MapRoom(room)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Drift.InSync {
		h.log().Warn("room counters repaired",
			"room_id", cmd.RoomID,
			"recorded", result.Drift.Recorded,
			"expected", result.Drift.Expected,
		)
	}
	return result, nil
}

func (h *ReconcileRoomHandler) appendLedger(ctx context.Context, entries []policies.LedgerEntry) {
	if h.Ledger == nil || len(entries) == 0 {
		return
	}
	if err := h.Ledger.Append(context.WithoutCancel(ctx), entries...); err != nil {
		h.log().Warn("ledger append failed", "room_id", entries[0].RoomID, "err", err)
	}
}

type ListLedgerQuery struct {
	RoomID string `validate:"required"`
	Limit  int    `validate:"gte=0,lte=1000"`
}

func (q ListLedgerQuery) Key() string { return ListLedgerKey }

func (q ListLedgerQuery) Permission() (string, string) { return "ledger", "read" }

type ListLedgerHandler struct {
	Ledger policies.Ledger
}

func (h *ListLedgerHandler) Handle(ctx context.Context, q ListLedgerQuery) (dto.LedgerView, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return dto.LedgerView{}, err
	}
	if !actor.IsAdmin() {
		return dto.LedgerView{}, auth.ErrForbidden
	}
	limit := q.Limit
	if limit == 0 {
		limit = 100
	}
	view := dto.LedgerView{RoomID: q.RoomID, Items: []policies.LedgerEntry{}}
	if h.Ledger == nil {
		return view, nil
	}
	items, err := h.Ledger.List(ctx, q.RoomID, limit)
	if err != nil {
		return dto.LedgerView{}, err
	}
	if items != nil {
		view.Items = items
	}
	return view, nil
}

var _ commands.Handler[ReconcileRoomCommand, *ReconcileResult] = (*ReconcileRoomHandler)(nil)
var _ queries.Handler[ListLedgerQuery, dto.LedgerView] = (*ListLedgerHandler)(nil)
var _ middleware.LockingCommand = ReconcileRoomCommand{}
