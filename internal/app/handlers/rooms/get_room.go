package rooms

import (
	"context"

	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/uow"
	domainroom "hotelbooking/internal/domain/room"
)

const (
	GetRoomKey   = "room.get"
	ListRoomsKey = "room.list"

	defaultListLimit = 50
	maxListLimit     = 200
)

type GetRoomQuery struct {
	RoomID string `validate:"required"`
}

func (q GetRoomQuery) Key() string { return GetRoomKey }

type GetRoomHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRoomHandler) Handle(ctx context.Context, q GetRoomQuery) (dto.RoomView, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainroom.ID(q.RoomID))
	if err != nil {
		return dto.RoomView{}, err
	}
	return dto.MapRoom(room), nil
}

type ListRoomsQuery struct {
	Name          string
	OnlyAvailable bool
	Limit         int `validate:"gte=0"`
	Offset        int `validate:"gte=0"`
}

func (q ListRoomsQuery) Key() string { return ListRoomsKey }

type ListRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomsHandler) Handle(ctx context.Context, q ListRoomsQuery) (dto.RoomCollection, error) {
	params := domainroom.ListParams{
		OnlyAvailable: q.OnlyAvailable,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	if q.Name != "" {
		category, err := domainroom.ParseCategory(q.Name)
		if err != nil {
			return dto.RoomCollection{}, err
		}
		params.Name = category
	}
	switch {
	case params.Limit <= 0:
		params.Limit = defaultListLimit
	case params.Limit > maxListLimit:
		params.Limit = maxListLimit
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Rooms().List(execCtx, params)
	if err != nil {
		return dto.RoomCollection{}, err
	}
	out := dto.RoomCollection{Items: make([]dto.RoomView, 0, len(items))}
	for _, r := range items {
		out.Items = append(out.Items, dto.MapRoom(r))
	}
	return out, nil
}

var _ queries.Handler[GetRoomQuery, dto.RoomView] = (*GetRoomHandler)(nil)
var _ queries.Handler[ListRoomsQuery, dto.RoomCollection] = (*ListRoomsHandler)(nil)
