package rooms

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/uow"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
)

const CreateRoomKey = "room.create"

type CreateRoomCommand struct {
	RoomID          string
	Name            string  `validate:"required"`
	Description     string  `validate:"max=2000"`
	Currency        string  `validate:"omitempty,len=3"`
	Price           float64 `validate:"gt=0"`
	DiscountedPrice float64 `validate:"gte=0"`
	WeekendPrice    float64 `validate:"gte=0"`
	Taxes           pricing.TaxRates
	MaxOccupancy    int `validate:"gte=1"`
	TotalSlots      int `validate:"gte=0"`
}

func (c CreateRoomCommand) Key() string { return CreateRoomKey }

func (c CreateRoomCommand) Permission() (string, string) { return "room", "create" }

type RoomResult struct {
	Room dto.RoomView `json:"room"`
}

type CreateRoomHandler struct {
	Deps
}

func (h *CreateRoomHandler) Handle(ctx context.Context, cmd CreateRoomCommand) (*RoomResult, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	id := cmd.RoomID
	if id == "" {
		id = uuid.NewString()
	}
	room, err := domainroom.NewRoom(domainroom.CreateParams{
		ID:              domainroom.ID(id),
		Name:            cmd.Name,
		Description:     cmd.Description,
		Currency:        cmd.Currency,
		Price:           cmd.Price,
		DiscountedPrice: cmd.DiscountedPrice,
		WeekendPrice:    cmd.WeekendPrice,
		Taxes:           cmd.Taxes,
		MaxOccupancy:    cmd.MaxOccupancy,
		TotalSlots:      cmd.TotalSlots,
		Now:             h.now(),
	})
	if err != nil {
		return nil, err
	}

	err = handlersupport.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Rooms().Save(ctx, room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}
		return h.record(ctx, room)
	})
	if err != nil {
		return nil, err
	}
	h.log().Info("room created", "room_id", room.ID, "name", room.Name, "total_slots", room.TotalSlots)
	return &RoomResult{Room: dto.MapRoom(room)}, nil
}

var _ commands.Handler[CreateRoomCommand, *RoomResult] = (*CreateRoomHandler)(nil)
