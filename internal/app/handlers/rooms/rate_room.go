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
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/uow"
	domainroom "hotelbooking/internal/domain/room"
)

const (
	RateRoomKey  = "room.rate"
	GetRatingKey = "room.rating"
)

// RateRoomCommand appends a rating; a user may rate the same room repeatedly.
type RateRoomCommand struct {
	RoomID string `validate:"required"`
	Score  int    `validate:"gte=0,lte=5"`
}

func (c RateRoomCommand) Key() string { return RateRoomKey }

func (c RateRoomCommand) LockKeys() []string { return []string{locks.RoomKey(c.RoomID)} }

func (c RateRoomCommand) Permission() (string, string) { return "rating", "create" }

type RatingResult struct {
	Rating dto.RatingView `json:"rating"`
}

type RateRoomHandler struct {
	Deps
}

func (h *RateRoomHandler) Handle(ctx context.Context, cmd RateRoomCommand) (*RatingResult, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	now := h.now()
	var result *RatingResult
	err = handlersupport.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := unit.Rooms().ByID(ctx, domainroom.ID(cmd.RoomID))
		if err != nil {
			return err
		}
		if err := room.Rate(actor.UserID, cmd.Score, now); err != nil {
			return err
		}
		if err := unit.Rooms().Save(ctx, room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}
		if err := h.record(ctx, room); err != nil {
			return err
		}
		result = &RatingResult{Rating: dto.MapRating(room)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type GetRatingQuery struct {
	RoomID string `validate:"required"`
}

func (q GetRatingQuery) Key() string { return GetRatingKey }

type GetRatingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRatingHandler) Handle(ctx context.Context, q GetRatingQuery) (dto.RatingView, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RatingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainroom.ID(q.RoomID))
	if err != nil {
		return dto.RatingView{}, err
	}
	return dto.MapRating(room), nil
}

var _ commands.Handler[RateRoomCommand, *RatingResult] = (*RateRoomHandler)(nil)
var _ queries.Handler[GetRatingQuery, dto.RatingView] = (*GetRatingHandler)(nil)
var _ middleware.LockingCommand = RateRoomCommand{}
