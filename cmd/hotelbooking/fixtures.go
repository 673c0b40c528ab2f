package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	roomsapp "hotelbooking/internal/app/handlers/rooms"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
	domainuser "hotelbooking/internal/domain/user"
)

// fixturesActor seeds rooms through the regular command path.
var fixturesActor = auth.Actor{UserID: "fixtures", Role: domainuser.RoleAdmin, Name: "fixtures"}

type roomFixture struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Currency        string           `json:"currency"`
	Price           float64          `json:"price"`
	DiscountedPrice float64          `json:"discountedPrice"`
	WeekendPrice    float64          `json:"weekendPrice"`
	Taxes           pricing.TaxRates `json:"taxes"`
	MaxOccupancy    int              `json:"maxOccupancy"`
	TotalSlots      int              `json:"totalSlots"`
}

// loadRoomFixtures creates every fixture room that does not exist yet.
func (a *application) loadRoomFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("room fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("room fixtures file empty", "path", path)
		return nil
	}
	var fixtures []roomFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	ctx = auth.WithActor(ctx, fixturesActor)
	imported := 0
	for _, fx := range fixtures {
		if fx.ID != "" {
			_, err := queries.Ask[roomsapp.GetRoomQuery, dto.RoomView](ctx, a.queries, roomsapp.GetRoomQuery{RoomID: fx.ID})
			if err == nil {
				continue
			}
			if !errors.Is(err, domainroom.ErrNotFound) {
				logger.Error("fixture lookup failed", "room_id", fx.ID, "error", err)
				continue
			}
		}
		_, err := commands.Dispatch[roomsapp.CreateRoomCommand, *roomsapp.RoomResult](ctx, a.commands, roomsapp.CreateRoomCommand{
			RoomID:          fx.ID,
			Name:            fx.Name,
			Description:     fx.Description,
			Currency:        fx.Currency,
			Price:           fx.Price,
			DiscountedPrice: fx.DiscountedPrice,
			WeekendPrice:    fx.WeekendPrice,
			Taxes:           fx.Taxes,
			MaxOccupancy:    fx.MaxOccupancy,
			TotalSlots:      fx.TotalSlots,
		})
		if err != nil {
			logger.Error("fixture invalid", "room_id", fx.ID, "error", err)
			continue
		}
		imported++
	}
	logger.Info("room fixtures imported", "count", imported, "path", path)
	return nil
}

func defaultRoomFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "rooms.json"),
		filepath.Join("..", "..", "data", "rooms.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
