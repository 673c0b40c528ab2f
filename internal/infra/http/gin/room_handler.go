package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	roomsapp "hotelbooking/internal/app/handlers/rooms"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/domain/pricing"
	"hotelbooking/internal/domain/shared/daterange"
)

// RoomHandler serves the room catalogue, availability, ratings and inventory upkeep.
type RoomHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createRoomRequest struct {
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

type rateRoomRequest struct {
	Rating *int `json:"rating"`
}

func (h RoomHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c)
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return
	}
	cmd := roomsapp.CreateRoomCommand{
		RoomID:          req.ID,
		Name:            req.Name,
		Description:     req.Description,
		Currency:        req.Currency,
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		WeekendPrice:    req.WeekendPrice,
		Taxes:           req.Taxes,
		MaxOccupancy:    req.MaxOccupancy,
		TotalSlots:      req.TotalSlots,
	}
	result, err := commands.Dispatch[roomsapp.CreateRoomCommand, *roomsapp.RoomResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Room created successfully", "room": result.Room})
}

func (h RoomHandler) List(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c)
		return
	}
	q := roomsapp.ListRoomsQuery{
		Name:          c.Query("name"),
		OnlyAvailable: parseBool(c.Query("available")),
		Limit:         parseInt(c.Query("limit")),
		Offset:        parseInt(c.Query("offset")),
	}
	result, err := queries.Ask[roomsapp.ListRoomsQuery, dto.RoomCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rooms fetched successfully", "rooms": result.Items})
}

func (h RoomHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c)
		return
	}
	view, err := queries.Ask[roomsapp.GetRoomQuery, dto.RoomView](c.Request.Context(), h.Queries, roomsapp.GetRoomQuery{RoomID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room fetched successfully", "room": view})
}

// Availability accepts ?from=YYYY-MM-DD&days=N; both are optional.
func (h RoomHandler) Availability(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c)
		return
	}
	q := roomsapp.GetAvailabilityQuery{RoomID: c.Param("id")}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := daterange.ParseDate(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		q.From = from
	}
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "days must be an integer")
			return
		}
		q.Days = days
	}
	view, err := queries.Ask[roomsapp.GetAvailabilityQuery, dto.CalendarView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability fetched successfully", "availability": view})
}

func (h RoomHandler) Rate(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c)
		return
	}
	var req rateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return
	}
	if req.Rating == nil {
		respondBadRequest(c, "rating is required")
		return
	}
	cmd := roomsapp.RateRoomCommand{RoomID: c.Param("id"), Score: *req.Rating}
	result, err := commands.Dispatch[roomsapp.RateRoomCommand, *roomsapp.RatingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Rating submitted successfully", "rating": result.Rating})
}

func (h RoomHandler) Rating(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c)
		return
	}
	view, err := queries.Ask[roomsapp.GetRatingQuery, dto.RatingView](c.Request.Context(), h.Queries, roomsapp.GetRatingQuery{RoomID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating fetched successfully", "rating": view})
}

func (h RoomHandler) Reconcile(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c)
		return
	}
	cmd := roomsapp.ReconcileRoomCommand{RoomID: c.Param("id")}
	result, err := commands.Dispatch[roomsapp.ReconcileRoomCommand, *roomsapp.ReconcileResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Room inventory is in sync"
	if !result.Drift.InSync {
		message = "Room inventory reconciled"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "drift": result.Drift, "room": result.Room})
}

func (h RoomHandler) Ledger(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c)
		return
	}
	q := roomsapp.ListLedgerQuery{RoomID: c.Param("id"), Limit: parseInt(c.Query("limit"))}
	view, err := queries.Ask[roomsapp.ListLedgerQuery, dto.LedgerView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ledger fetched successfully", "ledger": view})
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

var _ RoomHTTP = RoomHandler{}
