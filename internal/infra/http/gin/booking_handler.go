package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	bookingapp "hotelbooking/internal/app/handlers/booking"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/domain/shared/daterange"
)

// BookingHandler wires the booking lifecycle to HTTP.
type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	RoomID    string `json:"roomId"`
	CheckIn   string `json:"checkInDate"`
	CheckOut  string `json:"checkOutDate"`
	Guests    int    `json:"noofguests"`
	Children  int    `json:"noofchildren"`
	NoOfRooms int    `json:"noOfRooms"`
}

type updateBookingRequest struct {
	RoomID    string `json:"roomId"`
	CheckIn   string `json:"checkInDate"`
	CheckOut  string `json:"checkOutDate"`
	Guests    *int   `json:"noofguests"`
	Children  *int   `json:"noofchildren"`
	NoOfRooms *int   `json:"noOfRooms"`
}

type adminUpdateBookingRequest struct {
	updateBookingRequest
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c)
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return
	}
	dr, err := daterange.Parse(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		RoomID:          req.RoomID,
		CheckIn:         dr.CheckIn,
		CheckOut:        dr.CheckOut,
		Guests:          req.Guests,
		Children:        req.Children,
		NoOfRooms:       req.NoOfRooms,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if cmd.NoOfRooms == 0 {
		cmd.NoOfRooms = 1
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Booking created successfully", "booking": result.Booking})
}

func (h BookingHandler) Update(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c)
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return
	}
	cmd, err := req.command(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := commands.Dispatch[bookingapp.UpdateBookingCommand, *bookingapp.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated successfully", "booking": result.Booking})
}

func (h BookingHandler) AdminUpdate(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c)
		return
	}
	var req adminUpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return
	}
	base, err := req.command(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	cmd := bookingapp.AdminUpdateBookingCommand{UpdateBookingCommand: base, Status: req.Status, Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.AdminUpdateBookingCommand, *bookingapp.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking updated successfully", "booking": result.Booking})
}

func (h BookingHandler) Cancel(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c)
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "request body must be valid JSON")
			return
		}
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.BookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully", "booking": result.Booking})
}

func (h BookingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c)
		return
	}
	view, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{BookingID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking fetched successfully", "booking": view})
}

func (h BookingHandler) ListMine(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c)
		return
	}
	q := bookingapp.ListMyBookingsQuery{Status: c.Query("status")}
	result, err := queries.Ask[bookingapp.ListMyBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bookings fetched successfully", "bookings": result.Items})
}

func (r updateBookingRequest) command(id string) (bookingapp.UpdateBookingCommand, error) {
	cmd := bookingapp.UpdateBookingCommand{
		BookingID: id,
		RoomID:    r.RoomID,
		Guests:    r.Guests,
		Children:  r.Children,
		NoOfRooms: r.NoOfRooms,
	}
	var err error
	if cmd.CheckIn, err = optionalDate(r.CheckIn); err != nil {
		return cmd, err
	}
	if cmd.CheckOut, err = optionalDate(r.CheckOut); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func optionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return daterange.ParseDate(raw)
}

var _ BookingHTTP = BookingHandler{}
