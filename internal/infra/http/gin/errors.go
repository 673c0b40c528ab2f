package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/middleware"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/inventory"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
	"hotelbooking/internal/domain/shared/money"
)

const internalErrorMessage = "Something went wrong, please try again later"

var badRequest = []error{
	middleware.ErrInvalidInput,
	daterange.ErrInvalidRange,
	daterange.ErrInvalidDate,
	domainbooking.ErrCheckInInPast,
	domainbooking.ErrInvalidGuests,
	domainbooking.ErrInvalidChildren,
	domainbooking.ErrInvalidRoomCount,
	domainbooking.ErrRoomRequired,
	domainbooking.ErrInvalidStatus,
	domainroom.ErrIDRequired,
	domainroom.ErrInvalidCategory,
	domainroom.ErrInvalidPrice,
	domainroom.ErrInvalidSlots,
	domainroom.ErrInvalidOccupancy,
	domainroom.ErrInvalidUnits,
	domainroom.ErrInsufficientInventory,
	domainroom.ErrExceedsMaxOccupancy,
	domainroom.ErrInvalidRating,
	inventory.ErrInvalidWindow,
	pricing.ErrNonPositiveNights,
	pricing.ErrInvalidRoomCount,
	pricing.ErrNegativeRate,
	pricing.ErrNegativeTax,
	money.ErrInvalidCurrency,
}

var conflict = []error{
	domainbooking.ErrAlreadyCancelled,
	domainbooking.ErrStayCompleted,
	domainbooking.ErrInvalidTransition,
	domainroom.ErrUnavailable,
	domainroom.ErrHeldOutOfRange,
	uow.ErrConcurrentUpdate,
}

// statusFor maps application errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainbooking.ErrNotFound), errors.Is(err, domainroom.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrHandlerNotFound), errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusNotImplemented
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	for _, target := range conflict {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

// respondError writes {"message": ...}. Server errors get a generic message
// and the cause is attached to the gin context for the request logger.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"message": internalErrorMessage})
		return
	}
	body := gin.H{"message": err.Error()}
	var verr *middleware.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	var short domainroom.InsufficientInventoryError
	if errors.As(err, &short) {
		body["available"] = short.Available
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

func unavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"message": "service unavailable"})
}
