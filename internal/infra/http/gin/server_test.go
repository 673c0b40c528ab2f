package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	bookingapp "hotelbooking/internal/app/handlers/booking"
	roomsapp "hotelbooking/internal/app/handlers/rooms"
	"hotelbooking/internal/app/middleware"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	domainroom "hotelbooking/internal/domain/room"
	domainuser "hotelbooking/internal/domain/user"
	"hotelbooking/internal/infra/config"
	"hotelbooking/internal/infra/obs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	commands *commands.InMemoryBus
	queries  *queries.InMemoryBus
	router   *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		commands: commands.NewInMemoryBus(),
		queries:  queries.NewInMemoryBus(),
	}
	h.router = NewRouter(config.Config{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Booking:        BookingHandler{Commands: h.commands, Queries: h.queries},
		Room:           RoomHandler{Commands: h.commands, Queries: h.queries},
		AuthMiddleware: AuthMiddleware{}.Handle,
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func guest(id string) map[string]string {
	return map[string]string{HeaderUserID: id, HeaderUserRole: "user", HeaderUserEmail: id + "@example.com"}
}

func TestCreateBookingBindsRequest(t *testing.T) {
	h := newHarness(t)
	var got bookingapp.CreateBookingCommand
	var actor auth.Actor
	commands.RegisterHandler[bookingapp.CreateBookingCommand, *bookingapp.BookingResult](h.commands, bookingapp.CreateBookingKey,
		commands.HandlerFunc[bookingapp.CreateBookingCommand, *bookingapp.BookingResult](func(ctx context.Context, cmd bookingapp.CreateBookingCommand) (*bookingapp.BookingResult, error) {
			got = cmd
			var err error
			actor, err = auth.RequireActor(ctx)
			if err != nil {
				return nil, err
			}
			return &bookingapp.BookingResult{Booking: dto.BookingView{ID: "b-1", Status: "Pending"}}, nil
		}))

	headers := guest("u-1")
	headers["Idempotency-Key"] = "key-1"
	rec, body := h.do(t, http.MethodPost, "/api/v1/booking", map[string]any{
		"roomId":       "r-1",
		"checkInDate":  "2030-03-10",
		"checkOutDate": "2030-03-12",
		"noofguests":   2,
	}, headers)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Booking created successfully", body["message"])
	assert.Equal(t, "r-1", got.RoomID)
	assert.Equal(t, time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC), got.CheckIn)
	assert.Equal(t, time.Date(2030, 3, 12, 0, 0, 0, 0, time.UTC), got.CheckOut)
	assert.Equal(t, 1, got.NoOfRooms)
	assert.Equal(t, "key-1", got.IdempotencyKeyV)
	assert.Equal(t, "u-1", actor.UserID)
	assert.Equal(t, domainuser.RoleUser, actor.Role)
}

func TestCreateBookingRejectsBadDates(t *testing.T) {
	h := newHarness(t)
	rec, body := h.do(t, http.MethodPost, "/api/v1/booking", map[string]any{
		"roomId":       "r-1",
		"checkInDate":  "2030-03-12",
		"checkOutDate": "2030-03-10",
		"noofguests":   1,
	}, guest("u-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, body["message"])

	rec, _ = h.do(t, http.MethodPost, "/api/v1/booking", map[string]any{
		"roomId":       "r-1",
		"checkInDate":  "tomorrow",
		"checkOutDate": "2030-03-10",
	}, guest("u-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnonymousCallerGetsUnauthorized(t *testing.T) {
	h := newHarness(t)
	commands.RegisterHandler[bookingapp.CancelBookingCommand, *bookingapp.BookingResult](h.commands, bookingapp.CancelBookingKey,
		commands.HandlerFunc[bookingapp.CancelBookingCommand, *bookingapp.BookingResult](func(ctx context.Context, cmd bookingapp.CancelBookingCommand) (*bookingapp.BookingResult, error) {
			if _, err := auth.RequireActor(ctx); err != nil {
				return nil, err
			}
			return &bookingapp.BookingResult{}, nil
		}))

	rec, body := h.do(t, http.MethodPut, "/api/v1/booking/b-1/cancel", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ErrUnauthenticated.Error(), body["message"])

	rec, _ = h.do(t, http.MethodPut, "/api/v1/booking/b-1/cancel", nil, map[string]string{HeaderUserID: "u-1", HeaderUserRole: "root"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = h.do(t, http.MethodPut, "/api/v1/booking/b-1/cancel", nil, guest("u-1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListMineIsNotShadowedByID(t *testing.T) {
	h := newHarness(t)
	queries.RegisterHandler[bookingapp.ListMyBookingsQuery, dto.BookingCollection](h.queries, bookingapp.ListMyBookingsKey,
		queries.HandlerFunc[bookingapp.ListMyBookingsQuery, dto.BookingCollection](func(ctx context.Context, q bookingapp.ListMyBookingsQuery) (dto.BookingCollection, error) {
			assert.Equal(t, "Pending", q.Status)
			return dto.BookingCollection{Items: []dto.BookingView{{ID: "b-1"}, {ID: "b-2"}}}, nil
		}))

	rec, body := h.do(t, http.MethodGet, "/api/v1/booking/me?status=Pending", nil, guest("u-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["bookings"], 2)
}

func TestUpdateBookingKeepsUnsetFields(t *testing.T) {
	h := newHarness(t)
	var got bookingapp.AdminUpdateBookingCommand
	commands.RegisterHandler[bookingapp.AdminUpdateBookingCommand, *bookingapp.BookingResult](h.commands, bookingapp.AdminUpdateBookingKey,
		commands.HandlerFunc[bookingapp.AdminUpdateBookingCommand, *bookingapp.BookingResult](func(ctx context.Context, cmd bookingapp.AdminUpdateBookingCommand) (*bookingapp.BookingResult, error) {
			got = cmd
			return &bookingapp.BookingResult{Booking: dto.BookingView{ID: cmd.BookingID}}, nil
		}))

	rec, _ := h.do(t, http.MethodPut, "/api/v1/booking/b-9/admin-update", map[string]any{
		"checkOutDate": "2030-04-02",
		"noOfRooms":    2,
		"status":       "Confirmed",
	}, map[string]string{HeaderUserID: "a-1", HeaderUserRole: "admin"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b-9", got.BookingID)
	assert.True(t, got.CheckIn.IsZero())
	assert.Equal(t, time.Date(2030, 4, 2, 0, 0, 0, 0, time.UTC), got.CheckOut)
	require.NotNil(t, got.NoOfRooms)
	assert.Equal(t, 2, *got.NoOfRooms)
	assert.Nil(t, got.Guests)
	assert.Equal(t, "Confirmed", got.Status)
}

func TestAvailabilityQueryParams(t *testing.T) {
	h := newHarness(t)
	var got roomsapp.GetAvailabilityQuery
	queries.RegisterHandler[roomsapp.GetAvailabilityQuery, dto.CalendarView](h.queries, roomsapp.GetAvailabilityKey,
		queries.HandlerFunc[roomsapp.GetAvailabilityQuery, dto.CalendarView](func(ctx context.Context, q roomsapp.GetAvailabilityQuery) (dto.CalendarView, error) {
			got = q
			return dto.CalendarView{}, nil
		}))

	rec, body := h.do(t, http.MethodGet, "/api/v1/room/r-1/availability?from=2030-01-05&days=30", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "r-1", got.RoomID)
	assert.Equal(t, 30, got.Days)
	assert.Equal(t, time.Date(2030, 1, 5, 0, 0, 0, 0, time.UTC), got.From)
	assert.Contains(t, body, "availability")

	rec, _ = h.do(t, http.MethodGet, "/api/v1/room/r-1/availability?days=many", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateRoomRequiresScore(t *testing.T) {
	h := newHarness(t)
	rec, body := h.do(t, http.MethodPost, "/api/v1/room/r-1/rating", map[string]any{}, guest("u-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rating is required", body["message"])
}

func TestInsufficientInventoryCarriesAvailableCount(t *testing.T) {
	h := newHarness(t)
	commands.RegisterHandler[bookingapp.CreateBookingCommand, *bookingapp.BookingResult](h.commands, bookingapp.CreateBookingKey,
		commands.HandlerFunc[bookingapp.CreateBookingCommand, *bookingapp.BookingResult](func(ctx context.Context, cmd bookingapp.CreateBookingCommand) (*bookingapp.BookingResult, error) {
			return nil, domainroom.InsufficientInventoryError{Available: 1}
		}))

	rec, body := h.do(t, http.MethodPost, "/api/v1/booking", map[string]any{
		"roomId":       "r-1",
		"checkInDate":  "2030-03-10",
		"checkOutDate": "2030-03-12",
		"noofguests":   2,
		"noOfRooms":    3,
	}, guest("u-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only 1 room is available for the selected dates", body["message"])
	assert.EqualValues(t, 1, body["available"])
}

func TestServerErrorsHideCause(t *testing.T) {
	h := newHarness(t)
	queries.RegisterHandler[roomsapp.GetRoomQuery, dto.RoomView](h.queries, roomsapp.GetRoomKey,
		queries.HandlerFunc[roomsapp.GetRoomQuery, dto.RoomView](func(ctx context.Context, q roomsapp.GetRoomQuery) (dto.RoomView, error) {
			return dto.RoomView{}, errors.New("mongo: connection refused")
		}))

	rec, body := h.do(t, http.MethodGet, "/api/v1/room/r-1", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, internalErrorMessage, body["message"])
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&middleware.ValidationError{Fields: map[string]string{"roomId": "roomId is required"}}, http.StatusBadRequest},
		{domainroom.OccupancyError{Guests: 5, Capacity: 2}, http.StatusBadRequest},
		{auth.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("load: %w", domainbooking.ErrNotFound), http.StatusNotFound},
		{domainbooking.TransitionError{From: domainbooking.StatusCancelled, To: domainbooking.StatusConfirmed}, http.StatusConflict},
		{domainbooking.ErrStayCompleted, http.StatusConflict},
		{uow.ErrConcurrentUpdate, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	rec, body := h.do(t, http.MethodGet, "/api/v1/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", body["message"])
}
