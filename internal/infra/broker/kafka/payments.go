package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/IBM/sarama"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	bookinghandlers "hotelbooking/internal/app/handlers/booking"
	domainbooking "hotelbooking/internal/domain/booking"
	domainuser "hotelbooking/internal/domain/user"
)

// Inbox dedupes deliveries by message id.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// PaymentEvent is published by the payment service when a charge settles.
type PaymentEvent struct {
	EventID   string `json:"event_id"`
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

var ErrMalformedPayment = errors.New("kafka: malformed payment event")

// PaymentsHandler turns settled payments into booking commands. Successful
// charges confirm the booking; failed charges cancel it and free the units.
type PaymentsHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *PaymentsHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev PaymentEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayment, err)
	}
	if ev.BookingID == "" {
		return ErrMalformedPayment
	}
	id := ev.EventID
	if id == "" {
		id = msg.Topic + "/" + strconv.Itoa(int(msg.Partition)) + "/" + strconv.FormatInt(msg.Offset, 10)
	}
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, id)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	ctx = auth.WithActor(ctx, auth.Actor{UserID: "payments", Role: domainuser.RoleAdmin})
	err := h.apply(ctx, ev)
	switch {
	case err == nil:
	case errors.Is(err, domainbooking.ErrAlreadyCancelled), errors.Is(err, domainbooking.ErrInvalidTransition):
		h.info("payment event ignored", "booking_id", ev.BookingID, "status", ev.Status, "reason", err.Error())
		err = nil
	default:
		if h.Inbox != nil {
			_ = h.Inbox.Forget(ctx, id)
		}
	}
	return err
}

func (h *PaymentsHandler) apply(ctx context.Context, ev PaymentEvent) error {
	switch strings.ToLower(strings.TrimSpace(ev.Status)) {
	case "succeeded", "paid", "confirmed":
		_, err := commands.Dispatch[bookinghandlers.ConfirmBookingCommand, *bookinghandlers.BookingResult](ctx, h.Bus, bookinghandlers.ConfirmBookingCommand{
			BookingID: ev.BookingID,
			Reference: ev.Reference,
		})
		if err == nil {
			h.info("booking confirmed by payment", "booking_id", ev.BookingID, "reference", ev.Reference)
		}
		return err
	case "failed", "refunded", "cancelled":
		_, err := commands.Dispatch[bookinghandlers.CancelBookingCommand, *bookinghandlers.BookingResult](ctx, h.Bus, bookinghandlers.CancelBookingCommand{
			BookingID: ev.BookingID,
			Reason:    "payment " + strings.ToLower(ev.Status),
		})
		return err
	default:
		h.info("payment status not handled", "booking_id", ev.BookingID, "status", ev.Status)
		return nil
	}
}

func (h *PaymentsHandler) info(msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Info(msg, args...)
	}
}

var _ MessageHandler = (*PaymentsHandler)(nil)
