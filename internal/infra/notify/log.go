package notify

import (
	"context"
	"log/slog"

	"hotelbooking/internal/app/policies"
)

// LogNotifier records guest emails in the log when no mail pipeline is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) SendBookingConfirmation(ctx context.Context, notice policies.BookingNotice) error {
	n.log(ctx, "booking confirmation email", notice)
	return nil
}

func (n LogNotifier) SendCancellationConfirmation(ctx context.Context, notice policies.BookingNotice) error {
	n.log(ctx, "cancellation confirmation email", notice)
	return nil
}

func (n LogNotifier) log(ctx context.Context, msg string, notice policies.BookingNotice) {
	if n.Logger == nil {
		return
	}
	n.Logger.InfoContext(ctx, msg,
		"booking_id", notice.BookingID,
		"to", notice.Email,
		"room", notice.RoomName,
		"check_in", notice.CheckIn.Format("2006-01-02"),
		"check_out", notice.CheckOut.Format("2006-01-02"),
		"total", notice.TotalPrice+" "+notice.Currency,
	)
}

var _ policies.Notifier = LogNotifier{}
