package kafka

import (
	"context"
	"encoding/json"

	"hotelbooking/internal/app/policies"
)

// Publisher is satisfied by Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Notifier hands guest emails to the mail service through a topic.
type Notifier struct {
	Publisher Publisher
	Topic     string
}

func (n Notifier) SendBookingConfirmation(ctx context.Context, notice policies.BookingNotice) error {
	notice.Kind = policies.NoticeBookingConfirmation
	return n.send(ctx, notice)
}

func (n Notifier) SendCancellationConfirmation(ctx context.Context, notice policies.BookingNotice) error {
	notice.Kind = policies.NoticeCancellation
	return n.send(ctx, notice)
}

func (n Notifier) send(ctx context.Context, notice policies.BookingNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	headers := map[string]string{
		"content-type": "application/json",
		"notice-kind":  string(notice.Kind),
	}
	return n.Publisher.Publish(ctx, n.Topic, notice.BookingID, payload, headers)
}

var _ policies.Notifier = Notifier{}
