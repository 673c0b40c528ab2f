package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/app/commands"
	bookinghandlers "hotelbooking/internal/app/handlers/booking"
	"hotelbooking/internal/app/policies"
	domainbooking "hotelbooking/internal/domain/booking"
	"hotelbooking/internal/infra/storage/memory"
)

func TestProducerSendsKeyedRecord(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, _ := msg.Key.Encode()
		if string(key) != "b-1" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 2 || string(msg.Headers[0].Key) != "a" || string(msg.Headers[1].Key) != "event-name" {
			return errors.New("headers not sorted")
		}
		return nil
	})
	p := NewProducerFrom(sp)

	err := p.Publish(context.Background(), "booking.created", "b-1", []byte(`{}`), map[string]string{"event-name": "booking.created", "a": "1"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducerHonoursCancelledContext(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := NewProducerFrom(sp)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Publish(ctx, "t", "k", nil, nil), context.Canceled)
	require.NoError(t, p.Close())
}

type capturePublisher struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

func (c *capturePublisher) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	c.topic, c.key, c.payload, c.headers = topic, key, payload, headers
	return nil
}

func TestNotifierPublishesNotice(t *testing.T) {
	pub := &capturePublisher{}
	n := Notifier{Publisher: pub, Topic: "notifications.email.v1"}

	require.NoError(t, n.SendCancellationConfirmation(context.Background(), policies.BookingNotice{BookingID: "b-9", Email: "guest@example.com"}))

	assert.Equal(t, "notifications.email.v1", pub.topic)
	assert.Equal(t, "b-9", pub.key)
	assert.Equal(t, string(policies.NoticeCancellation), pub.headers["notice-kind"])
	var got policies.BookingNotice
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, policies.NoticeCancellation, got.Kind)
	assert.Equal(t, "guest@example.com", got.Email)
}

type paymentsHarness struct {
	confirmed  []string
	cancelled  []string
	confirmErr error
	handler    *PaymentsHandler
}

func newPaymentsHarness() *paymentsHarness {
	h := &paymentsHarness{}
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookinghandlers.ConfirmBookingCommand, *bookinghandlers.BookingResult](bus, bookinghandlers.ConfirmBookingKey,
		commands.HandlerFunc[bookinghandlers.ConfirmBookingCommand, *bookinghandlers.BookingResult](func(_ context.Context, cmd bookinghandlers.ConfirmBookingCommand) (*bookinghandlers.BookingResult, error) {
			if h.confirmErr != nil {
				return nil, h.confirmErr
			}
			h.confirmed = append(h.confirmed, cmd.BookingID+"/"+cmd.Reference)
			return &bookinghandlers.BookingResult{}, nil
		}))
	commands.RegisterHandler[bookinghandlers.CancelBookingCommand, *bookinghandlers.BookingResult](bus, bookinghandlers.CancelBookingKey,
		commands.HandlerFunc[bookinghandlers.CancelBookingCommand, *bookinghandlers.BookingResult](func(_ context.Context, cmd bookinghandlers.CancelBookingCommand) (*bookinghandlers.BookingResult, error) {
			h.cancelled = append(h.cancelled, cmd.BookingID+"/"+cmd.Reason)
			return &bookinghandlers.BookingResult{}, nil
		}))
	h.handler = &PaymentsHandler{Bus: bus, Inbox: memory.NewInbox()}
	return h
}

func paymentMessage(t *testing.T, ev PaymentEvent) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "payments.events.v1", Partition: 0, Offset: 7, Value: raw}
}

func TestPaymentsConfirmOnceAndCancelOnFailure(t *testing.T) {
	h := newPaymentsHarness()
	ctx := context.Background()

	paid := paymentMessage(t, PaymentEvent{EventID: "e1", BookingID: "b-1", Status: "Succeeded", Reference: "ch_1"})
	require.NoError(t, h.handler.Handle(ctx, paid))
	require.NoError(t, h.handler.Handle(ctx, paid))
	assert.Equal(t, []string{"b-1/ch_1"}, h.confirmed)

	require.NoError(t, h.handler.Handle(ctx, paymentMessage(t, PaymentEvent{EventID: "e2", BookingID: "b-2", Status: "failed"})))
	assert.Equal(t, []string{"b-2/payment failed"}, h.cancelled)

	require.NoError(t, h.handler.Handle(ctx, paymentMessage(t, PaymentEvent{EventID: "e3", BookingID: "b-3", Status: "pending"})))
	assert.Len(t, h.confirmed, 1)
	assert.Len(t, h.cancelled, 1)
}

func TestPaymentsRetryAfterFailure(t *testing.T) {
	h := newPaymentsHarness()
	ctx := context.Background()
	msg := paymentMessage(t, PaymentEvent{EventID: "e1", BookingID: "b-1", Status: "paid"})

	h.confirmErr = errors.New("mongo unavailable")
	assert.Error(t, h.handler.Handle(ctx, msg))

	h.confirmErr = nil
	require.NoError(t, h.handler.Handle(ctx, msg))
	assert.Len(t, h.confirmed, 1, "a failed delivery is forgotten and processed again")
}

func TestPaymentsIgnoreTerminalBookings(t *testing.T) {
	h := newPaymentsHarness()
	h.confirmErr = domainbooking.ErrAlreadyCancelled

	err := h.handler.Handle(context.Background(), paymentMessage(t, PaymentEvent{BookingID: "b-1", Status: "paid"}))
	assert.NoError(t, err)
}

func TestPaymentsRejectMalformed(t *testing.T) {
	h := newPaymentsHarness()
	err := h.handler.Handle(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")})
	assert.ErrorIs(t, err, ErrMalformedPayment)

	err = h.handler.Handle(context.Background(), paymentMessage(t, PaymentEvent{EventID: "x", Status: "paid"}))
	assert.ErrorIs(t, err, ErrMalformedPayment)
}
