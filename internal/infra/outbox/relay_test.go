package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "hotelbooking/internal/app/outbox"
)

type recordingProducer struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

func (p *recordingProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.topic, p.key, p.payload, p.headers = topic, key, payload, headers
	return nil
}

func TestRelayWrapsCloudEvent(t *testing.T) {
	producer := &recordingProducer{}
	relay := Relay{Producer: producer, TopicPrefix: "prod."}
	at := time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

	err := relay.Send(context.Background(), appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.cancelled",
		Aggregate:  "b-1",
		OccurredAt: at,
		Payload:    []byte(`{"noOfRooms":2}`),
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	})
	require.NoError(t, err)

	assert.Equal(t, "prod.booking.events.v1", producer.topic)
	assert.Equal(t, "b-1", producer.key)
	assert.Equal(t, "application/cloudevents+json", producer.headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(producer.payload, &evt))
	assert.Equal(t, "booking.cancelled.v1", evt["type"])
	assert.Equal(t, "app://hotelbooking", evt["source"])
	assert.Equal(t, "00-abc-def-01", evt["traceparent"])
	assert.Equal(t, map[string]any{"noOfRooms": float64(2)}, evt["data"])
}

func TestRelayRejectsNonObjectPayload(t *testing.T) {
	relay := Relay{Producer: &recordingProducer{}}
	err := relay.Send(context.Background(), appoutbox.EventRecord{Name: "room.rated", Payload: []byte(`[1]`)})
	assert.Error(t, err)
}

func TestTopicFor(t *testing.T) {
	relay := Relay{}
	assert.Equal(t, "room.events.v1", relay.TopicFor("room.inventory_changed"))
	assert.Equal(t, "audit.events.v1", relay.TopicFor("audit"))
}

func TestRetryDelay(t *testing.T) {
	schedule := []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}
	assert.Equal(t, time.Second, retryDelay(schedule, 0))
	assert.Equal(t, 30*time.Second, retryDelay(schedule, 2))
	assert.Equal(t, 30*time.Second, retryDelay(schedule, 9))
	assert.Equal(t, 5*time.Second, retryDelay(nil, 3))
}

func TestWorkerRequiresStore(t *testing.T) {
	w := &Worker{Relay: Relay{Producer: &recordingProducer{}}}
	assert.ErrorIs(t, w.Run(context.Background()), ErrWorkerNotConfigured)
}
