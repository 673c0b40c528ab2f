package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	appoutbox "hotelbooking/internal/app/outbox"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Relay wraps records in a CloudEvents envelope and publishes them to
// "<prefix><aggregate>.events.v1", keyed by aggregate id.
type Relay struct {
	Producer    Producer
	TopicPrefix string
	Source      string
}

func (r Relay) Send(ctx context.Context, rec appoutbox.EventRecord) error {
	payload, headers, err := r.envelope(rec)
	if err != nil {
		return err
	}
	return r.Producer.Publish(ctx, r.TopicFor(rec.Name), rec.Aggregate, payload, headers)
}

func (r Relay) envelope(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              id,
		"type":            rec.Name + ".v1",
		"source":          r.source(),
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (r Relay) TopicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return r.TopicPrefix + base + ".events.v1"
}

func (r Relay) source() string {
	if r.Source != "" {
		return r.Source
	}
	return "app://hotelbooking"
}

// LogProducer stands in for a broker when none is configured.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.Logger != nil {
		p.Logger.Debug("event published", "topic", topic, "key", key, "type", headers["aggregate-type"], "bytes", len(payload))
	}
	return nil
}
