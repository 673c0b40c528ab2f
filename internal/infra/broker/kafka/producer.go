package kafka

import (
	"context"
	"sort"

	"github.com/IBM/sarama"
)

const clientID = "hotelbooking"

// Producer publishes booking events and guest notices. Records are keyed by
// aggregate id so every change to one booking lands on the same partition.
type Producer struct {
	sync sarama.SyncProducer
}

// NewProducer builds an idempotent producer that waits for all in-sync replicas.
func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Net.MaxOpenRequests = 1
	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sp}, nil
}

// NewProducerFrom wraps an existing sync producer, such as a sarama mock.
func NewProducerFrom(sp sarama.SyncProducer) *Producer {
	return &Producer{sync: sp}
}

// Publish gives up early when ctx is already done; an in-flight send is not interrupted.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.sync.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	})
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// recordHeaders sorts by name so identical events produce identical records.
func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]sarama.RecordHeader, 0, len(names))
	for _, k := range names {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])})
	}
	return out
}
