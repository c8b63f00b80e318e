package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/haulstack/supportbot/pkg/models"
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("event publisher is closed")

// Publisher delivers bot events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event models.BotEvent) error
	Close() error
}

// KafkaConfig holds the event stream settings.
type KafkaConfig struct {
	Enabled bool          `yaml:"enabled"`
	Brokers []string      `yaml:"brokers"`
	Topic   string        `yaml:"topic"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultKafkaConfig returns the shipped event stream settings. Publishing
// is off until explicitly enabled.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Enabled: false,
		Brokers: []string{"localhost:9092"},
		Topic:   "supportbot.events",
		Timeout: 10 * time.Second,
	}
}

// KafkaPublisher writes bot events to a Kafka topic, keyed by user so one
// user's events stay ordered within a partition.
type KafkaPublisher struct {
	writer  *kafka.Writer
	brokers []string
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewKafkaPublisher validates the config and builds a publisher. The writer
// dials lazily, so construction succeeds without a reachable broker.
func NewKafkaPublisher(config KafkaConfig) (*KafkaPublisher, error) {
	if len(config.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if config.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer:  writer,
		brokers: config.Brokers,
		timeout: config.Timeout,
	}, nil
}

// Publish sends one event, bounded by the configured timeout.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.BotEvent) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPublisherClosed
	}
	p.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	})
}

// Ping dials the first broker and asks for the cluster controller. Used by
// the health endpoint.
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Controller(); err != nil {
		return fmt.Errorf("kafka controller: %w", err)
	}
	return nil
}

// Close flushes and shuts down the writer. Safe to call twice.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// NopPublisher drops every event. Used when the event stream is disabled.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(context.Context, models.BotEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
