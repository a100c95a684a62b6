package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/ny-kanto/mall-api/pkg/logger"
)

// TopicPrefix namespaces every topic the API writes to.
const TopicPrefix = "mall"

// Topic returns "mall.<domain>.<action>".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}

var (
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_producer_messages_published_total",
		Help: "Messages accepted by the brokers, by topic.",
	}, []string{"topic"})

	publishErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kafka_producer_publish_errors_total",
		Help: "Messages the brokers rejected or never acknowledged, by topic.",
	}, []string{"topic"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kafka_producer_publish_duration_seconds",
		Help:    "Time to write one message, by topic.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"topic"})
)

// ProducerConfig configures the underlying kafka-go writer.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	// Async returns from Publish before the brokers acknowledge.
	Async bool
}

// DefaultProducerConfig favours latency: small batches flushed after 10ms
// and synchronous acknowledgement from all replicas.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes Events as JSON messages.
type Producer struct {
	writer  messageWriter
	brokers []string
	logger  *slog.Logger
}

// NewProducer builds a producer. Brokers are dialled lazily on the first
// Publish.
func NewProducer(cfg ProducerConfig, logger *slog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, cfg.Brokers, logger)
}

func newProducer(w messageWriter, brokers []string, l *slog.Logger) *Producer {
	if l == nil {
		l = slog.Default()
	}
	return &Producer{writer: w, brokers: brokers, logger: l}
}

// Publish writes event to topic keyed by its aggregate ID, which keeps the
// events of one entity ordered. The request's correlation ID and trace
// context travel in the message headers.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	if event.CorrelationID == "" {
		event.CorrelationID = logger.CorrelationIDFromContext(ctx)
	}
	msg, err := message(topic, event)
	if err != nil {
		return err
	}
	otel.GetTextMapPropagator().Inject(ctx, NewHeaderCarrier(&msg))

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	publishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())

	attrs := []any{
		slog.String("topic", topic),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	}
	if err != nil {
		publishErrorsTotal.WithLabelValues(topic).Inc()
		p.logger.ErrorContext(ctx, "failed to publish event", append(attrs, slog.String("error", err.Error()))...)
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}
	publishedTotal.WithLabelValues(topic).Inc()
	p.logger.DebugContext(ctx, "event published", attrs...)
	return nil
}

func message(topic string, event *Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID),
		Value: value,
	}
	h := NewHeaderCarrier(&msg)
	h.Set("event_type", event.EventType)
	h.Set("source", event.Source)
	if event.CorrelationID != "" {
		h.Set("correlation_id", event.CorrelationID)
	}
	return msg, nil
}

// Ping succeeds when any configured broker answers a metadata request.
func (p *Producer) Ping(ctx context.Context) error {
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers tries each broker in turn and returns nil on the first that
// answers.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	var errs []error
	for _, addr := range brokers {
		if err := pingBroker(ctx, addr); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka ping: all brokers unreachable: %w", errors.Join(errs...))
}

func pingBroker(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Brokers()
	return err
}

// Close flushes buffered messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
