package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ny-kanto/mall-api/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type ratingData struct {
	EntityID string  `json:"entityId"`
	Average  float64 `json:"noteMoyenne"`
}

func TestNewEvent_Fields(t *testing.T) {
	data := ratingData{EntityID: "p-1", Average: 4.5}
	event, err := NewEvent("rating.recomputed", "p-1", "produit", "mall-api", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "rating.recomputed", event.EventType)
	assert.Equal(t, "p-1", event.AggregateID)
	assert.Equal(t, "produit", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got ratingData
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("test.event", "agg-1", "test", "mall-api", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test.event")
}

func TestEvent_WithCorrelationIDAndMetadata(t *testing.T) {
	event, err := NewEvent("avis.deleted", "a-1", "avis", "mall-api", nil)
	require.NoError(t, err)
	event.WithCorrelationID("corr-1").WithMetadata("user_id", "u-1")

	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, "u-1", event.Metadata["user_id"])
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "mall.avis.upserted", Topic("avis", "upserted"))
	assert.Equal(t, "mall.rating.recomputed", Topic("rating", "recomputed"))
}

func TestHeaderCarrier(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "source", Value: []byte("mall-api")}}}
	c := NewHeaderCarrier(&msg)

	assert.Equal(t, "mall-api", c.Get("source"))
	assert.Empty(t, c.Get("missing"))

	c.Set("source", "worker")
	c.Set("event_type", "avis.deleted")

	assert.Equal(t, []string{"source", "event_type"}, c.Keys())
	assert.Equal(t, "worker", string(msg.Headers[0].Value))
	assert.Len(t, msg.Headers, 2)
}

func TestProducer_Publish_CorrelationFromContext(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, nil)
	event, err := NewEvent("avis.upserted", "a-1", "avis", "mall-api", nil)
	require.NoError(t, err)

	ctx := logger.WithCorrelationID(context.Background(), "req-77")
	require.NoError(t, p.Publish(ctx, Topic("avis", "upserted"), event))

	assert.Equal(t, "req-77", event.CorrelationID)
	assert.Equal(t, "req-77", NewHeaderCarrier(&w.msgs[0]).Get("correlation_id"))
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
}

func TestProducer_Publish_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, []string{"localhost:9092"}, nil)

	event, err := NewEvent("avis.upserted", "p-1", "produit", "mall-api", ratingData{EntityID: "p-1"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	topic := Topic("avis", "upserted")
	before := testutil.ToFloat64(publishedTotal.WithLabelValues(topic))

	require.NoError(t, p.Publish(context.Background(), topic, event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, []byte("p-1"), msg.Key)

	carrier := NewHeaderCarrier(&msg)
	assert.Equal(t, "avis.upserted", carrier.Get("event_type"))
	assert.Equal(t, "corr-9", carrier.Get("correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)

	assert.Equal(t, before+1, testutil.ToFloat64(publishedTotal.WithLabelValues(topic)))
}

func TestProducer_Publish_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := newProducer(w, nil, nil)
	event, err := NewEvent("avis.deleted", "b-1", "boutique", "mall-api", nil)
	require.NoError(t, err)
	require.NoError(t, p.Publish(ctx, Topic("avis", "deleted"), event))

	got := NewHeaderCarrier(&w.msgs[0]).Get("traceparent")
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", got)
}

func TestProducer_Publish_Error(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newProducer(w, nil, nil)

	topic := Topic("rating", "recomputed")
	before := testutil.ToFloat64(publishErrorsTotal.WithLabelValues(topic))

	event, err := NewEvent("rating.recomputed", "p-1", "produit", "mall-api", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), topic, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), topic)
	assert.Equal(t, before+1, testutil.ToFloat64(publishErrorsTotal.WithLabelValues(topic)))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, nil)
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducer_DoesNotConnect(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestPingBrokers_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	err := PingBrokers(ctx, []string{"127.0.0.1:1", "127.0.0.1:2"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Contains(t, err.Error(), "127.0.0.1:2")
}
