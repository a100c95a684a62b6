package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ny-kanto/mall-api/internal/domain"
	pkgkafka "github.com/ny-kanto/mall-api/pkg/kafka"
	"github.com/ny-kanto/mall-api/pkg/logger"
)

// Kafka topics for review and rating events.
var (
	TopicAvisUpserted     = pkgkafka.Topic("avis", "upserted")
	TopicAvisDeleted      = pkgkafka.Topic("avis", "deleted")
	TopicRatingRecomputed = pkgkafka.Topic("rating", "recomputed")
)

const (
	AggregateTypeAvis = "avis"
	SourceMallAPI     = "mall-api"
)

// AvisData is the payload of avis.upserted and avis.deleted events.
type AvisData struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	EntityType string  `json:"entityType"`
	EntityID   string  `json:"entityId"`
	Note       float64 `json:"note"`
	Inserted   bool    `json:"inserted,omitempty"`
}

// RatingData is the payload of a rating.recomputed event.
type RatingData struct {
	EntityType  string  `json:"entityType"`
	EntityID    string  `json:"entityId"`
	NoteMoyenne float64 `json:"noteMoyenne"`
	NoteCompte  int     `json:"noteCompte"`
}

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes mall domain events. A Producer without a publisher
// drops every event, which is how EVENTS_ENABLED=false is honored.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer. publisher may be nil.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// Enabled reports whether events leave the process.
func (p *Producer) Enabled() bool {
	return p != nil && p.publisher != nil
}

// PublishAvisUpserted publishes an avis.upserted event.
func (p *Producer) PublishAvisUpserted(ctx context.Context, review *domain.Review, inserted bool) error {
	return p.publish(ctx, TopicAvisUpserted, review.ID, AggregateTypeAvis, avisData(review, inserted))
}

// PublishAvisDeleted publishes an avis.deleted event.
func (p *Producer) PublishAvisDeleted(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicAvisDeleted, review.ID, AggregateTypeAvis, avisData(review, false))
}

// PublishRatingRecomputed publishes a rating.recomputed event keyed by the
// rated entity.
func (p *Producer) PublishRatingRecomputed(ctx context.Context, kind domain.EntityKind, entityID string, summary domain.RatingSummary) error {
	data := RatingData{
		EntityType:  string(kind),
		EntityID:    entityID,
		NoteMoyenne: summary.NoteMoyenne,
		NoteCompte:  summary.NoteCompte,
	}
	return p.publish(ctx, TopicRatingRecomputed, entityID, string(kind), data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if !p.Enabled() {
		return nil
	}

	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceMallAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if uid := logger.UserIDFromContext(ctx); uid != "" {
		evt.WithMetadata("user_id", uid)
	}
	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func avisData(review *domain.Review, inserted bool) AvisData {
	return AvisData{
		ID:         review.ID,
		UserID:     review.UserID,
		EntityType: string(review.EntityType),
		EntityID:   review.EntityID,
		Note:       review.Note,
		Inserted:   inserted,
	}
}
