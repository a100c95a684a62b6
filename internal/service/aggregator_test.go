package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/event"
	pkgkafka "github.com/ny-kanto/mall-api/pkg/kafka"
)

type recordingPublisher struct {
	topics []string
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ *pkgkafka.Event) error {
	r.topics = append(r.topics, topic)
	return nil
}

func TestRecompute_RoundsAndOverwrites(t *testing.T) {
	store := newMemStore()
	store.addEntity(domain.EntityProduit, productP1)
	agg := NewRatingAggregator(store, store, event.NewProducer(nil, newTestLogger()), newTestLogger())
	ctx := context.Background()

	for i, note := range []float64{4, 4, 3} {
		_, err := store.Upsert(ctx, &domain.Review{ID: string(rune('a' + i)), UserID: string(rune('a' + i)), EntityType: domain.EntityProduit, EntityID: productP1, Note: note})
		require.NoError(t, err)
	}

	summary, err := agg.Recompute(ctx, domain.EntityProduit, productP1)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingSummary{NoteMoyenne: 3.7, NoteCompte: 3}, summary)
	assert.Equal(t, summary, store.rating(domain.EntityProduit, productP1))

	// Running again without writes changes nothing.
	again, err := agg.Recompute(ctx, domain.EntityProduit, productP1)
	require.NoError(t, err)
	assert.Equal(t, summary, again)
}

func TestRecompute_PublishesEvent(t *testing.T) {
	store := newMemStore()
	store.addEntity(domain.EntityBoutique, shopB1)
	pub := &recordingPublisher{}
	agg := NewRatingAggregator(store, store, event.NewProducer(pub, newTestLogger()), newTestLogger())

	_, err := agg.Recompute(context.Background(), domain.EntityBoutique, shopB1)
	require.NoError(t, err)
	assert.Equal(t, []string{event.TopicRatingRecomputed}, pub.topics)
}

func TestRecompute_MissingEntity(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{}
	agg := NewRatingAggregator(store, store, event.NewProducer(pub, newTestLogger()), newTestLogger())

	_, err := agg.Recompute(context.Background(), domain.EntityProduit, "gone")
	assert.Error(t, err)
	assert.Empty(t, pub.topics)
}

func TestUpsertReview_PublishesReviewThenRating(t *testing.T) {
	store := newMemStore()
	store.addEntity(domain.EntityProduit, productP1)
	pub := &recordingPublisher{}
	logger := newTestLogger()
	producer := event.NewProducer(pub, logger)
	svc := NewReviewService(store, store, NewRatingAggregator(store, store, producer, logger), producer, logger)

	review := upsert(t, svc, "u1", "produit", productP1, 5, nil)
	_, err := svc.Delete(context.Background(), review.ID, "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		event.TopicRatingRecomputed,
		event.TopicAvisUpserted,
		event.TopicRatingRecomputed,
		event.TopicAvisDeleted,
	}, pub.topics)
}
