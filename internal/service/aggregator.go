package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/event"
	"github.com/ny-kanto/mall-api/internal/repository"
)

// recomputeFailures counts review writes that left a stale aggregate behind.
var recomputeFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rating_recompute_failures_total",
		Help: "Total number of rating aggregate recomputations that failed after a review write",
	},
	[]string{"entity_type"},
)

// RatingAggregator rewrites the average and count of a shop or product from
// its current reviews.
type RatingAggregator struct {
	reviews  repository.ReviewRepository
	ratables repository.RatableRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewRatingAggregator creates a new rating aggregator.
func NewRatingAggregator(
	reviews repository.ReviewRepository,
	ratables repository.RatableRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *RatingAggregator {
	return &RatingAggregator{
		reviews:  reviews,
		ratables: ratables,
		producer: producer,
		logger:   logger,
	}
}

// Recompute scans every review of the entity and overwrites its aggregate.
// It never reads the previous aggregate, so repeated or concurrent runs
// converge on the same value once writes stop.
//
// A failure is logged and counted before being returned; review writes treat
// it as non-fatal.
func (a *RatingAggregator) Recompute(ctx context.Context, kind domain.EntityKind, entityID string) (domain.RatingSummary, error) {
	summary, err := a.recompute(ctx, kind, entityID)
	if err != nil {
		recomputeFailures.WithLabelValues(string(kind)).Inc()
		a.logger.ErrorContext(ctx, "rating aggregate recompute failed",
			slog.String("entity_type", string(kind)),
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()),
		)
		return domain.RatingSummary{}, err
	}

	if err := a.producer.PublishRatingRecomputed(ctx, kind, entityID, summary); err != nil {
		a.logger.ErrorContext(ctx, "failed to publish rating.recomputed event",
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}

func (a *RatingAggregator) recompute(ctx context.Context, kind domain.EntityKind, entityID string) (domain.RatingSummary, error) {
	summary, err := a.reviews.Summary(ctx, kind, entityID)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("summarize reviews: %w", err)
	}
	if err := a.ratables.SetRating(ctx, kind, entityID, summary); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("set rating: %w", err)
	}
	return summary, nil
}
