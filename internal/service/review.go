package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/event"
	"github.com/ny-kanto/mall-api/internal/repository"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/pagination"
)

// UpsertReviewInput holds the parameters for writing a review.
type UpsertReviewInput struct {
	UserID      string
	EntityType  string
	EntityID    string
	Note        float64
	Commentaire *string
}

// ReviewService implements the business logic for reviews.
type ReviewService struct {
	reviews    repository.ReviewRepository
	ratables   repository.RatableRepository
	aggregator *RatingAggregator
	producer   *event.Producer
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	ratables repository.RatableRepository,
	aggregator *RatingAggregator,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		ratables:   ratables,
		aggregator: aggregator,
		producer:   producer,
		logger:     logger,
	}
}

// Upsert writes the caller's review of an entity, replacing the score and
// comment of an earlier one. inserted reports whether the review is new.
func (s *ReviewService) Upsert(ctx context.Context, input *UpsertReviewInput) (review *domain.Review, inserted bool, err error) {
	kind, ok := domain.ParseEntityKind(input.EntityType)
	if !ok {
		return nil, false, apperrors.InvalidInput(fmt.Sprintf("entityType must be %q or %q", domain.EntityBoutique, domain.EntityProduit))
	}
	if !domain.ValidNote(input.Note) {
		return nil, false, apperrors.InvalidInput(fmt.Sprintf("note must be between %d and %d", domain.MinNote, domain.MaxNote))
	}
	if err := s.ensureExists(ctx, kind, input.EntityID); err != nil {
		return nil, false, err
	}

	var commentaire string
	if input.Commentaire != nil {
		commentaire = strings.TrimSpace(*input.Commentaire)
	}

	now := time.Now().UTC()
	review = &domain.Review{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		EntityType:  kind,
		EntityID:    input.EntityID,
		Note:        input.Note,
		Commentaire: commentaire,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	inserted, err = s.reviews.Upsert(ctx, review)
	if err != nil {
		return nil, false, fmt.Errorf("upsert review: %w", err)
	}

	// The row is committed; a stale aggregate is logged by the aggregator.
	_, _ = s.aggregator.Recompute(ctx, kind, review.EntityID)

	if err := s.producer.PublishAvisUpserted(ctx, review, inserted); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish avis.upserted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review saved",
		slog.String("review_id", review.ID),
		slog.String("entity_type", string(kind)),
		slog.String("entity_id", review.EntityID),
		slog.String("user_id", review.UserID),
		slog.Bool("inserted", inserted),
	)

	return review, inserted, nil
}

// Delete removes a review owned by userID. Missing and foreign reviews are
// both reported as NotFound.
func (s *ReviewService) Delete(ctx context.Context, id, userID string) (*domain.Review, error) {
	review, err := s.reviews.Delete(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("delete review: %w", err)
	}

	_, _ = s.aggregator.Recompute(ctx, review.EntityType, review.EntityID)

	if err := s.producer.PublishAvisDeleted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish avis.deleted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", review.ID),
		slog.String("entity_type", string(review.EntityType)),
		slog.String("entity_id", review.EntityID),
	)

	return review, nil
}

// List returns one page of an entity's reviews, newest first.
func (s *ReviewService) List(ctx context.Context, entityType, entityID string, params pagination.Params) (pagination.Result[domain.Review], error) {
	kind, ok := domain.ParseEntityKind(entityType)
	if !ok {
		return pagination.Result[domain.Review]{}, apperrors.InvalidInput(fmt.Sprintf("entityType must be %q or %q", domain.EntityBoutique, domain.EntityProduit))
	}
	if err := s.ensureExists(ctx, kind, entityID); err != nil {
		return pagination.Result[domain.Review]{}, err
	}

	return pagination.Paginate(ctx, params,
		func(ctx context.Context) (int, error) {
			return s.reviews.CountByEntity(ctx, kind, entityID)
		},
		func(ctx context.Context, limit, skip int) ([]domain.Review, error) {
			return s.reviews.ListByEntity(ctx, kind, entityID, limit, skip)
		},
	)
}

func (s *ReviewService) ensureExists(ctx context.Context, kind domain.EntityKind, id string) error {
	exists, err := s.ratables.Exists(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("check %s: %w", kind, err)
	}
	if !exists {
		return apperrors.NotFound(string(kind), id)
	}
	return nil
}
