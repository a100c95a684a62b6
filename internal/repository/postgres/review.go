package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/database"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Upsert inserts the review or, when the user already rated the entity,
// overwrites its score and comment. The conflict is resolved by the unique
// constraint, so concurrent upserts of one user converge on a single row.
func (r *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) (inserted bool, err error) {
	query := `
		INSERT INTO avis (id, user_id, entity_type, entity_id, note, commentaire, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, entity_type, entity_id) DO UPDATE
		SET note = EXCLUDED.note,
		    commentaire = EXCLUDED.commentaire,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

	ctx, end := database.TraceQuery(ctx, "UpsertAvis", query)
	defer func() { end(err) }()

	err = r.pool.QueryRow(ctx, query,
		review.ID,
		review.UserID,
		string(review.EntityType),
		review.EntityID,
		review.Note,
		review.Commentaire,
		review.CreatedAt,
		review.UpdatedAt,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt, &inserted)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, errUnknownAccount
		}
		return false, fmt.Errorf("upsert review: %w", err)
	}

	return inserted, nil
}

// Delete removes the review when both its id and its author match.
func (r *ReviewRepository) Delete(ctx context.Context, id, userID string) (_ *domain.Review, err error) {
	query := `
		DELETE FROM avis
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, entity_type, entity_id, note, commentaire, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "DeleteAvis", query)
	defer func() { end(err) }()

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("avis", id)
		}
		return nil, fmt.Errorf("delete review: %w", err)
	}

	return rv, nil
}

// CountByEntity counts the reviews of an entity.
func (r *ReviewRepository) CountByEntity(ctx context.Context, kind domain.EntityKind, entityID string) (n int, err error) {
	query := `SELECT COUNT(*) FROM avis WHERE entity_type = $1 AND entity_id = $2`

	ctx, end := database.TraceQuery(ctx, "CountAvis", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, string(kind), entityID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// ListByEntity returns one window of an entity's reviews, newest first.
func (r *ReviewRepository) ListByEntity(ctx context.Context, kind domain.EntityKind, entityID string, limit, skip int) (_ []domain.Review, err error) {
	query := `
		SELECT a.id, a.user_id, a.entity_type, a.entity_id, a.note, a.commentaire,
		       a.created_at, a.updated_at, u.nom, u.email
		FROM avis a
		JOIN users u ON u.id = a.user_id
		WHERE a.entity_type = $1 AND a.entity_id = $2
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $3 OFFSET $4`

	ctx, end := database.TraceQuery(ctx, "ListAvis", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, string(kind), entityID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			rv         domain.Review
			entityType string
			reviewer   domain.Reviewer
		)
		if err = rows.Scan(
			&rv.ID,
			&rv.UserID,
			&entityType,
			&rv.EntityID,
			&rv.Note,
			&rv.Commentaire,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&reviewer.Nom,
			&reviewer.Email,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		rv.EntityType = domain.EntityKind(entityType)
		reviewer.ID = rv.UserID
		rv.Reviewer = &reviewer
		reviews = append(reviews, rv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// Summary computes the aggregate of an entity from its current reviews.
func (r *ReviewRepository) Summary(ctx context.Context, kind domain.EntityKind, entityID string) (_ domain.RatingSummary, err error) {
	query := `
		SELECT COALESCE(AVG(note), 0)::float8, COUNT(*)
		FROM avis
		WHERE entity_type = $1 AND entity_id = $2`

	ctx, end := database.TraceQuery(ctx, "SummarizeAvis", query)
	defer func() { end(err) }()

	var (
		avg   float64
		count int
	)
	if err = r.pool.QueryRow(ctx, query, string(kind), entityID).Scan(&avg, &count); err != nil {
		return domain.RatingSummary{}, fmt.Errorf("summarize reviews: %w", err)
	}

	return domain.NewRatingSummary(avg, count), nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		rv         domain.Review
		entityType string
	)
	if err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&entityType,
		&rv.EntityID,
		&rv.Note,
		&rv.Commentaire,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rv.EntityType = domain.EntityKind(entityType)
	return &rv, nil
}
