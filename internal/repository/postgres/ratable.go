package postgres

import (
	"context"
	"fmt"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/database"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
)

// ratableTables maps an entity kind to the table carrying its aggregate.
var ratableTables = map[domain.EntityKind]string{
	domain.EntityBoutique: "boutiques",
	domain.EntityProduit:  "produits",
}

// RatableRepository implements repository.RatableRepository over the shop
// and product tables.
type RatableRepository struct {
	pool database.DBTX
}

// NewRatableRepository creates a new PostgreSQL-backed ratable repository.
func NewRatableRepository(pool database.DBTX) *RatableRepository {
	return &RatableRepository{pool: pool}
}

func tableFor(kind domain.EntityKind) (string, error) {
	table, ok := ratableTables[kind]
	if !ok {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown entity type %q", kind))
	}
	return table, nil
}

// Exists reports whether the rated entity exists.
func (r *RatableRepository) Exists(ctx context.Context, kind domain.EntityKind, id string) (ok bool, err error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)

	ctx, end := database.TraceQuery(ctx, "EntityExists", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check %s exists: %w", kind, err)
	}
	return ok, nil
}

// SetRating overwrites the aggregate of the entity. The write is blind: it
// never reads the previous aggregate.
func (r *RatableRepository) SetRating(ctx context.Context, kind domain.EntityKind, id string, s domain.RatingSummary) (err error) {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET note_moyenne = $1, note_compte = $2 WHERE id = $3`, table)

	ctx, end := database.TraceQuery(ctx, "SetRating", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, s.NoteMoyenne, s.NoteCompte, id)
	if err != nil {
		return fmt.Errorf("set %s rating: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(string(kind), id)
	}
	return nil
}
