package postgres

import (
	"context"
	"fmt"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/database"
)

// CategorieRepository implements repository.CategorieRepository using PostgreSQL.
type CategorieRepository struct {
	pool database.DBTX
}

// NewCategorieRepository creates a new PostgreSQL-backed category repository.
func NewCategorieRepository(pool database.DBTX) *CategorieRepository {
	return &CategorieRepository{pool: pool}
}

// List returns every category ordered by name.
func (r *CategorieRepository) List(ctx context.Context) ([]domain.Categorie, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nom FROM categories ORDER BY nom, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Categorie{}
	for rows.Next() {
		var c domain.Categorie
		if err := rows.Scan(&c.ID, &c.Nom); err != nil {
			return nil, fmt.Errorf("scan categorie row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categorie rows: %w", err)
	}
	return categories, nil
}

// Exists reports whether a category exists.
func (r *CategorieRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check categorie exists: %w", err)
	}
	return ok, nil
}
