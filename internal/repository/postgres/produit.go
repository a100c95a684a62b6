package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/database"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/filter"
)

const produitColumns = `id, nom, boutique_id, categorie_id, description, prix, images,
		note_moyenne, note_compte, created_at, updated_at`

// ProduitRepository implements repository.ProduitRepository using PostgreSQL.
type ProduitRepository struct {
	pool database.DBTX
}

// NewProduitRepository creates a new PostgreSQL-backed product repository.
func NewProduitRepository(pool database.DBTX) *ProduitRepository {
	return &ProduitRepository{pool: pool}
}

// Create inserts a new product. The aggregate starts at zero.
func (r *ProduitRepository) Create(ctx context.Context, p *domain.Produit) error {
	images, err := marshalImages(p.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO produits (id, nom, boutique_id, categorie_id, description, prix, images,
		                      note_moyenne, note_compte, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.Nom,
		p.BoutiqueID,
		p.CategorieID,
		p.Description,
		p.Prix,
		images,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("unknown boutique or categorie")
		}
		return fmt.Errorf("insert produit: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProduitRepository) GetByID(ctx context.Context, id string) (*domain.Produit, error) {
	query := `SELECT ` + produitColumns + ` FROM produits WHERE id = $1`

	p, err := scanProduit(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("produit", id)
		}
		return nil, fmt.Errorf("get produit: %w", err)
	}
	return p, nil
}

// Update modifies the writable fields of a product.
func (r *ProduitRepository) Update(ctx context.Context, p *domain.Produit) error {
	images, err := marshalImages(p.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE produits
		SET nom = $1, boutique_id = $2, categorie_id = $3, description = $4, prix = $5,
		    images = $6, updated_at = $7
		WHERE id = $8`

	tag, err := r.pool.Exec(ctx, query,
		p.Nom,
		p.BoutiqueID,
		p.CategorieID,
		p.Description,
		p.Prix,
		images,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("unknown boutique or categorie")
		}
		return fmt.Errorf("update produit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("produit", p.ID)
	}
	return nil
}

// Delete removes a product and the reviews targeting it.
func (r *ProduitRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete produit: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM avis WHERE entity_type = 'produit' AND entity_id = $1`, id); err != nil {
		return fmt.Errorf("delete produit reviews: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM produits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete produit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("produit", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete produit: %w", err)
	}
	return nil
}

// Count counts the products matching where.
func (r *ProduitRepository) Count(ctx context.Context, where filter.Predicate) (n int, err error) {
	cond, args := whereClause(where)
	query := `SELECT COUNT(*) FROM produits ` + cond

	ctx, end := database.TraceQuery(ctx, "CountProduits", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, listingError("count produits", err)
	}
	return n, nil
}

// List returns the products matching where, in order.
func (r *ProduitRepository) List(ctx context.Context, where filter.Predicate, order filter.Sort, limit, skip int) (_ []domain.Produit, err error) {
	cond, args := whereClause(where)
	window, windowArgs := windowClause(order, limit, skip, len(args))
	args = append(args, windowArgs...)
	query := `SELECT ` + produitColumns + ` FROM produits ` + cond + ` ` + window

	ctx, end := database.TraceQuery(ctx, "ListProduits", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listingError("list produits", err)
	}
	defer rows.Close()

	produits := []domain.Produit{}
	for rows.Next() {
		p, err := scanProduit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan produit row: %w", err)
		}
		produits = append(produits, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate produit rows: %w", err)
	}

	return produits, nil
}

func scanProduit(row pgx.Row) (*domain.Produit, error) {
	var (
		p      domain.Produit
		images []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.Nom,
		&p.BoutiqueID,
		&p.CategorieID,
		&p.Description,
		&p.Prix,
		&images,
		&p.NoteMoyenne,
		&p.NoteCompte,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	imgs, err := unmarshalImages(images)
	if err != nil {
		return nil, err
	}
	p.Images = imgs

	return &p, nil
}

func unmarshalImages(raw []byte) ([]domain.Image, error) {
	images := []domain.Image{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &images); err != nil {
			return nil, fmt.Errorf("unmarshal images: %w", err)
		}
	}
	if images == nil {
		images = []domain.Image{}
	}
	return images, nil
}

func marshalImages(images []domain.Image) ([]byte, error) {
	if images == nil {
		images = []domain.Image{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("marshal images: %w", err)
	}
	return b, nil
}
