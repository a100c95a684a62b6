package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/repository"
	"github.com/ny-kanto/mall-api/pkg/database"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/filter"
)

const boutiqueColumns = `id, nom, categorie_id,
		(SELECT c.nom FROM categories c WHERE c.id = boutiques.categorie_id),
		etage, contact_email, contact_tel, horaires, image_url, image_public_id,
		note_moyenne, note_compte, created_at, updated_at`

// BoutiqueRepository implements repository.BoutiqueRepository using PostgreSQL.
type BoutiqueRepository struct {
	pool database.DBTX
}

// NewBoutiqueRepository creates a new PostgreSQL-backed shop repository.
func NewBoutiqueRepository(pool database.DBTX) *BoutiqueRepository {
	return &BoutiqueRepository{pool: pool}
}

// Create inserts a new shop. The aggregate starts at zero.
func (r *BoutiqueRepository) Create(ctx context.Context, b *domain.Boutique) error {
	horaires, err := json.Marshal(b.Horaires)
	if err != nil {
		return fmt.Errorf("marshal horaires: %w", err)
	}
	imageURL, imageID := imageColumns(b.Image)

	query := `
		INSERT INTO boutiques (id, nom, categorie_id, etage, contact_email, contact_tel, horaires,
		                       image_url, image_public_id, note_moyenne, note_compte, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		b.ID,
		b.Nom,
		b.CategorieID,
		b.Etage,
		b.Contact.Email,
		b.Contact.Tel,
		horaires,
		imageURL,
		imageID,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("unknown categorie " + b.CategorieID)
		}
		return fmt.Errorf("insert boutique: %w", err)
	}

	return nil
}

// GetByID retrieves a shop by its ID.
func (r *BoutiqueRepository) GetByID(ctx context.Context, id string) (*domain.Boutique, error) {
	query := `SELECT ` + boutiqueColumns + ` FROM boutiques WHERE id = $1`

	b, err := scanBoutique(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("boutique", id)
		}
		return nil, fmt.Errorf("get boutique: %w", err)
	}
	return b, nil
}

// Update modifies the writable fields of a shop. The aggregate is left
// untouched.
func (r *BoutiqueRepository) Update(ctx context.Context, b *domain.Boutique) error {
	horaires, err := json.Marshal(b.Horaires)
	if err != nil {
		return fmt.Errorf("marshal horaires: %w", err)
	}
	imageURL, imageID := imageColumns(b.Image)

	query := `
		UPDATE boutiques
		SET nom = $1, categorie_id = $2, etage = $3, contact_email = $4, contact_tel = $5,
		    horaires = $6, image_url = $7, image_public_id = $8, updated_at = $9
		WHERE id = $10`

	tag, err := r.pool.Exec(ctx, query,
		b.Nom,
		b.CategorieID,
		b.Etage,
		b.Contact.Email,
		b.Contact.Tel,
		horaires,
		imageURL,
		imageID,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("unknown categorie " + b.CategorieID)
		}
		return fmt.Errorf("update boutique: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("boutique", b.ID)
	}
	return nil
}

// Delete removes a shop, its products and every review targeting them.
func (r *BoutiqueRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete boutique: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM avis
		WHERE (entity_type = 'boutique' AND entity_id = $1)
		   OR (entity_type = 'produit' AND entity_id IN (SELECT id FROM produits WHERE boutique_id = $1))`, id); err != nil {
		return fmt.Errorf("delete boutique reviews: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM boutiques WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete boutique: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("boutique", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete boutique: %w", err)
	}
	return nil
}

// Count counts the shops matching where.
func (r *BoutiqueRepository) Count(ctx context.Context, where filter.Predicate) (n int, err error) {
	cond, args := whereClause(where)
	query := `SELECT COUNT(*) FROM boutiques ` + cond

	ctx, end := database.TraceQuery(ctx, "CountBoutiques", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, listingError("count boutiques", err)
	}
	return n, nil
}

// List returns the shops matching where, in order.
func (r *BoutiqueRepository) List(ctx context.Context, where filter.Predicate, order filter.Sort, limit, skip int) (_ []domain.Boutique, err error) {
	cond, args := whereClause(where)
	window, windowArgs := windowClause(order, limit, skip, len(args))
	args = append(args, windowArgs...)
	query := `SELECT ` + boutiqueColumns + ` FROM boutiques ` + cond + ` ` + window

	ctx, end := database.TraceQuery(ctx, "ListBoutiques", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, listingError("list boutiques", err)
	}
	defer rows.Close()

	boutiques := []domain.Boutique{}
	for rows.Next() {
		b, err := scanBoutique(rows)
		if err != nil {
			return nil, fmt.Errorf("scan boutique row: %w", err)
		}
		boutiques = append(boutiques, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boutique rows: %w", err)
	}

	return boutiques, nil
}

// Statistics summarizes shops by opening state, category and floor.
func (r *BoutiqueRepository) Statistics(ctx context.Context, now time.Time) (*domain.BoutiqueStatistics, error) {
	open, args := filter.Where("", repository.OpenAt(now, true)).SQL(0)

	stats := &domain.BoutiqueStatistics{
		ParCategorie: []domain.CategorieCount{},
		ParEtage:     []domain.EtageCount{},
	}

	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE ` + open + `) FROM boutiques`
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&stats.Total, &stats.Ouvertes); err != nil {
		return nil, fmt.Errorf("count open boutiques: %w", err)
	}
	stats.Fermees = stats.Total - stats.Ouvertes

	rows, err := r.pool.Query(ctx, `
		SELECT b.categorie_id, COALESCE(c.nom, ''), COUNT(*)
		FROM boutiques b
		LEFT JOIN categories c ON c.id = b.categorie_id
		GROUP BY b.categorie_id, c.nom
		ORDER BY COUNT(*) DESC, c.nom`)
	if err != nil {
		return nil, fmt.Errorf("count boutiques by categorie: %w", err)
	}
	for rows.Next() {
		var c domain.CategorieCount
		if err := rows.Scan(&c.CategorieID, &c.Categorie, &c.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan categorie count: %w", err)
		}
		stats.ParCategorie = append(stats.ParCategorie, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categorie counts: %w", err)
	}

	rows, err = r.pool.Query(ctx, `SELECT etage, COUNT(*) FROM boutiques GROUP BY etage ORDER BY etage`)
	if err != nil {
		return nil, fmt.Errorf("count boutiques by etage: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.EtageCount
		if err := rows.Scan(&e.Etage, &e.Count); err != nil {
			return nil, fmt.Errorf("scan etage count: %w", err)
		}
		stats.ParEtage = append(stats.ParEtage, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate etage counts: %w", err)
	}

	return stats, nil
}

func scanBoutique(row pgx.Row) (*domain.Boutique, error) {
	var (
		b            domain.Boutique
		categorieNom *string
		horaires     []byte
		imageURL     *string
		imageID      *string
	)
	if err := row.Scan(
		&b.ID,
		&b.Nom,
		&b.CategorieID,
		&categorieNom,
		&b.Etage,
		&b.Contact.Email,
		&b.Contact.Tel,
		&horaires,
		&imageURL,
		&imageID,
		&b.NoteMoyenne,
		&b.NoteCompte,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(horaires) > 0 {
		if err := json.Unmarshal(horaires, &b.Horaires); err != nil {
			return nil, fmt.Errorf("unmarshal horaires: %w", err)
		}
	}
	if categorieNom != nil {
		b.Categorie = &domain.CategorieRef{ID: b.CategorieID, Nom: *categorieNom}
	}
	if imageURL != nil && *imageURL != "" {
		img := domain.Image{URL: *imageURL}
		if imageID != nil {
			img.PublicID = *imageID
		}
		b.Image = &img
	}

	return &b, nil
}

func imageColumns(img *domain.Image) (url, publicID *string) {
	if img == nil || img.URL == "" {
		return nil, nil
	}
	return &img.URL, &img.PublicID
}
