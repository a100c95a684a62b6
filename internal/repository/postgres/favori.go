package postgres

import (
	"context"
	"fmt"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/database"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
)

// FavoriRepository implements repository.FavoriRepository using PostgreSQL.
type FavoriRepository struct {
	pool database.DBTX
}

// NewFavoriRepository creates a new PostgreSQL-backed favorites repository.
func NewFavoriRepository(pool database.DBTX) *FavoriRepository {
	return &FavoriRepository{pool: pool}
}

// List returns the user's favorite shops and products, most recent first.
func (r *FavoriRepository) List(ctx context.Context, userID string) (*domain.Favoris, error) {
	favoris := &domain.Favoris{
		Boutiques: []domain.FavoriBoutique{},
		Produits:  []domain.FavoriProduit{},
	}

	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.nom, b.image_url, b.image_public_id, b.categorie_id, b.etage
		FROM favoris_boutiques f
		JOIN boutiques b ON b.id = f.boutique_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, b.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite boutiques: %w", err)
	}
	for rows.Next() {
		var (
			fb       domain.FavoriBoutique
			imageURL *string
			imageID  *string
		)
		if err := rows.Scan(&fb.ID, &fb.Nom, &imageURL, &imageID, &fb.CategorieID, &fb.Etage); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan favorite boutique: %w", err)
		}
		if imageURL != nil && *imageURL != "" {
			img := domain.Image{URL: *imageURL}
			if imageID != nil {
				img.PublicID = *imageID
			}
			fb.Image = &img
		}
		favoris.Boutiques = append(favoris.Boutiques, fb)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite boutiques: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT p.id, p.nom, p.prix, p.images, p.boutique_id
		FROM favoris_produits f
		JOIN produits p ON p.id = f.produit_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, p.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite produits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			fp     domain.FavoriProduit
			images []byte
		)
		if err := rows.Scan(&fp.ID, &fp.Nom, &fp.Prix, &images, &fp.BoutiqueID); err != nil {
			return nil, fmt.Errorf("scan favorite produit: %w", err)
		}
		fp.Images, err = unmarshalImages(images)
		if err != nil {
			return nil, err
		}
		favoris.Produits = append(favoris.Produits, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite produits: %w", err)
	}

	return favoris, nil
}

// toggleSQL deletes the pair when present and inserts it otherwise, in one
// statement. It yields whether the pair exists afterwards.
const toggleSQL = `
	WITH del AS (
		DELETE FROM %[1]s WHERE user_id = $1 AND %[2]s = $2
		RETURNING 1
	), ins AS (
		INSERT INTO %[1]s (user_id, %[2]s)
		SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM del)
		ON CONFLICT DO NOTHING
		RETURNING 1
	)
	SELECT EXISTS (SELECT 1 FROM ins)`

// ToggleBoutique flips the favorite state of a shop.
func (r *FavoriRepository) ToggleBoutique(ctx context.Context, userID, boutiqueID string) (bool, error) {
	return r.toggle(ctx, "favoris_boutiques", "boutique_id", "boutique", userID, boutiqueID)
}

// ToggleProduit flips the favorite state of a product.
func (r *FavoriRepository) ToggleProduit(ctx context.Context, userID, produitID string) (bool, error) {
	return r.toggle(ctx, "favoris_produits", "produit_id", "produit", userID, produitID)
}

func (r *FavoriRepository) toggle(ctx context.Context, table, column, resource, userID, id string) (isFavorite bool, err error) {
	query := fmt.Sprintf(toggleSQL, table, column)

	ctx, end := database.TraceQuery(ctx, "ToggleFavori", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, userID, id).Scan(&isFavorite); err != nil {
		if isUnknownUser(err) {
			return false, errUnknownAccount
		}
		if isForeignKeyViolation(err) {
			return false, apperrors.NotFound(resource, id)
		}
		return false, fmt.Errorf("toggle favorite %s: %w", resource, err)
	}
	return isFavorite, nil
}

// HasBoutique reports whether the shop is one of the user's favorites.
func (r *FavoriRepository) HasBoutique(ctx context.Context, userID, boutiqueID string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favoris_boutiques WHERE user_id = $1 AND boutique_id = $2)`,
		userID, boutiqueID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check favorite boutique: %w", err)
	}
	return ok, nil
}

// BoutiqueIDs returns the ids of the user's favorite shops.
func (r *FavoriRepository) BoutiqueIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT boutique_id FROM favoris_boutiques WHERE user_id = $1 ORDER BY created_at DESC, boutique_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite boutique ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite boutique id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite boutique ids: %w", err)
	}
	return ids, nil
}
