package repository

import (
	"context"
	"time"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/filter"
)

// ReviewRepository defines persistence for reviews.
type ReviewRepository interface {
	// Upsert writes the review keyed on (user, entity type, entity id). On
	// insert review.ID and CreatedAt are kept; on conflict only the score and
	// comment change. review is refreshed from the stored row and inserted
	// reports which branch ran.
	Upsert(ctx context.Context, review *domain.Review) (inserted bool, err error)

	// Delete removes the review only when it belongs to userID and returns
	// the deleted row. A missing or foreign review yields NotFound.
	Delete(ctx context.Context, id, userID string) (*domain.Review, error)

	// CountByEntity counts the reviews of an entity.
	CountByEntity(ctx context.Context, kind domain.EntityKind, entityID string) (int, error)

	// ListByEntity returns one window of an entity's reviews, newest first,
	// with the reviewer attached.
	ListByEntity(ctx context.Context, kind domain.EntityKind, entityID string, limit, skip int) ([]domain.Review, error)

	// Summary computes the rounded average and count over an entity's reviews.
	Summary(ctx context.Context, kind domain.EntityKind, entityID string) (domain.RatingSummary, error)
}

// RatableRepository gives access to the aggregate carried by shops and
// products.
type RatableRepository interface {
	// Exists reports whether an entity of the given kind exists.
	Exists(ctx context.Context, kind domain.EntityKind, id string) (bool, error)

	// SetRating overwrites the entity's aggregate.
	SetRating(ctx context.Context, kind domain.EntityKind, id string, summary domain.RatingSummary) error
}

// BoutiqueRepository defines persistence for shops.
type BoutiqueRepository interface {
	Create(ctx context.Context, b *domain.Boutique) error
	GetByID(ctx context.Context, id string) (*domain.Boutique, error)
	Update(ctx context.Context, b *domain.Boutique) error
	Delete(ctx context.Context, id string) error

	// Count counts the shops matching where.
	Count(ctx context.Context, where filter.Predicate) (int, error)

	// List returns the shops matching where in order. A non-positive limit
	// returns every match.
	List(ctx context.Context, where filter.Predicate, order filter.Sort, limit, skip int) ([]domain.Boutique, error)

	// Statistics summarizes the directory, counting shops open at now.
	Statistics(ctx context.Context, now time.Time) (*domain.BoutiqueStatistics, error)
}

// ProduitRepository defines persistence for products.
type ProduitRepository interface {
	Create(ctx context.Context, p *domain.Produit) error
	GetByID(ctx context.Context, id string) (*domain.Produit, error)
	Update(ctx context.Context, p *domain.Produit) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, where filter.Predicate) (int, error)
	List(ctx context.Context, where filter.Predicate, order filter.Sort, limit, skip int) ([]domain.Produit, error)
}

// CategorieRepository defines read access to categories.
type CategorieRepository interface {
	List(ctx context.Context) ([]domain.Categorie, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// UserRepository defines read access to accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ZoneRepository defines persistence for floor zones.
type ZoneRepository interface {
	List(ctx context.Context) ([]domain.Zone, error)

	// Assign sets or, with a nil boutiqueID, clears the occupying shop.
	Assign(ctx context.Context, zoneID string, boutiqueID *string) (*domain.Zone, error)
}

// FavoriRepository defines persistence for a user's favorites.
type FavoriRepository interface {
	List(ctx context.Context, userID string) (*domain.Favoris, error)

	// ToggleBoutique adds or removes the shop and reports whether it is a
	// favorite afterwards.
	ToggleBoutique(ctx context.Context, userID, boutiqueID string) (bool, error)
	ToggleProduit(ctx context.Context, userID, produitID string) (bool, error)

	HasBoutique(ctx context.Context, userID, boutiqueID string) (bool, error)
	BoutiqueIDs(ctx context.Context, userID string) ([]string, error)
}
