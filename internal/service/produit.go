package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/repository"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/filter"
	"github.com/ny-kanto/mall-api/pkg/pagination"
)

// produitListConfig is the filter configuration of product listings.
var produitListConfig = filter.Config{
	Rules: []filter.Rule{
		filter.Search(repository.ColProduitNom),
		filter.Range("price", repository.ColProduitPrix),
		filter.Status(repository.ColNoteMoyenne, ratingBuckets),
		filter.Custom("boutique", func(v string, _ url.Values) filter.Predicate {
			return idFilter(repository.ColProduitBoutique, v)
		}),
		filter.Custom("categorie", func(v string, _ url.Values) filter.Predicate {
			return idFilter(repository.ColProduitCategorie, v)
		}),
	},
	Sort: filter.SortConfig{
		Fields: map[string]string{
			"nom":         repository.ColProduitNom,
			"prix":        repository.ColProduitPrix,
			"created_at":  repository.ColCreatedAt,
			"noteMoyenne": repository.ColNoteMoyenne,
		},
		Default:          filter.Sort{{Column: repository.ColCreatedAt, Direction: filter.Desc}},
		DefaultDirection: filter.Desc,
	},
}

// ProduitSearch holds the criteria of a product search.
type ProduitSearch struct {
	Text     string   `json:"text" validate:"max=200"`
	Boutique string   `json:"boutique" validate:"omitempty,uuid"`
	MinPrice *float64 `json:"minPrice" validate:"omitempty,min=0"`
	MaxPrice *float64 `json:"maxPrice" validate:"omitempty,min=0"`
}

// Caller is the authenticated account performing a write.
type Caller struct {
	UserID string
	Role   string
}

// ProduitService implements the business logic for products.
type ProduitService struct {
	repo       repository.ProduitRepository
	boutiques  repository.BoutiqueRepository
	categories repository.CategorieRepository
	users      repository.UserRepository
	bounds     pagination.Bounds
	logger     *slog.Logger
}

// NewProduitService creates a new product service.
func NewProduitService(
	repo repository.ProduitRepository,
	boutiques repository.BoutiqueRepository,
	categories repository.CategorieRepository,
	users repository.UserRepository,
	bounds pagination.Bounds,
	logger *slog.Logger,
) *ProduitService {
	return &ProduitService{
		repo:       repo,
		boutiques:  boutiques,
		categories: categories,
		users:      users,
		bounds:     bounds,
		logger:     logger,
	}
}

// List returns one page of products matching the query parameters.
func (s *ProduitService) List(ctx context.Context, q url.Values) (pagination.Result[domain.Produit], error) {
	return s.list(ctx, filter.Predicate{}, q)
}

// ListByBoutique is List restricted to one shop's products.
func (s *ProduitService) ListByBoutique(ctx context.Context, boutiqueID string, q url.Values) (pagination.Result[domain.Produit], error) {
	if _, err := s.boutiques.GetByID(ctx, boutiqueID); err != nil {
		return pagination.Result[domain.Produit]{}, fmt.Errorf("get boutique by id: %w", err)
	}
	return s.list(ctx, filter.Where(repository.ColProduitBoutique, filter.Eq(boutiqueID)), q)
}

func (s *ProduitService) list(ctx context.Context, base filter.Predicate, q url.Values) (pagination.Result[domain.Produit], error) {
	where, order := filter.Compile(base, q, produitListConfig)
	params := pagination.Parse(q.Get("page"), q.Get("limit"), s.bounds)

	res, err := pagination.Paginate(ctx, params,
		func(ctx context.Context) (int, error) {
			return s.repo.Count(ctx, where)
		},
		func(ctx context.Context, limit, skip int) ([]domain.Produit, error) {
			return s.repo.List(ctx, where, order, limit, skip)
		},
	)
	if err != nil {
		return res, fmt.Errorf("list produits: %w", err)
	}
	return res, nil
}

// Search returns every product matching the criteria, newest first.
func (s *ProduitService) Search(ctx context.Context, criteria *ProduitSearch) ([]domain.Produit, error) {
	var where filter.Predicate
	if text := strings.TrimSpace(criteria.Text); text != "" {
		pattern := filter.SearchPattern(text)
		where.And("search", filter.Or(
			filter.Clause{Column: repository.ColProduitNom, Term: filter.Match(pattern)},
			filter.Clause{Column: repository.ColProduitDescription, Term: filter.Match(pattern)},
		))
	}
	if criteria.Boutique != "" {
		where.And(repository.ColProduitBoutique, filter.Eq(criteria.Boutique))
	}
	if criteria.MinPrice != nil || criteria.MaxPrice != nil {
		where.And(repository.ColProduitPrix, filter.InRange(criteria.MinPrice, criteria.MaxPrice))
	}

	order := filter.Sort{
		{Column: repository.ColCreatedAt, Direction: filter.Desc},
		{Column: "id", Direction: filter.Desc},
	}
	produits, err := s.repo.List(ctx, where, order, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("search produits: %w", err)
	}
	return produits, nil
}

// Get retrieves a product by its ID.
func (s *ProduitService) Get(ctx context.Context, id string) (*domain.Produit, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get produit by id: %w", err)
	}
	return p, nil
}

// Create adds a product to a shop the caller manages.
func (s *ProduitService) Create(ctx context.Context, caller Caller, input *domain.ProduitInput) (*domain.Produit, error) {
	if err := s.authorize(ctx, caller, input.BoutiqueID); err != nil {
		return nil, err
	}
	if err := s.checkCategorie(ctx, input.CategorieID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Produit{ID: uuid.New().String(), CreatedAt: now}
	applyProduitInput(p, input, now)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create produit: %w", err)
	}

	s.logger.InfoContext(ctx, "produit created",
		slog.String("produit_id", p.ID),
		slog.String("boutique_id", p.BoutiqueID),
		slog.String("user_id", caller.UserID),
	)
	return p, nil
}

// Update replaces the writable fields of a product. Moving a product to
// another shop requires managing both.
func (s *ProduitService) Update(ctx context.Context, caller Caller, id string, input *domain.ProduitInput) (*domain.Produit, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get produit by id: %w", err)
	}
	if err := s.authorize(ctx, caller, existing.BoutiqueID); err != nil {
		return nil, err
	}
	if input.BoutiqueID != existing.BoutiqueID {
		if err := s.authorize(ctx, caller, input.BoutiqueID); err != nil {
			return nil, err
		}
	}
	if err := s.checkCategorie(ctx, input.CategorieID); err != nil {
		return nil, err
	}

	applyProduitInput(existing, input, time.Now().UTC())
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update produit: %w", err)
	}

	s.logger.InfoContext(ctx, "produit updated",
		slog.String("produit_id", id),
		slog.String("user_id", caller.UserID),
	)
	return existing, nil
}

// Delete removes a product and its reviews.
func (s *ProduitService) Delete(ctx context.Context, caller Caller, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get produit by id: %w", err)
	}
	if err := s.authorize(ctx, caller, existing.BoutiqueID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete produit: %w", err)
	}

	s.logger.InfoContext(ctx, "produit deleted",
		slog.String("produit_id", id),
		slog.String("user_id", caller.UserID),
	)
	return nil
}

// authorize lets admins manage every product and shop owners the products of
// the shop their account is linked to.
func (s *ProduitService) authorize(ctx context.Context, caller Caller, boutiqueID string) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleBoutique:
		user, err := s.users.GetByID(ctx, caller.UserID)
		if err != nil {
			return fmt.Errorf("get caller: %w", err)
		}
		if user.BoutiqueID != nil && *user.BoutiqueID == boutiqueID {
			return nil
		}
	}
	return apperrors.Forbidden("you do not manage this boutique")
}

func (s *ProduitService) checkCategorie(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	ok, err := s.categories.Exists(ctx, *id)
	if err != nil {
		return fmt.Errorf("check categorie: %w", err)
	}
	if !ok {
		return apperrors.InvalidInput("unknown categorie " + *id)
	}
	return nil
}

func applyProduitInput(p *domain.Produit, input *domain.ProduitInput, now time.Time) {
	p.Nom = strings.TrimSpace(input.Nom)
	p.BoutiqueID = input.BoutiqueID
	p.CategorieID = input.CategorieID
	if p.CategorieID != nil && *p.CategorieID == "" {
		p.CategorieID = nil
	}
	p.Description = input.Description
	p.Prix = input.Prix
	p.Images = input.Images
	if p.Images == nil {
		p.Images = []domain.Image{}
	}
	p.UpdatedAt = now
}
