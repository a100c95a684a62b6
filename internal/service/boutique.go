package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/repository"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/filter"
	"github.com/ny-kanto/mall-api/pkg/pagination"
)

// ratingBuckets are the status values accepted by catalog listings. Averages
// carry one decimal, so the ranges do not overlap.
var ratingBuckets = map[string]filter.Bucket{
	"unrated": filter.Exactly(0),
	"low":     filter.Between(1, 2.9),
	"average": filter.Between(3, 3.9),
	"top":     filter.AtLeast(4),
}

// BoutiqueSearch holds the criteria of a shop search.
type BoutiqueSearch struct {
	Text       string   `json:"text" validate:"max=200"`
	Categories []string `json:"categories" validate:"omitempty,dive,uuid"`
	Etages     []int    `json:"etages"`
	Ouvert     *bool    `json:"ouvert"`
}

// BoutiqueService implements the business logic for shops.
type BoutiqueService struct {
	repo     repository.BoutiqueRepository
	location *time.Location
	bounds   pagination.Bounds
	now      func() time.Time
	logger   *slog.Logger
}

// NewBoutiqueService creates a new shop service. Opening hours are evaluated
// in loc.
func NewBoutiqueService(repo repository.BoutiqueRepository, loc *time.Location, bounds pagination.Bounds, logger *slog.Logger) *BoutiqueService {
	if loc == nil {
		loc = time.UTC
	}
	return &BoutiqueService{
		repo:     repo,
		location: loc,
		bounds:   bounds,
		now:      time.Now,
		logger:   logger,
	}
}

// localNow is the current time in the mall's time zone.
func (s *BoutiqueService) localNow() time.Time {
	return s.now().In(s.location)
}

// BoutiqueListConfig is the filter configuration of the shop listing at now.
func BoutiqueListConfig(now time.Time) filter.Config {
	return filter.Config{
		Rules: []filter.Rule{
			filter.Search(repository.ColBoutiqueNom),
			filter.Status(repository.ColNoteMoyenne, ratingBuckets),
			filter.Custom("categorie", func(v string, _ url.Values) filter.Predicate {
				return idFilter(repository.ColBoutiqueCategorie, v)
			}),
			filter.Custom("etage", func(v string, _ url.Values) filter.Predicate {
				etage, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil {
					return filter.Predicate{}
				}
				return filter.Where(repository.ColBoutiqueEtage, filter.Eq(etage))
			}),
			filter.Custom("ouvert", func(v string, _ url.Values) filter.Predicate {
				open, err := strconv.ParseBool(strings.TrimSpace(v))
				if err != nil {
					return filter.Predicate{}
				}
				return filter.Where("ouvert", repository.OpenAt(now, open))
			}),
		},
		Sort: filter.SortConfig{
			Fields: map[string]string{
				"nom":         repository.ColBoutiqueNom,
				"created_at":  repository.ColCreatedAt,
				"etage":       repository.ColBoutiqueEtage,
				"noteMoyenne": repository.ColNoteMoyenne,
			},
			Default:          filter.Sort{{Column: repository.ColCreatedAt, Direction: filter.Desc}},
			DefaultDirection: filter.Desc,
		},
	}
}

// idFilter constrains column to a UUID. Values that are not UUIDs match
// nothing.
func idFilter(column, v string) filter.Predicate {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return filter.Where(column, filter.SQL("FALSE"))
	}
	return filter.Where(column, filter.Eq(id.String()))
}

// List returns one page of shops matching the query parameters.
func (s *BoutiqueService) List(ctx context.Context, q url.Values) (pagination.Result[domain.Boutique], error) {
	now := s.localNow()
	where, order := filter.Compile(filter.Predicate{}, q, BoutiqueListConfig(now))
	params := pagination.Parse(q.Get("page"), q.Get("limit"), s.bounds)

	res, err := pagination.Paginate(ctx, params,
		func(ctx context.Context) (int, error) {
			return s.repo.Count(ctx, where)
		},
		func(ctx context.Context, limit, skip int) ([]domain.Boutique, error) {
			return s.repo.List(ctx, where, order, limit, skip)
		},
	)
	if err != nil {
		return res, fmt.Errorf("list boutiques: %w", err)
	}
	markOpen(res.Data, now)
	return res, nil
}

// Search returns every shop matching the criteria, newest first.
func (s *BoutiqueService) Search(ctx context.Context, criteria *BoutiqueSearch) ([]domain.Boutique, error) {
	now := s.localNow()

	var where filter.Predicate
	if text := strings.TrimSpace(criteria.Text); text != "" {
		pattern := filter.SearchPattern(text)
		where.And("search", filter.Or(
			filter.Clause{Column: repository.ColBoutiqueNom, Term: filter.Match(pattern)},
			filter.Clause{Column: repository.ColBoutiqueEmail, Term: filter.Match(pattern)},
		))
	}
	if len(criteria.Categories) > 0 {
		where.And(repository.ColBoutiqueCategorie, filter.In(criteria.Categories))
	}
	if len(criteria.Etages) > 0 {
		where.And(repository.ColBoutiqueEtage, filter.In(criteria.Etages))
	}
	if criteria.Ouvert != nil {
		where.And("ouvert", repository.OpenAt(now, *criteria.Ouvert))
	}

	order := filter.Sort{
		{Column: repository.ColCreatedAt, Direction: filter.Desc},
		{Column: "id", Direction: filter.Desc},
	}
	boutiques, err := s.repo.List(ctx, where, order, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("search boutiques: %w", err)
	}
	markOpen(boutiques, now)
	return boutiques, nil
}

// Get retrieves a shop by its ID.
func (s *BoutiqueService) Get(ctx context.Context, id string) (*domain.Boutique, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get boutique by id: %w", err)
	}
	b.OuvertMaintenant = b.Horaires.IsOpenAt(s.localNow())
	return b, nil
}

// Statistics summarizes the directory as of now.
func (s *BoutiqueService) Statistics(ctx context.Context) (*domain.BoutiqueStatistics, error) {
	stats, err := s.repo.Statistics(ctx, s.localNow())
	if err != nil {
		return nil, fmt.Errorf("boutique statistics: %w", err)
	}
	return stats, nil
}

// Create adds a shop. Its rating starts empty.
func (s *BoutiqueService) Create(ctx context.Context, input *domain.BoutiqueInput) (*domain.Boutique, error) {
	if err := input.Horaires.Normalize(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := time.Now().UTC()
	b := &domain.Boutique{ID: uuid.New().String(), CreatedAt: now}
	applyBoutiqueInput(b, input, now)

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create boutique: %w", err)
	}

	s.logger.InfoContext(ctx, "boutique created",
		slog.String("boutique_id", b.ID),
		slog.String("nom", b.Nom),
	)
	return s.Get(ctx, b.ID)
}

// Update replaces the writable fields of a shop.
func (s *BoutiqueService) Update(ctx context.Context, id string, input *domain.BoutiqueInput) (*domain.Boutique, error) {
	if err := input.Horaires.Normalize(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	b := &domain.Boutique{ID: id}
	applyBoutiqueInput(b, input, time.Now().UTC())

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update boutique: %w", err)
	}

	s.logger.InfoContext(ctx, "boutique updated", slog.String("boutique_id", id))
	return s.Get(ctx, id)
}

// Delete removes a shop together with its products and reviews.
func (s *BoutiqueService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete boutique: %w", err)
	}
	s.logger.InfoContext(ctx, "boutique deleted", slog.String("boutique_id", id))
	return nil
}

func applyBoutiqueInput(b *domain.Boutique, input *domain.BoutiqueInput, now time.Time) {
	b.Nom = strings.TrimSpace(input.Nom)
	b.CategorieID = input.CategorieID
	if input.Etage != nil {
		b.Etage = *input.Etage
	}
	b.Contact = input.Contact
	b.Horaires = input.Horaires
	b.Image = input.Image
	b.UpdatedAt = now
}

func markOpen(boutiques []domain.Boutique, now time.Time) {
	for i := range boutiques {
		boutiques[i].OuvertMaintenant = boutiques[i].Horaires.IsOpenAt(now)
	}
}
