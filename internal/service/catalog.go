package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/repository"
)

// CategorieService lists shop and product categories.
type CategorieService struct {
	repo repository.CategorieRepository
}

// NewCategorieService creates a new category service.
func NewCategorieService(repo repository.CategorieRepository) *CategorieService {
	return &CategorieService{repo: repo}
}

// List returns every category ordered by name.
func (s *CategorieService) List(ctx context.Context) ([]domain.Categorie, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ZoneService manages the floor plan.
type ZoneService struct {
	repo   repository.ZoneRepository
	logger *slog.Logger
}

// NewZoneService creates a new zone service.
func NewZoneService(repo repository.ZoneRepository, logger *slog.Logger) *ZoneService {
	return &ZoneService{repo: repo, logger: logger}
}

// List returns every zone with its occupant.
func (s *ZoneService) List(ctx context.Context) ([]domain.Zone, error) {
	zones, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

// Assign puts a shop in a zone, or frees the zone when boutiqueID is nil.
func (s *ZoneService) Assign(ctx context.Context, zoneID string, boutiqueID *string) (*domain.Zone, error) {
	if boutiqueID != nil && *boutiqueID == "" {
		boutiqueID = nil
	}
	zone, err := s.repo.Assign(ctx, zoneID, boutiqueID)
	if err != nil {
		return nil, fmt.Errorf("assign zone: %w", err)
	}

	s.logger.InfoContext(ctx, "zone assigned",
		slog.String("zone_id", zoneID),
		slog.String("status", zone.Status),
	)
	return zone, nil
}
