package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/repository"
)

// FavoriService manages a user's favorite shops and products.
type FavoriService struct {
	repo   repository.FavoriRepository
	logger *slog.Logger
}

// NewFavoriService creates a new favorites service.
func NewFavoriService(repo repository.FavoriRepository, logger *slog.Logger) *FavoriService {
	return &FavoriService{repo: repo, logger: logger}
}

// List returns the user's favorites.
func (s *FavoriService) List(ctx context.Context, userID string) (*domain.Favoris, error) {
	favoris, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favoris: %w", err)
	}
	return favoris, nil
}

// ToggleBoutique flips the shop in or out of the user's favorites and
// reports the resulting state. Unknown shops are NotFound.
func (s *FavoriService) ToggleBoutique(ctx context.Context, userID, boutiqueID string) (bool, error) {
	isFavorite, err := s.repo.ToggleBoutique(ctx, userID, boutiqueID)
	if err != nil {
		return false, fmt.Errorf("toggle favori boutique: %w", err)
	}
	s.logger.InfoContext(ctx, "favori toggled",
		slog.String("user_id", userID),
		slog.String("boutique_id", boutiqueID),
		slog.Bool("is_favorite", isFavorite),
	)
	return isFavorite, nil
}

// ToggleProduit is ToggleBoutique for products.
func (s *FavoriService) ToggleProduit(ctx context.Context, userID, produitID string) (bool, error) {
	isFavorite, err := s.repo.ToggleProduit(ctx, userID, produitID)
	if err != nil {
		return false, fmt.Errorf("toggle favori produit: %w", err)
	}
	s.logger.InfoContext(ctx, "favori toggled",
		slog.String("user_id", userID),
		slog.String("produit_id", produitID),
		slog.Bool("is_favorite", isFavorite),
	)
	return isFavorite, nil
}

// IsBoutiqueFavorite reports whether the shop is among the user's favorites.
func (s *FavoriService) IsBoutiqueFavorite(ctx context.Context, userID, boutiqueID string) (bool, error) {
	ok, err := s.repo.HasBoutique(ctx, userID, boutiqueID)
	if err != nil {
		return false, fmt.Errorf("check favori boutique: %w", err)
	}
	return ok, nil
}

// BoutiqueIDs returns the IDs of the user's favorite shops.
func (s *FavoriService) BoutiqueIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.repo.BoutiqueIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favori boutique ids: %w", err)
	}
	return ids, nil
}
