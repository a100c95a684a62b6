package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/httputil"
	"github.com/ny-kanto/mall-api/pkg/middleware"
)

// FavoriHandler handles HTTP requests for favorites endpoints. Every route
// requires authentication.
type FavoriHandler struct {
	service *service.FavoriService
	logger  *slog.Logger
}

// NewFavoriHandler creates a new favorites HTTP handler.
func NewFavoriHandler(svc *service.FavoriService, logger *slog.Logger) *FavoriHandler {
	return &FavoriHandler{service: svc, logger: logger}
}

// ToggleResponse reports the state after a toggle.
type ToggleResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

// CheckResponse reports whether a shop is a favorite.
type CheckResponse struct {
	IsFavori bool `json:"isFavori"`
}

// ListFavoris handles GET /favoris
func (h *FavoriHandler) ListFavoris(w http.ResponseWriter, r *http.Request) {
	favoris, err := h.service.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, favoris)
}

// ToggleBoutique handles POST /favoris/boutiques/{id}/toggle
func (h *FavoriHandler) ToggleBoutique(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	isFavorite, err := h.service.ToggleBoutique(r.Context(), middleware.UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeToggle(w, isFavorite)
}

// ToggleProduit handles POST /favoris/produits/{id}/toggle
func (h *FavoriHandler) ToggleProduit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	isFavorite, err := h.service.ToggleProduit(r.Context(), middleware.UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeToggle(w, isFavorite)
}

// CheckBoutique handles GET /favoris/boutiques/{id}/check
func (h *FavoriHandler) CheckBoutique(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	isFavori, err := h.service.IsBoutiqueFavorite(r.Context(), middleware.UserIDFromContext(r.Context()), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, CheckResponse{IsFavori: isFavori})
}

// BoutiqueIDs handles GET /favoris/boutiques/ids
func (h *FavoriHandler) BoutiqueIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.BoutiqueIDs(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, ids)
}

func writeToggle(w http.ResponseWriter, isFavorite bool) {
	message := "Retiré des favoris"
	if isFavorite {
		message = "Ajouté aux favoris"
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Success: true,
		Data:    ToggleResponse{IsFavorite: isFavorite},
		Message: message,
	})
}
