package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/httputil"
)

// BoutiqueHandler handles HTTP requests for shop endpoints.
type BoutiqueHandler struct {
	service  *service.BoutiqueService
	produits *service.ProduitService
	logger   *slog.Logger
}

// NewBoutiqueHandler creates a new shop HTTP handler.
func NewBoutiqueHandler(svc *service.BoutiqueService, produits *service.ProduitService, logger *slog.Logger) *BoutiqueHandler {
	return &BoutiqueHandler{
		service:  svc,
		produits: produits,
		logger:   logger,
	}
}

// ListBoutiques handles GET /boutiques
func (h *BoutiqueHandler) ListBoutiques(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WritePage(w, res.Data, res.Meta())
}

// SearchBoutiques handles POST /boutiques/search
func (h *BoutiqueHandler) SearchBoutiques(w http.ResponseWriter, r *http.Request) {
	var req service.BoutiqueSearch
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	boutiques, err := h.service.Search(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, boutiques, len(boutiques))
}

// GetStatistics handles GET /boutiques/statistics
func (h *BoutiqueHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, stats)
}

// GetBoutique handles GET /boutiques/{id}
func (h *BoutiqueHandler) GetBoutique(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}

// ListBoutiqueProduits handles GET /boutiques/{id}/produits
func (h *BoutiqueHandler) ListBoutiqueProduits(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := h.produits.ListByBoutique(r.Context(), id.String(), r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WritePage(w, res.Data, res.Meta())
}

// CreateBoutique handles POST /boutiques
func (h *BoutiqueHandler) CreateBoutique(w http.ResponseWriter, r *http.Request) {
	var req domain.BoutiqueInput
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	b, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, b)
}

// UpdateBoutique handles PUT /boutiques/{id}
func (h *BoutiqueHandler) UpdateBoutique(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req domain.BoutiqueInput
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	b, err := h.service.Update(r.Context(), id.String(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, b)
}

// DeleteBoutique handles DELETE /boutiques/{id}
func (h *BoutiqueHandler) DeleteBoutique(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Boutique supprimée")
}
