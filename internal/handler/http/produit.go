package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/httputil"
)

// ProduitHandler handles HTTP requests for product endpoints.
type ProduitHandler struct {
	service *service.ProduitService
	logger  *slog.Logger
}

// NewProduitHandler creates a new product HTTP handler.
func NewProduitHandler(svc *service.ProduitService, logger *slog.Logger) *ProduitHandler {
	return &ProduitHandler{service: svc, logger: logger}
}

// ListProduits handles GET /produits
func (h *ProduitHandler) ListProduits(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WritePage(w, res.Data, res.Meta())
}

// SearchProduits handles POST /produits/search
func (h *ProduitHandler) SearchProduits(w http.ResponseWriter, r *http.Request) {
	var req service.ProduitSearch
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		httputil.WriteBadRequest(w, r, "minPrice must not exceed maxPrice")
		return
	}

	produits, err := h.service.Search(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteList(w, produits, len(produits))
}

// GetProduit handles GET /produits/{id}
func (h *ProduitHandler) GetProduit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// CreateProduit handles POST /produits
func (h *ProduitHandler) CreateProduit(w http.ResponseWriter, r *http.Request) {
	var req domain.ProduitInput
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	p, err := h.service.Create(r.Context(), callerFrom(r), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, p)
}

// UpdateProduit handles PUT /produits/{id}
func (h *ProduitHandler) UpdateProduit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req domain.ProduitInput
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	p, err := h.service.Update(r.Context(), callerFrom(r), id.String(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// DeleteProduit handles DELETE /produits/{id}
func (h *ProduitHandler) DeleteProduit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), callerFrom(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Produit supprimé")
}
