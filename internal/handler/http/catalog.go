package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/httputil"
)

// CategorieHandler handles HTTP requests for category endpoints.
type CategorieHandler struct {
	service *service.CategorieService
	logger  *slog.Logger
}

// NewCategorieHandler creates a new category HTTP handler.
func NewCategorieHandler(svc *service.CategorieService, logger *slog.Logger) *CategorieHandler {
	return &CategorieHandler{service: svc, logger: logger}
}

// ListCategories handles GET /categories
func (h *CategorieHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// ZoneHandler handles HTTP requests for floor plan endpoints.
type ZoneHandler struct {
	service *service.ZoneService
	logger  *slog.Logger
}

// NewZoneHandler creates a new zone HTTP handler.
func NewZoneHandler(svc *service.ZoneService, logger *slog.Logger) *ZoneHandler {
	return &ZoneHandler{service: svc, logger: logger}
}

// AssignZoneRequest is the JSON request body for assigning a zone. A null or
// empty boutiqueId frees the zone.
type AssignZoneRequest struct {
	BoutiqueID string `json:"boutiqueId" validate:"omitempty,uuid"`
}

// ListZones handles GET /zones
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, zones)
}

// AssignZone handles PUT /zones/{zoneId}
func (h *ZoneHandler) AssignZone(w http.ResponseWriter, r *http.Request) {
	zoneID := strings.TrimSpace(chi.URLParam(r, "zoneId"))
	if zoneID == "" {
		httputil.WriteBadRequest(w, r, "zone id is required")
		return
	}

	var req AssignZoneRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	var boutiqueID *string
	if req.BoutiqueID != "" {
		boutiqueID = &req.BoutiqueID
	}

	zone, err := h.service.Assign(r.Context(), zoneID, boutiqueID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, zone)
}
