package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/httputil"
	"github.com/ny-kanto/mall-api/pkg/middleware"
	"github.com/ny-kanto/mall-api/pkg/pagination"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	bounds  pagination.Bounds
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler. bounds is the page
// window of review listings.
func NewReviewHandler(svc *service.ReviewService, bounds pagination.Bounds, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		bounds:  bounds,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpsertReviewRequest is the JSON request body for writing a review.
type UpsertReviewRequest struct {
	EntityType  string  `json:"entityType" validate:"required"`
	EntityID    string  `json:"entityId" validate:"required,uuid"`
	Note        float64 `json:"note" validate:"required"`
	Commentaire *string `json:"commentaire" validate:"omitempty,max=2000"`
}

// --- Handlers ---

// ListReviews handles GET /avis/{entityType}/{entityId}
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	entityID, ok := httputil.ParseUUID(w, chi.URLParam(r, "entityId"))
	if !ok {
		return
	}

	res, err := h.service.List(r.Context(), chi.URLParam(r, "entityType"), entityID.String(), pagination.FromRequest(r, h.bounds))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WritePage(w, res.Data, res.Meta())
}

// UpsertReview handles POST /avis. It answers 201 for a new review and 200
// when the caller's earlier review was replaced.
func (h *ReviewHandler) UpsertReview(w http.ResponseWriter, r *http.Request) {
	var req UpsertReviewRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	review, inserted, err := h.service.Upsert(r.Context(), &service.UpsertReviewInput{
		UserID:      middleware.UserIDFromContext(r.Context()),
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Note:        req.Note,
		Commentaire: req.Commentaire,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status, message := http.StatusOK, "Avis mis à jour"
	if inserted {
		status, message = http.StatusCreated, "Avis ajouté"
	}
	httputil.WriteJSON(w, status, httputil.Response{Success: true, Data: review, Message: message})
}

// DeleteReview handles DELETE /avis/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if _, err := h.service.Delete(r.Context(), id.String(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Avis supprimé")
}
