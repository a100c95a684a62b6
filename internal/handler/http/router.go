package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ny-kanto/mall-api/internal/auth"
	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/internal/service"
	"github.com/ny-kanto/mall-api/pkg/health"
	"github.com/ny-kanto/mall-api/pkg/middleware"
	"github.com/ny-kanto/mall-api/pkg/pagination"
)

// serviceName labels metrics and spans.
const serviceName = "mall-api"

// categoriesMaxAge is how long clients may cache the category list, in seconds.
const categoriesMaxAge = 300

// Services groups the business services exposed over HTTP.
type Services struct {
	Reviews    *service.ReviewService
	Boutiques  *service.BoutiqueService
	Produits   *service.ProduitService
	Categories *service.CategorieService
	Zones      *service.ZoneService
	Favoris    *service.FavoriService
}

// RouterConfig carries the HTTP-level settings of the router.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
	ReviewBounds      pagination.Bounds

	// Per-caller throttle of review and favorite writes.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all mall routes registered.
func NewRouter(
	svc Services,
	verifier *auth.Verifier,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.PrometheusMetrics(serviceName))

	// Health, metrics and profiling endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	validate := middleware.TokenValidator(verifier.Validate)
	authenticated := func(r chi.Router) {
		r.Use(middleware.Auth(validate))
		r.Use(middleware.RequestLoggerUser)
	}
	throttle := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	adminOnly := func(r chi.Router) {
		authenticated(r)
		r.Use(middleware.RequireRole(domain.RoleAdmin))
	}
	optional := func(r chi.Router) {
		r.Use(middleware.OptionalAuth(validate))
		r.Use(middleware.RequestLoggerUser)
	}

	reviewHandler := NewReviewHandler(svc.Reviews, cfg.ReviewBounds, logger)
	r.Route("/avis", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			optional(r)
			r.Get("/{entityType}/{entityId}", reviewHandler.ListReviews)
		})
		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Use(throttle)
			r.Post("/", reviewHandler.UpsertReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})
	})

	boutiqueHandler := NewBoutiqueHandler(svc.Boutiques, svc.Produits, logger)
	r.Route("/boutiques", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			optional(r)
			r.Get("/", boutiqueHandler.ListBoutiques)
			r.Post("/search", boutiqueHandler.SearchBoutiques)
			r.Get("/{id}", boutiqueHandler.GetBoutique)
			r.Get("/{id}/produits", boutiqueHandler.ListBoutiqueProduits)
		})
		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Get("/statistics", boutiqueHandler.GetStatistics)
			r.Post("/", boutiqueHandler.CreateBoutique)
			r.Put("/{id}", boutiqueHandler.UpdateBoutique)
			r.Delete("/{id}", boutiqueHandler.DeleteBoutique)
		})
	})

	produitHandler := NewProduitHandler(svc.Produits, logger)
	r.Route("/produits", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			optional(r)
			r.Get("/", produitHandler.ListProduits)
			r.Post("/search", produitHandler.SearchProduits)
			r.Get("/{id}", produitHandler.GetProduit)
		})
		r.Group(func(r chi.Router) {
			authenticated(r)
			r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleBoutique))
			r.Post("/", produitHandler.CreateProduit)
			r.Put("/{id}", produitHandler.UpdateProduit)
			r.Delete("/{id}", produitHandler.DeleteProduit)
		})
	})

	categorieHandler := NewCategorieHandler(svc.Categories, logger)
	r.Route("/categories", func(r chi.Router) {
		r.Use(middleware.CacheControl(categoriesMaxAge))

		r.Get("/", categorieHandler.ListCategories)
	})

	zoneHandler := NewZoneHandler(svc.Zones, logger)
	r.Route("/zones", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", zoneHandler.ListZones)
		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Put("/{zoneId}", zoneHandler.AssignZone)
			r.Put("/{zoneId}/assign", zoneHandler.AssignZone)
		})
	})

	favoriHandler := NewFavoriHandler(svc.Favoris, logger)
	r.Route("/favoris", func(r chi.Router) {
		authenticated(r)

		r.Get("/", favoriHandler.ListFavoris)
		r.Get("/boutiques/ids", favoriHandler.BoutiqueIDs)
		r.Get("/boutiques/{id}/check", favoriHandler.CheckBoutique)
		r.With(throttle).Post("/boutiques/{id}/toggle", favoriHandler.ToggleBoutique)
		r.With(throttle).Post("/produits/{id}/toggle", favoriHandler.ToggleProduit)
	})

	sessionHandler := NewSessionHandler(verifier, logger)
	r.Route("/auth", func(r chi.Router) {
		authenticated(r)

		r.Post("/logout", sessionHandler.Logout)
	})

	return r
}
