package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"watchlist-service/internal/admin"
	"watchlist-service/internal/apperr"
	"watchlist-service/internal/auth"
	"watchlist-service/internal/catalog"
	"watchlist-service/internal/config"
	"watchlist-service/internal/review"
	"watchlist-service/internal/telemetry"
	"watchlist-service/internal/watchlist"
)

type services struct {
	auth       *auth.Server
	watchlists *watchlist.Server
	catalog    *catalog.Server
	reviews    *review.Server
	admin      *admin.Server
}

func setupRouter(cfg config.Config, svc services) http.Handler {
	r := chi.NewRouter()

	r.Use(corsMiddleware(cfg.CORSAllowedOrigin))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(bodySizeLimitMiddleware(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		apperr.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": serviceName,
		})
	})

	r.Mount("/auth", svc.auth.Router())
	r.Mount("/movies", svc.catalog.Router())
	r.Mount("/reviews", svc.reviews.Router(svc.auth.Authenticate))
	r.Mount("/watchlists", svc.watchlists.Router(svc.auth.Authenticate))
	r.Mount("/admin", svc.admin.Router(svc.auth.Authenticate, svc.auth.RequireRole(auth.RoleAdmin)))

	return telemetry.Handler(r, serviceName)
}
