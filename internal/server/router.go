package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/newsletter-api/internal/api"
	apiMiddleware "github.com/phrazzld/newsletter-api/internal/api/middleware"
	"github.com/phrazzld/newsletter-api/internal/platform/postgres"
)

// NewRouter creates the application router with every route and middleware.
// The pool is shared by all requests; handlers never close it.
func NewRouter(db *sql.DB, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(logger))
	r.Use(middleware.Recoverer)

	subscriptions := api.NewSubscriptionHandler(postgres.NewSubscriptionStore(db, logger), logger)

	r.Get("/health_check", api.HealthCheck)
	r.Post("/subscriptions", subscriptions.Subscribe)

	return r
}
