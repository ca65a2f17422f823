package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/trinity-retail/trinity-admin/internal/auth"
	"github.com/trinity-retail/trinity-admin/internal/observability"
	"github.com/trinity-retail/trinity-admin/internal/products"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/stats"
	"github.com/trinity-retail/trinity-admin/internal/users"
	"github.com/trinity-retail/trinity-admin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionStore    *session.Store
	AuthHandler     *auth.Handler
	ProductsHandler *products.Handler
	UsersHandler    *users.Handler
	StatsHandler    *stats.Handler
	JobsHandler     *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with gateway defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:       params.Logger,
		Config:       params.Config,
		SessionStore: params.SessionStore,
		Metrics:      params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.ProductsHandler != nil {
			r.Route("/products", params.ProductsHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.StatsHandler != nil {
			r.Route("/stats", params.StatsHandler.MountRoutes)
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
