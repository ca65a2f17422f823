package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trinity-retail/trinity-admin/internal/platform/httpx"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

// Handler serves the aggregated dashboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
	clients *storefront.Factory
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, clients *storefront.Factory) *Handler {
	return &Handler{logger: logger, service: service, clients: clients}
}

// MountRoutes registers stats routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	state := session.StateFromContext(r.Context())
	if state == nil || state.User() == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	// The cache may satisfy this request without an upstream round trip,
	// so the remote API never sees this session's token. The evaluator has
	// to stand in for that check here.
	if !state.HasPermission("/stats/earnings", http.MethodGet) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}

	dash, err := h.service.Dashboard(r.Context(), h.clients.For(state.Tokens()))
	if err != nil {
		if h.logger != nil {
			h.logger.Error("build dashboard", slog.Any("error", err))
		}
		httpx.RespondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}
