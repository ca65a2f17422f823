package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/trinity-retail/trinity-admin/internal/authz"
	"github.com/trinity-retail/trinity-admin/internal/platform/httpx"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

// Handler wires the authentication endpoints of the admin gateway.
type Handler struct {
	logger  *slog.Logger
	clients *storefront.Factory
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, clients *storefront.Factory) *Handler {
	return &Handler{logger: logger, clients: clients}
}

// MountRoutes registers auth routes on the provided router. Credential
// endpoints get a tighter rate limit than the rest of the gateway.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/login", h.handleLogin)
		r.Post("/register", h.handleRegister)
	})
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
	r.Get("/capabilities", h.handleCapabilities)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) service(state *session.State) *Service {
	return NewService(h.clients.For(state.Tokens()), h.logger)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := session.StateFromContext(r.Context())
	if state == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	err := h.service(state).Login(r.Context(), state, req.Email, req.Password)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, map[string]any{"user": state.User()})
	case errors.Is(err, ErrInvalidCredentials):
		// Generic on purpose: the UI shows one inline message for both
		// unknown email and wrong password.
		httpx.Problem(w, http.StatusUnauthorized, "Invalid Credentials", "")
	case errors.Is(err, ErrLoginSuperseded):
		httpx.Problem(w, http.StatusConflict, "Session Ended", "login resolved after logout")
	default:
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
			return
		}
		if h.logger != nil {
			h.logger.Error("login upstream failure", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "")
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	state := session.StateFromContext(r.Context())
	if state == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	err := h.service(state).Register(r.Context(), req.Username, req.Email, req.Password)
	if err == nil {
		httpx.JSON(w, http.StatusCreated, map[string]string{"status": "registered"})
		return
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
		return
	}
	var se *storefront.StatusError
	if errors.As(err, &se) {
		// The remote registration outcome is surfaced as-is.
		httpx.Problem(w, se.Code, "Registration Rejected", se.Body)
		return
	}
	if h.logger != nil {
		h.logger.Error("register upstream failure", slog.Any("error", err))
	}
	httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	state := session.StateFromContext(r.Context())
	if state != nil {
		h.service(state).Logout(state)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	state := session.StateFromContext(r.Context())
	if state == nil || state.User() == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	httpx.JSON(w, http.StatusOK, state.User())
}

// affordances lists the UI controls the SPA decides to show or hide. The
// answers mirror what the storefront API will enforce; they are hints, not
// grants.
var affordances = []struct {
	Name     string
	Resource string
	Action   string
}{
	{"products.view", "/product", http.MethodGet},
	{"products.create", "/product", http.MethodPost},
	{"products.update", "/product", http.MethodPut},
	{"products.delete", "/product", http.MethodDelete},
	{"users.view", "/user", http.MethodGet},
	{"users.create", "/user", http.MethodPost},
	{"users.update", "/user", http.MethodPut},
	{"users.delete", "/user", http.MethodDelete},
	{"roles.promote", "/gestion/promote_to_manager", http.MethodGet},
	{"roles.demote", "/gestion/demote_to_user", http.MethodGet},
	{"stats.view", "/stats/earnings", http.MethodGet},
}

func (h *Handler) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	state := session.StateFromContext(r.Context())
	result := make(map[string]bool, len(affordances))
	var user *authz.User
	if state != nil {
		user = state.User()
	}
	for _, a := range affordances {
		result[a.Name] = authz.HasPermission(user, a.Resource, a.Action)
	}
	httpx.JSON(w, http.StatusOK, result)
}
