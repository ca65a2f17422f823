// Package users exposes account administration: listing, CRUD, the
// current-user profile, password rotation and the promote/demote role
// shortcuts. All of it proxies the storefront API.
package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trinity-retail/trinity-admin/internal/auth"
	"github.com/trinity-retail/trinity-admin/internal/authz"
	"github.com/trinity-retail/trinity-admin/internal/platform/httpx"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	clients *storefront.Factory
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, clients *storefront.Factory) *Handler {
	return &Handler{logger: logger, clients: clients}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/self", h.self)
	r.Get("/self/details", h.selfDetails)
	r.Put("/self/password", h.updatePassword)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/promote", h.promote)
	r.Post("/{id}/demote", h.demote)
}

func (h *Handler) client(r *http.Request) *storefront.Client {
	state := session.StateFromContext(r.Context())
	if state == nil {
		return h.clients.For(nil)
	}
	return h.clients.For(state.Tokens())
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.client(r).ListUsers(r.Context())
	if err != nil {
		h.respondErr(w, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input storefront.CreateUserInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	// Admin-created accounts go through the same digest rule as
	// self-registration.
	input.Password = auth.DigestPassword(input.Password)
	account, err := h.client(r).CreateUser(r.Context(), input)
	if err != nil {
		h.respondErr(w, "create user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

// self serves the cached session identity without a remote round trip.
func (h *Handler) self(w http.ResponseWriter, r *http.Request) {
	state := session.StateFromContext(r.Context())
	if state == nil || state.User() == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	httpx.JSON(w, http.StatusOK, state.User())
}

func (h *Handler) selfDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.client(r).UserDetails(r.Context())
	if err != nil {
		h.respondErr(w, "fetch user details", err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	err := h.client(r).UpdatePassword(r.Context(),
		auth.DigestPassword(req.CurrentPassword),
		auth.DigestPassword(req.NewPassword))
	if err != nil {
		h.respondErr(w, "update password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var account authz.User
	if err := httpx.DecodeJSON(r, &account); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	account.ID = chi.URLParam(r, "id")
	if err := h.client(r).UpdateUser(r.Context(), account); err != nil {
		h.respondErr(w, "update user", err)
		return
	}

	// Editing your own account refreshes the cached session identity so
	// permission checks see the change immediately.
	state := session.StateFromContext(r.Context())
	if state != nil {
		if current := state.User(); current != nil && current.ID == account.ID {
			state.UpdateUser(session.UserPatch{
				Email:     &account.Email,
				FirstName: &account.FirstName,
				LastName:  &account.LastName,
				Roles:     &account.Roles,
			})
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.client(r).DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) promote(w http.ResponseWriter, r *http.Request) {
	if err := h.client(r).PromoteToManager(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, "promote user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) demote(w http.ResponseWriter, r *http.Request) {
	if err := h.client(r).DemoteToUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, "demote user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	var se *storefront.StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.RespondUpstream(w, err)
}
