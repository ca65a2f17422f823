// Package products exposes the catalog administration endpoints of the
// gateway. Every operation is a pass-through to the storefront API; the
// remote side owns validation and authorization.
package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trinity-retail/trinity-admin/internal/platform/httpx"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

// Handler proxies product CRUD to the storefront API.
type Handler struct {
	logger  *slog.Logger
	clients *storefront.Factory
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, clients *storefront.Factory) *Handler {
	return &Handler{logger: logger, clients: clients}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
}

func (h *Handler) client(r *http.Request) *storefront.Client {
	state := session.StateFromContext(r.Context())
	if state == nil {
		return h.clients.For(nil)
	}
	return h.clients.For(state.Tokens())
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.client(r).ListProducts(r.Context())
	if err != nil {
		h.respondErr(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input storefront.ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	item, err := h.client(r).CreateProduct(r.Context(), input)
	if err != nil {
		h.respondErr(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var patch storefront.ProductPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	item, err := h.client(r).UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondErr(w, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.client(r).DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondUpstream(w, err)
}
