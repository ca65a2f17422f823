package httpx

import (
	"errors"
	"net/http"

	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

// Sentinel errors for the gateway's own checks.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps gateway errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// RespondUpstream translates a storefront client error. Remote statuses
// pass through unchanged so the UI sees what the API decided; transport
// failures become a 502 with no detail leaked.
func RespondUpstream(w http.ResponseWriter, err error) {
	var se *storefront.StatusError
	if errors.As(err, &se) {
		Problem(w, se.Code, http.StatusText(se.Code), se.Body)
		return
	}
	Problem(w, http.StatusBadGateway, "Upstream Unavailable", "")
}
