package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/trinity-retail/trinity-admin/internal/auth"
	"github.com/trinity-retail/trinity-admin/internal/authz"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

// newUpstream fakes the storefront identity endpoints.
func newUpstream(t *testing.T, valid map[string]string, user *authz.User) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/login":
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if valid[body.Email] == body.Password {
				_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + body.Email})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		case "/user/self":
			if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(user)
		case "/users/register":
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newAuthRouter(t *testing.T, upstreamURL string) (chi.Router, *session.State) {
	t.Helper()
	state := session.NewState(session.NewMemoryTokenStore(""))
	handler := auth.NewHandler(nil, storefront.NewFactory(upstreamURL, 5*time.Second))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.ContextWithState(req.Context(), state)))
		})
	})
	handler.MountRoutes(r)
	return r, state
}

func TestLoginEndpointSuccess(t *testing.T) {
	user := &authz.User{
		ID:    "u-1",
		Email: "admin@test.local",
		Roles: []authz.Role{{Name: "admin", Permissions: []authz.Permission{{Resource: "/*", Actions: []string{"*"}}}}},
	}
	digest := auth.DigestPassword("s3cretpw!")
	upstream := newUpstream(t, map[string]string{"admin@test.local": digest}, user)
	defer upstream.Close()

	router, state := newAuthRouter(t, upstream.URL)

	body := `{"email":"admin@test.local","password":"s3cretpw!"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "tok-admin@test.local", state.Tokens().Token())
	require.True(t, state.HasPermission("/product", "DELETE"))
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	upstream := newUpstream(t, map[string]string{}, nil)
	defer upstream.Close()

	router, state := newAuthRouter(t, upstream.URL)

	body := `{"email":"admin@test.local","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Nil(t, state.User())
	require.Empty(t, state.Tokens().Token())
}

func TestLoginEndpointValidationErrors(t *testing.T) {
	upstream := newUpstream(t, map[string]string{}, nil)
	defer upstream.Close()

	router, _ := newAuthRouter(t, upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.com","password":"weak"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	var payload struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Contains(t, payload.Errors, "password")
}

func TestLogoutEndpoint(t *testing.T) {
	user := &authz.User{ID: "u-1", Email: "admin@test.local"}
	digest := auth.DigestPassword("s3cretpw!")
	upstream := newUpstream(t, map[string]string{"admin@test.local": digest}, user)
	defer upstream.Close()

	router, state := newAuthRouter(t, upstream.URL)

	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"admin@test.local","password":"s3cretpw!"}`))
	router.ServeHTTP(httptest.NewRecorder(), login)
	require.NotNil(t, state.User())

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, logout)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Nil(t, state.User())
	require.Empty(t, state.Tokens().Token())
}

func TestMeEndpointUnauthenticated(t *testing.T) {
	upstream := newUpstream(t, map[string]string{}, nil)
	defer upstream.Close()

	router, _ := newAuthRouter(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCapabilitiesReflectPermissions(t *testing.T) {
	user := &authz.User{
		ID:    "u-2",
		Email: "clerk@test.local",
		Roles: []authz.Role{{
			Name:        "clerk",
			Permissions: []authz.Permission{{Resource: "/product", Actions: []string{"GET"}}},
		}},
	}
	digest := auth.DigestPassword("s3cretpw!")
	upstream := newUpstream(t, map[string]string{"clerk@test.local": digest}, user)
	defer upstream.Close()

	router, _ := newAuthRouter(t, upstream.URL)

	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"clerk@test.local","password":"s3cretpw!"}`))
	router.ServeHTTP(httptest.NewRecorder(), login)

	req := httptest.NewRequest(http.MethodGet, "/capabilities", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var caps map[string]bool
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &caps))
	require.True(t, caps["products.view"])
	require.False(t, caps["products.delete"])
	require.False(t, caps["users.view"])
}

func TestCapabilitiesUnauthenticatedAllFalse(t *testing.T) {
	upstream := newUpstream(t, map[string]string{}, nil)
	defer upstream.Close()

	router, _ := newAuthRouter(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/capabilities", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	var caps map[string]bool
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &caps))
	for name, allowed := range caps {
		require.False(t, allowed, "capability %s must be false when logged out", name)
	}
}
