package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/trinity-retail/trinity-admin/internal/authz"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

func newDashboardRouter(t *testing.T, svc *Service, upstreamURL string, user *authz.User) chi.Router {
	t.Helper()
	state := session.NewStateFrom(session.NewMemoryTokenStore("tok-1"), user)
	handler := NewHandler(nil, svc, storefront.NewFactory(upstreamURL, 5*time.Second))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.ContextWithState(req.Context(), state)))
		})
	})
	handler.MountRoutes(r)
	return r
}

func statsViewer() *authz.User {
	return &authz.User{
		ID:    "u-1",
		Email: "admin@test.local",
		Roles: []authz.Role{{
			Name:        "admin",
			Permissions: []authz.Permission{{Resource: "/stats/*", Actions: []string{"GET"}}},
		}},
	}
}

func TestDashboardEndpointRequiresLogin(t *testing.T) {
	router := newDashboardRouter(t, NewService(nil, time.Minute, nil), "http://127.0.0.1:0", nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestDashboardEndpointServesPermittedUser(t *testing.T) {
	var hits atomic.Int64
	upstream := newStatsUpstream(&hits)
	defer upstream.Close()

	router := newDashboardRouter(t, NewService(nil, time.Minute, nil), upstream.URL, statsViewer())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, res.Code)
	var dash Dashboard
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &dash))
	require.Equal(t, 12, dash.TotalUsers)
}

func TestDashboardEndpointDeniesPermissionlessUser(t *testing.T) {
	var hits atomic.Int64
	upstream := newStatsUpstream(&hits)
	defer upstream.Close()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(cache, time.Minute, nil)

	// Warm the cache the way the background job would, with a fully
	// privileged service client.
	_, err := svc.Refresh(context.Background(), storefront.NewClient(upstream.URL, staticTokens("svc-tok")))
	require.NoError(t, err)
	warmupHits := hits.Load()

	// A logged-in account with no stats grant must not read the cached
	// dashboard: the cache bypasses the remote API's own check.
	nobody := &authz.User{ID: "u-2", Email: "clerk@test.local"}
	router := newDashboardRouter(t, svc, upstream.URL, nobody)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusForbidden, res.Code)
	require.NotContains(t, res.Body.String(), "earnings")
	require.Equal(t, warmupHits, hits.Load(), "denial must not touch the upstream either")
}
