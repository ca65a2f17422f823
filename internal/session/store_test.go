package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, "trinity_session", "secret", time.Hour, false)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := store.Load(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	sess.SetToken("bearer-token")
	sess.SetUserSnapshot(adminUser())

	res := httptest.NewRecorder()
	require.NoError(t, store.Commit(ctx, res, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "trinity_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	// A follow-up request with the cookie resumes the same session.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: store.CookieName(), Value: sess.ID})
	resumed, err := store.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "bearer-token", resumed.Token())
	require.NotNil(t, resumed.UserSnapshot())
	require.Equal(t, "admin@test.local", resumed.UserSnapshot().Email)
}

func TestStoreDestroy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := store.Load(ctx, req)
	require.NoError(t, err)
	sess.SetToken("bearer-token")

	res := httptest.NewRecorder()
	require.NoError(t, store.Commit(ctx, res, sess))

	store.Destroy(sess)
	res = httptest.NewRecorder()
	require.NoError(t, store.Commit(ctx, res, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge, "destroy expires the cookie")

	// The record is gone, so the old cookie yields a fresh session.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: store.CookieName(), Value: sess.ID})
	resumed, err := store.Load(ctx, next)
	require.NoError(t, err)
	require.Empty(t, resumed.Token())
	require.Nil(t, resumed.UserSnapshot())
}

func TestStoreUnknownCookieGetsFreshSession(t *testing.T) {
	store := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: store.CookieName(), Value: "expired-id"})
	sess, err := store.Load(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "expired-id", sess.ID, "cookie identity is kept")
	require.Empty(t, sess.Token())
}
