// Package session owns authentication state for the admin gateway: the
// Redis-backed browser-session store that carries the storefront bearer
// token, and the per-request State that exposes the current user to
// handlers.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trinity-retail/trinity-admin/internal/authz"
)

// TokenStore is session-scoped storage for the storefront bearer token.
// The auth gateway is the only writer; the outgoing-request transport is
// the only other reader.
type TokenStore interface {
	Token() string
	SetToken(token string)
	RemoveToken()
}

// Store manages cookie-identified sessions backed by Redis. Each session
// record holds the remote API token and a snapshot of the identity fetched
// after login, so requests within the same browser session do not re-fetch
// the user on every call.
type Store struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session is the per-request view of one browser session.
type Session struct {
	ID string

	mu        sync.Mutex
	token     string
	user      *authz.User
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Token string      `json:"token,omitempty"`
	User  *authz.User `json:"user,omitempty"`
}

// NewStore constructs a Store.
func NewStore(client *redis.Client, cookieName, secret string, ttl time.Duration, secure bool) *Store {
	return &Store{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load resolves the session for a request, creating a fresh one when the
// cookie is absent or the record has expired.
func (s *Store) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return s.newSession(), nil
		}
		return nil, err
	}

	raw, err := s.client.Get(ctx, s.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := s.newSession()
			sess.ID = cookie.Value
			return sess, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &Session{ID: cookie.Value, token: stored.Token, user: stored.User}, nil
}

// Commit persists dirty sessions and writes the cookie. A destroyed session
// deletes its record and expires the cookie.
func (s *Store) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.destroyed {
		if err := s.client.Del(ctx, s.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.dirty || sess.isNew {
		data, err := json.Marshal(sessionPayload{Token: sess.token, User: sess.user})
		if err != nil {
			return err
		}
		if err := s.client.Set(ctx, s.redisKey(sess.ID), data, s.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(s.ttl),
	})
	return nil
}

// Destroy marks the session for deletion on the next Commit.
func (s *Store) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.destroyed = true
	sess.mu.Unlock()
}

// TTL exposes the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (s *Store) CookieName() string {
	return s.cookieName
}

// Token returns the stored bearer token, empty when unauthenticated.
func (sess *Session) Token() string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.token
}

// SetToken stores the bearer token for this session.
func (sess *Session) SetToken(token string) {
	sess.mu.Lock()
	sess.token = token
	sess.dirty = true
	sess.mu.Unlock()
}

// RemoveToken drops the bearer token.
func (sess *Session) RemoveToken() {
	sess.mu.Lock()
	sess.token = ""
	sess.dirty = true
	sess.mu.Unlock()
}

// UserSnapshot returns the identity captured at login, nil when absent.
func (sess *Session) UserSnapshot() *authz.User {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.user
}

// SetUserSnapshot replaces the stored identity. A nil user clears it.
func (sess *Session) SetUserSnapshot(u *authz.User) {
	sess.mu.Lock()
	sess.user = u
	sess.dirty = true
	sess.mu.Unlock()
}

func (s *Store) newSession() *Session {
	return &Session{ID: s.generateSessionID(), isNew: true, dirty: true}
}

func (s *Store) redisKey(id string) string {
	return "session:" + id
}

func (s *Store) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(s.secret) > 0 {
		for i := range b {
			b[i] ^= s.secret[i%len(s.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

var _ TokenStore = (*Session)(nil)
