package session

import (
	"sync"

	"github.com/trinity-retail/trinity-admin/internal/authz"
)

// UserPatch carries a partial user update. Nil fields are left untouched;
// a non-nil Roles pointer replaces the whole role list, never merges it.
type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Roles     *[]authz.Role
}

// State is the single writable holder of "who is currently authenticated".
// It pairs the current user with the session's token store: clearing the
// user also removes the token, ending the session in one step.
//
// Subscribers are notified synchronously, in subscription order, after
// every change to the current user.
type State struct {
	mu     sync.Mutex
	user   *authz.User
	gen    uint64
	tokens TokenStore
	subs   []func(*authz.User)
}

// NewState builds an unauthenticated State over the given token store.
func NewState(tokens TokenStore) *State {
	return &State{tokens: tokens}
}

// NewStateFrom hydrates a State from a stored identity snapshot without
// notifying subscribers, for sessions resumed mid-lifetime.
func NewStateFrom(tokens TokenStore, u *authz.User) *State {
	return &State{tokens: tokens, user: u}
}

// User returns the current user, nil when unauthenticated.
func (s *State) User() *authz.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Tokens exposes the session-scoped token store. Only the auth gateway
// writes through it.
func (s *State) Tokens() TokenStore {
	return s.tokens
}

// Generation returns the logout epoch. ClearUser advances it, so an
// identity fetch started before a logout can detect it resolved too late.
func (s *State) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// SetUser replaces the current user wholesale.
func (s *State) SetUser(u *authz.User) {
	s.mu.Lock()
	s.user = u
	subs := s.snapshotSubs()
	s.mu.Unlock()
	notify(subs, u)
}

// SetUserAt applies the user only when gen still matches the current
// generation. It reports whether the write was applied; a false return
// means a ClearUser happened while the identity fetch was in flight and
// the result must be discarded.
func (s *State) SetUserAt(gen uint64, u *authz.User) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.user = u
	subs := s.snapshotSubs()
	s.mu.Unlock()
	notify(subs, u)
	return true
}

// UpdateUser merges the patch into the current user. When no user is set
// the state stays unauthenticated and nothing is notified.
func (s *State) UpdateUser(patch UserPatch) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	updated := *s.user
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.FirstName != nil {
		updated.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		updated.LastName = *patch.LastName
	}
	if patch.Roles != nil {
		updated.Roles = *patch.Roles
	}
	s.user = &updated
	subs := s.snapshotSubs()
	u := s.user
	s.mu.Unlock()
	notify(subs, u)
}

// ClearUser terminates the session: the user becomes absent, the stored
// token is removed and the generation advances so stale fetches are
// rejected by SetUserAt.
func (s *State) ClearUser() {
	s.mu.Lock()
	s.user = nil
	s.gen++
	subs := s.snapshotSubs()
	s.mu.Unlock()
	if s.tokens != nil {
		s.tokens.RemoveToken()
	}
	notify(subs, nil)
}

// HasPermission evaluates the current user against the authz rules.
// Unauthenticated states always answer false.
func (s *State) HasPermission(resource, action string) bool {
	return authz.HasPermission(s.User(), resource, action)
}

// Subscribe registers a change listener and returns its cancel func.
func (s *State) Subscribe(fn func(*authz.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.subs) {
			s.subs[idx] = nil
		}
	}
}

func (s *State) snapshotSubs() []func(*authz.User) {
	subs := make([]func(*authz.User), len(s.subs))
	copy(subs, s.subs)
	return subs
}

func notify(subs []func(*authz.User), u *authz.User) {
	for _, fn := range subs {
		if fn != nil {
			fn(u)
		}
	}
}

// MemoryTokenStore keeps the token in process memory. The worker and unit
// tests use it in place of a browser session.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokenStore builds a MemoryTokenStore, optionally pre-seeded.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

// Token returns the stored token.
func (m *MemoryTokenStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// SetToken stores a token.
func (m *MemoryTokenStore) SetToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

// RemoveToken drops the token.
func (m *MemoryTokenStore) RemoveToken() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

var _ TokenStore = (*MemoryTokenStore)(nil)
