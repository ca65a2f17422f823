package session

import "context"

type stateContextKey struct{}

type sessionContextKey struct{}

// ContextWithState stores the per-request State in context.
func ContextWithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateContextKey{}, state)
}

// StateFromContext extracts the State from context, nil when absent.
func StateFromContext(ctx context.Context) *State {
	state, _ := ctx.Value(stateContextKey{}).(*State)
	return state
}

// ContextWithSession stores the raw session record in context so the
// middleware can commit it after the handler ran.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session record from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
