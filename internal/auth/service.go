// Package auth bridges credential flows to the session state: login against
// the remote identity endpoint, registration, and logout. It is the only
// writer of the session token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/trinity-retail/trinity-admin/internal/authz"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

// ErrInvalidCredentials is the generic login failure. It deliberately
// carries no field detail so the UI cannot leak which part was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrLoginSuperseded reports that a logout happened while the login's
// identity fetch was in flight; the stale result was discarded.
var ErrLoginSuperseded = errors.New("auth: login superseded by logout")

// Identity is the remote identity endpoint the service authenticates
// against. *storefront.Client satisfies it.
type Identity interface {
	Login(ctx context.Context, email, passwordDigest string) (string, error)
	CurrentUser(ctx context.Context) (*authz.User, error)
	Register(ctx context.Context, payload storefront.RegisterPayload) error
}

// validate is shared by all Service instances; a Service is constructed
// per request around the session's token-carrying client.
var validate = validator.New()

// Service implements the credential flows for one request's session.
type Service struct {
	identity Identity
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(identity Identity, logger *slog.Logger) *Service {
	return &Service{identity: identity, logger: logger}
}

// Login authenticates the credentials and populates the session state.
//
// The password is digested locally and never transmitted in plaintext. On
// a rejected login the state is left untouched and ErrInvalidCredentials
// is returned; transport failures propagate wrapped. A logout racing the
// identity fetch wins: the fetched user is discarded and the session stays
// terminated.
func (s *Service) Login(ctx context.Context, state *session.State, email, password string) error {
	if errs := validateLogin(validate, email, password); errs != nil {
		return errs
	}

	gen := state.Generation()

	token, err := s.identity.Login(ctx, email, DigestPassword(password))
	if err != nil {
		var se *storefront.StatusError
		if errors.As(err, &se) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("auth: login: %w", err)
	}

	state.Tokens().SetToken(token)

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		// Do not leave a token without an identity behind it.
		state.Tokens().RemoveToken()
		return fmt.Errorf("auth: fetch current user: %w", err)
	}
	if !state.SetUserAt(gen, user) {
		state.Tokens().RemoveToken()
		if s.logger != nil {
			s.logger.Info("discarding login that resolved after logout", slog.String("email", email))
		}
		return ErrLoginSuperseded
	}
	return nil
}

// Register validates the payload locally, then submits it with a digested
// password. Field-level validation errors are returned without any network
// call; the remote outcome is returned as-is. Registration never touches
// session state.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	if errs := validateRegistration(validate, username, email, password); errs != nil {
		return errs
	}
	if err := s.identity.Register(ctx, storefront.RegisterPayload{
		Username: username,
		Email:    email,
		Password: DigestPassword(password),
	}); err != nil {
		return fmt.Errorf("auth: register: %w", err)
	}
	return nil
}

// Logout terminates the session. The token is purely client-held, so no
// remote call is made; revocation is the deletion itself.
func (s *Service) Logout(state *session.State) {
	state.ClearUser()
}
