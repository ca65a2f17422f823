package storefront

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trinity-retail/trinity-admin/internal/authz"
)

// RegisterPayload is the body of POST /users/register. Password carries
// the SHA-256 digest, never the plaintext.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token. Password must already
// be the lowercase-hex SHA-256 digest.
func (c *Client) Login(ctx context.Context, email, passwordDigest string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/user/login", loginRequest{Email: email, Password: passwordDigest}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("storefront: login response carried no token")
	}
	return resp.Token, nil
}

// CurrentUser fetches the identity bound to the current token.
func (c *Client) CurrentUser(ctx context.Context) (*authz.User, error) {
	var user authz.User
	if err := c.get(ctx, "/user/self", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register submits a new account. The remote outcome is returned as-is;
// registration does not imply login.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) error {
	return c.do(ctx, http.MethodPost, "/users/register", registerEnvelope{User: payload}, nil)
}

type registerEnvelope struct {
	User RegisterPayload `json:"user"`
}
