package storefront

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trinity-retail/trinity-admin/internal/authz"
)

// City is the postal locality attached to a customer account.
type City struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PostalCode int    `json:"postalCode"`
	Country    string `json:"country"`
}

// FullUser is the detailed account shape used by the user table.
type FullUser struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Name        string       `json:"name"`
	PhoneNumber string       `json:"phoneNumber"`
	Address     string       `json:"address"`
	City        City         `json:"city"`
	Roles       []authz.Role `json:"roles"`
}

// CreateUserInput carries the admin "create account" form. Password must
// already be digested.
type CreateUserInput struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastname"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Address     string `json:"address"`
	City        City   `json:"city"`
}

type userEnvelope[T any] struct {
	User T `json:"user"`
}

type passwordUpdate struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]authz.User, error) {
	var users []authz.User
	if err := c.get(ctx, "/user", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserDetails fetches the extended profile of the current user.
func (c *Client) UserDetails(ctx context.Context) (*FullUser, error) {
	var user FullUser
	if err := c.get(ctx, "/user/details/self", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates an account through the admin endpoint.
func (c *Client) CreateUser(ctx context.Context, input CreateUserInput) (*FullUser, error) {
	var user FullUser
	if err := c.do(ctx, http.MethodPost, "/user", userEnvelope[CreateUserInput]{User: input}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces an account's editable fields.
func (c *Client) UpdateUser(ctx context.Context, user authz.User) error {
	return c.do(ctx, http.MethodPut, "/user/"+user.ID, userEnvelope[authz.User]{User: user}, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/user/"+id, nil, nil)
}

// UpdatePassword rotates the current user's password. Both arguments are
// SHA-256 digests; plaintext never reaches the wire.
func (c *Client) UpdatePassword(ctx context.Context, currentDigest, newDigest string) error {
	return c.do(ctx, http.MethodPut, "/user/self/password", passwordUpdate{
		CurrentPassword: currentDigest,
		NewPassword:     newDigest,
	}, nil)
}

// PromoteToManager grants the manager role to an account.
func (c *Client) PromoteToManager(ctx context.Context, userID string) error {
	return c.get(ctx, fmt.Sprintf("/gestion/promote_to_manager/%s", userID), nil)
}

// DemoteToUser strips the manager role from an account.
func (c *Client) DemoteToUser(ctx context.Context, userID string) error {
	return c.get(ctx, fmt.Sprintf("/gestion/demote_to_user/%s", userID), nil)
}
