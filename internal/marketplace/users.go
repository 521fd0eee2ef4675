package marketplace

import (
	"context"
	"fmt"
	"io"

	"tengemart/internal/domain"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token pair.
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	var pair TokenPair
	if err := c.postJSON(ctx, "", "users/login/", creds, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("login: %w", err)
	}
	return pair, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) error {
	if err := c.postJSON(ctx, "", "users/register/", reg, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Profile resolves the identity behind a token.
func (c *Client) Profile(ctx context.Context, token string) (domain.User, error) {
	var u domain.User
	if err := c.get(ctx, token, "users/profile/", nil, &u); err != nil {
		return domain.User{}, fmt.Errorf("profile: %w", err)
	}
	return u, nil
}

// ProfilePatch carries only the fields being changed.
type ProfilePatch struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (domain.User, error) {
	var u domain.User
	if err := c.patchJSON(ctx, token, "users/profile/", patch, &u); err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (c *Client) UpdateAvatar(ctx context.Context, token, filename string, content io.Reader) (domain.User, error) {
	var u domain.User
	up := &Upload{Field: "avatar", Name: filename, Content: content}
	if err := c.doMultipart(ctx, token, "PATCH", "users/profile/avatar/", nil, up, &u); err != nil {
		return domain.User{}, fmt.Errorf("update avatar: %w", err)
	}
	return u, nil
}
