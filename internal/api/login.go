package api

import (
	"context"
	"errors"
	"fmt"
)

const loginPath = "/login"

type loginResponse struct {
	Token struct {
		IDToken      string `json:"id_token"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"token"`
}

// Login exchanges the configured user id and password for an id token.
func (c *Client) Login(ctx context.Context) (string, error) {
	if c.UserID == "" || c.Password == "" {
		return "", fmt.Errorf("%w: missing AnnoFab user id or password", ErrUnauthorized)
	}
	var out loginResponse
	body := map[string]string{"user_id": c.UserID, "password": c.Password}
	if _, err := c.doJSON(ctx, "POST", loginPath, nil, body, &out); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if out.Token.IDToken == "" {
		return "", errors.New("login: response missing id_token")
	}
	c.mu.Lock()
	c.token = out.Token.IDToken
	c.mu.Unlock()
	return out.Token.IDToken, nil
}

// Token returns the id token obtained by Login, if any.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) ensureToken(ctx context.Context, path string) (string, error) {
	if path == loginPath {
		return "", nil
	}
	if token := c.Token(); token != "" {
		return token, nil
	}
	return c.Login(ctx)
}
