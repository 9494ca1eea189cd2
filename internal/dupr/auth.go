package dupr

import (
	"context"
	"net/http"
	"time"
)

// Token lifetime granted by the login endpoint.
const tokenLifetime = 12 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

// Login authenticates with email and password and stores the bearer token.
func (c *Client) Login(ctx context.Context) error {
	if c.config.Email == "" || c.config.Password == "" {
		return NewAuthenticationError("email and password are required", nil)
	}

	c.logger.WithField("email", c.config.Email).Info("Logging in to DUPR")

	result, err := c.request(ctx, http.MethodPost, "/auth/v1.0/login", loginRequest{
		Email:    c.config.Email,
		Password: c.config.Password,
	}, "login", false)
	if err != nil {
		return NewAuthenticationError("login request failed", err)
	}

	var login loginResult
	if err := unmarshalResult(result, &login); err != nil {
		return NewAuthenticationError("failed to decode login response", err)
	}

	// Older API versions return "token", newer ones "accessToken".
	token := login.Token
	if token == "" {
		token = login.AccessToken
	}
	if token == "" {
		return NewAuthenticationError("no token in login response", nil)
	}

	c.SetToken(token, time.Now().Add(tokenLifetime))
	c.logger.Info("Login successful, token obtained")
	return nil
}

// RefreshSession re-authenticates when the stored token is near expiry.
func (c *Client) RefreshSession(ctx context.Context) error {
	if !c.NeedsRefresh() {
		return nil
	}
	c.logger.Debug("Refreshing DUPR token")
	return c.Login(ctx)
}

// Logout clears the stored token.
func (c *Client) Logout() {
	c.SetToken("", time.Time{})
	c.logger.Info("Logged out from DUPR")
}
