package client

import (
	"context"
	"net/http"

	"github.com/okian/nodo/internal/domain/model"
)

// Register creates an account. The backend answers with the verification
// code instead of emailing it.
func (c *Client) Register(ctx context.Context, r model.Registration) (*model.RegistrationResult, error) {
	var out model.RegistrationResult
	if _, err := c.do(ctx, "register", http.MethodPost, "/auth/register", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify confirms an email address with the code from registration.
func (c *Client) Verify(ctx context.Context, v model.Verification) (*Response, error) {
	return c.Do(ctx, "verify", http.MethodPost, "/auth/verify", v)
}

// Login exchanges credentials for a token. Persisting the token is the
// caller's job.
func (c *Client) Login(ctx context.Context, cr model.Credentials) (*model.LoginResult, error) {
	var out model.LoginResult
	if _, err := c.do(ctx, "login", http.MethodPost, "/auth/login", cr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user the session's token belongs to. A reply without a
// user (null, empty or non-JSON body, no id) yields nil and no error.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out *model.User
	if _, err := c.do(ctx, "me", http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	if out == nil || out.ID == "" {
		return nil, nil
	}
	return out, nil
}
