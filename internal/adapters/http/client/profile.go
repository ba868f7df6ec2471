package client

import (
	"context"
	"net/http"

	"github.com/okian/nodo/internal/domain/model"
)

// GetProfile fetches the caller's profile document.
func (c *Client) GetProfile(ctx context.Context) (model.Profile, error) {
	out := model.Profile{}
	if _, err := c.do(ctx, "get_profile", http.MethodGet, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile replaces the caller's profile document and returns what the
// backend stored.
func (c *Client) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	out := model.Profile{}
	if _, err := c.do(ctx, "update_profile", http.MethodPut, "/profile", p, &out); err != nil {
		return nil, err
	}
	return out, nil
}
