package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/okian/nodo/internal/domain/model"
)

// CreateOpportunity posts a new work listing.
func (c *Client) CreateOpportunity(ctx context.Context, o model.NewOpportunity) (*model.Opportunity, error) {
	var out model.Opportunity
	if _, err := c.do(ctx, "create_opportunity", http.MethodPost, "/opportunities", o, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOpportunities lists visible opportunities. Empty filter fields are left
// out of the query entirely.
func (c *Client) ListOpportunities(ctx context.Context, f model.OpportunityFilter) ([]model.Opportunity, error) {
	out := []model.Opportunity{}
	if _, err := c.do(ctx, "list_opportunities", http.MethodGet, opportunitiesPath(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func opportunitiesPath(f model.OpportunityFilter) string {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if len(q) == 0 {
		return "/opportunities"
	}
	return "/opportunities?" + q.Encode()
}

// GetOpportunity fetches one opportunity.
func (c *Client) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	var out model.Opportunity
	if _, err := c.do(ctx, "get_opportunity", http.MethodGet, pathf("/opportunities/%s", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
