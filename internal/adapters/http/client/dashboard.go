package client

import (
	"context"
	"net/http"

	"github.com/okian/nodo/internal/domain/model"
)

// DeveloperDashboard fetches the developer bundle: own opportunities and
// the proposals received on them.
func (c *Client) DeveloperDashboard(ctx context.Context) (*model.DeveloperDashboard, error) {
	var out model.DeveloperDashboard
	if _, err := c.do(ctx, "dashboard_developer", http.MethodGet, "/dashboard/developer", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContractorDashboard fetches the contractor bundle: visible opportunities
// and the caller's own proposals.
func (c *Client) ContractorDashboard(ctx context.Context) (*model.ContractorDashboard, error) {
	var out model.ContractorDashboard
	if _, err := c.do(ctx, "dashboard_contractor", http.MethodGet, "/dashboard/contractor", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
