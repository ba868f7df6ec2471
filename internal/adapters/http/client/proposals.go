package client

import (
	"context"
	"net/http"

	"github.com/okian/nodo/internal/domain/model"
)

// SubmitProposal bids on the opportunity with the given id.
func (c *Client) SubmitProposal(ctx context.Context, opportunityID string, p model.NewProposal) (*model.Proposal, error) {
	if p.Attachments == nil {
		p.Attachments = []string{}
	}
	var out model.Proposal
	if _, err := c.do(ctx, "submit_proposal", http.MethodPost, pathf("/opportunities/%s/proposals", opportunityID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyProposals lists the proposals the caller submitted.
func (c *Client) MyProposals(ctx context.Context) ([]model.Proposal, error) {
	out := []model.Proposal{}
	if _, err := c.do(ctx, "my_proposals", http.MethodGet, "/proposals/mine", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReceivedProposals lists proposals against the caller's opportunities.
func (c *Client) ReceivedProposals(ctx context.Context) ([]model.Proposal, error) {
	out := []model.Proposal{}
	if _, err := c.do(ctx, "received_proposals", http.MethodGet, "/proposals/for-me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProposalStatus moves a received proposal to status. The response body
// is returned as-is; callers re-fetch rather than trust it.
func (c *Client) UpdateProposalStatus(ctx context.Context, id string, status model.ProposalStatus) (*Response, error) {
	return c.Do(ctx, "update_proposal_status", http.MethodPatch, pathf("/proposals/%s/status", id), model.StatusUpdate{Status: status})
}
