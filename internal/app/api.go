// Package app holds the client-side controllers: session resolution, the
// auth flow state machine, the two role dashboards and the shell that routes
// between them.
//
// Controllers own view state only. Every mutation goes to the backend and is
// followed by a full authoritative re-fetch; nothing is updated optimistically.
package app

import (
	"context"

	"github.com/okian/nodo/internal/adapters/http/client"
	"github.com/okian/nodo/internal/domain/model"
)

// IdentityAPI resolves the current user.
type IdentityAPI interface {
	Me(ctx context.Context) (*model.User, error)
}

// AuthAPI drives registration, verification and login.
type AuthAPI interface {
	Register(ctx context.Context, r model.Registration) (*model.RegistrationResult, error)
	Verify(ctx context.Context, v model.Verification) (*client.Response, error)
	Login(ctx context.Context, c model.Credentials) (*model.LoginResult, error)
}

// DeveloperAPI backs the developer dashboard.
type DeveloperAPI interface {
	DeveloperDashboard(ctx context.Context) (*model.DeveloperDashboard, error)
	CreateOpportunity(ctx context.Context, o model.NewOpportunity) (*model.Opportunity, error)
	UpdateProposalStatus(ctx context.Context, id string, status model.ProposalStatus) (*client.Response, error)
}

// ContractorAPI backs the contractor dashboard.
type ContractorAPI interface {
	ContractorDashboard(ctx context.Context) (*model.ContractorDashboard, error)
	ListOpportunities(ctx context.Context, f model.OpportunityFilter) ([]model.Opportunity, error)
	SubmitProposal(ctx context.Context, opportunityID string, p model.NewProposal) (*model.Proposal, error)
}

// API is everything the shell needs. *client.Client implements it.
type API interface {
	IdentityAPI
	AuthAPI
	DeveloperAPI
	ContractorAPI
	BaseURL() string
}

var _ API = (*client.Client)(nil)
