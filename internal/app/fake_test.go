package app

import (
	"context"
	"sync"

	"github.com/okian/nodo/internal/adapters/http/client"
	"github.com/okian/nodo/internal/domain/model"
)

// fakeAPI is a scriptable API. Every call is appended to calls; blocking
// hooks let tests interleave overlapping fetches.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	user  *model.User
	meErr error

	registerRes *model.RegistrationResult
	registerErr error
	verifyErr   error
	loginRes    *model.LoginResult
	loginErr    error

	registered []model.Registration
	verified   []model.Verification

	devDash       *model.DeveloperDashboard
	devDashErr    error
	createErr     error
	created       []model.NewOpportunity
	statusErr     error
	statusUpdates []model.StatusUpdate

	conDash    *model.ContractorDashboard
	conDashErr error
	listed     []model.OpportunityFilter
	listResult []model.Opportunity
	listErr    error
	submitErr  error
	submitted  []model.NewProposal

	// listHook, when set, runs inside ListOpportunities and supplies its
	// result.
	listHook func(filter model.OpportunityFilter) []model.Opportunity
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) BaseURL() string { return "http://backend.test" }

func (f *fakeAPI) Me(context.Context) (*model.User, error) {
	f.record("me")
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func (f *fakeAPI) Register(_ context.Context, r model.Registration) (*model.RegistrationResult, error) {
	f.record("register")
	f.registered = append(f.registered, r)
	return f.registerRes, f.registerErr
}

func (f *fakeAPI) Verify(_ context.Context, v model.Verification) (*client.Response, error) {
	f.record("verify")
	f.verified = append(f.verified, v)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &client.Response{StatusCode: 200, ContentType: "application/json", Body: []byte(`{}`)}, nil
}

func (f *fakeAPI) Login(context.Context, model.Credentials) (*model.LoginResult, error) {
	f.record("login")
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) DeveloperDashboard(context.Context) (*model.DeveloperDashboard, error) {
	f.record("developer_dashboard")
	if f.devDashErr != nil {
		return nil, f.devDashErr
	}
	return f.devDash, nil
}

func (f *fakeAPI) CreateOpportunity(_ context.Context, o model.NewOpportunity) (*model.Opportunity, error) {
	f.record("create_opportunity")
	f.created = append(f.created, o)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.Opportunity{ID: "o-new", Title: o.Title, Category: o.Category}, nil
}

func (f *fakeAPI) UpdateProposalStatus(_ context.Context, _ string, status model.ProposalStatus) (*client.Response, error) {
	f.record("update_proposal_status")
	f.statusUpdates = append(f.statusUpdates, model.StatusUpdate{Status: status})
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &client.Response{StatusCode: 200, ContentType: "text/plain", Body: []byte("ok")}, nil
}

func (f *fakeAPI) ContractorDashboard(context.Context) (*model.ContractorDashboard, error) {
	f.record("contractor_dashboard")
	if f.conDashErr != nil {
		return nil, f.conDashErr
	}
	return f.conDash, nil
}

func (f *fakeAPI) ListOpportunities(_ context.Context, filter model.OpportunityFilter) ([]model.Opportunity, error) {
	f.record("list_opportunities")
	f.mu.Lock()
	f.listed = append(f.listed, filter)
	result := f.listResult
	hook := f.listHook
	f.mu.Unlock()
	if hook != nil {
		result = hook(filter)
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return result, nil
}

func (f *fakeAPI) SubmitProposal(_ context.Context, _ string, p model.NewProposal) (*model.Proposal, error) {
	f.record("submit_proposal")
	f.submitted = append(f.submitted, p)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &model.Proposal{ID: "p-new", Status: model.StatusSubmitted}, nil
}
