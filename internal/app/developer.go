package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/pkg/logger"
	"github.com/okian/nodo/pkg/metrics"
)

// OpportunityForm is the "post opportunity" form as typed. Deadline is a
// date (YYYY-MM-DD); Budget is a decimal. Both are optional.
type OpportunityForm struct {
	Title       string
	Category    string
	Description string
	Deadline    string
	Budget      string
	Location    string
}

func blankOpportunityForm() OpportunityForm {
	return OpportunityForm{Category: string(model.DefaultCategory)}
}

// payload converts the form into the request body.
func (f OpportunityForm) payload() (model.NewOpportunity, error) {
	category, err := optionalCategory(f.Category)
	if err != nil {
		return model.NewOpportunity{}, err
	}
	if category == "" {
		category = model.DefaultCategory
	}
	deadline, err := deadlineTimestamp(f.Deadline)
	if err != nil {
		return model.NewOpportunity{}, err
	}
	budget, err := optionalMoney("budget", f.Budget)
	if err != nil {
		return model.NewOpportunity{}, err
	}
	return model.NewOpportunity{
		Title:       f.Title,
		Category:    category,
		Description: f.Description,
		Deadline:    deadline,
		Budget:      budget,
		Location:    f.Location,
	}, nil
}

// DeveloperPanel is the developer's dashboard: own opportunities and the
// proposals received on them.
type DeveloperPanel struct {
	api    DeveloperAPI
	logger logger.Logger
	seq    sequence

	mu            sync.RWMutex
	opportunities []model.Opportunity
	received      []model.Proposal
	form          OpportunityForm
	message       string
}

// NewDeveloperPanel creates an empty panel; call Load to mount it.
func NewDeveloperPanel(api DeveloperAPI, l logger.Logger) *DeveloperPanel {
	if l == nil {
		l = logger.Nop()
	}
	return &DeveloperPanel{api: api, logger: l, form: blankOpportunityForm()}
}

// Opportunities returns the developer's own listings as last loaded.
func (p *DeveloperPanel) Opportunities() []model.Opportunity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Opportunity(nil), p.opportunities...)
}

// Received returns the proposals received as last loaded.
func (p *DeveloperPanel) Received() []model.Proposal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Proposal(nil), p.received...)
}

// Form returns the opportunity form: blank after a successful post, the
// last attempt after a failed one.
func (p *DeveloperPanel) Form() OpportunityForm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.form
}

// Message returns the last error text, "" after a successful action.
func (p *DeveloperPanel) Message() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.message
}

// Load fetches the developer bundle and replaces the view with it, unless a
// newer load already landed.
func (p *DeveloperPanel) Load(ctx context.Context) error {
	ticket := p.seq.next()
	metrics.RecordDashboardLoad(string(model.RoleDeveloper))

	dash, err := p.api.DeveloperDashboard(ctx)
	if err != nil {
		p.setMessage(err.Error())
		p.logger.Warn(ctx, "developer dashboard load failed", logger.Error(err))
		return err
	}
	if !p.seq.apply(ticket) {
		metrics.RecordStaleResponse("developer.dashboard")
		p.logger.Debug(ctx, "dropped stale developer dashboard", logger.Uint64("ticket", ticket))
		return nil
	}

	p.mu.Lock()
	p.opportunities = dash.MyOpportunities
	p.received = dash.ProposalsReceived
	p.message = ""
	p.mu.Unlock()
	return nil
}

// CreateOpportunity posts the form. On success the form resets and the
// bundle is re-fetched; on failure the form keeps what was typed.
func (p *DeveloperPanel) CreateOpportunity(ctx context.Context, f OpportunityForm) error {
	p.mu.Lock()
	p.form = f
	p.message = ""
	p.mu.Unlock()

	payload, err := f.payload()
	if err != nil {
		p.setMessage(err.Error())
		return err
	}

	created, err := p.api.CreateOpportunity(ctx, payload)
	if err != nil {
		p.setMessage(err.Error())
		p.logger.Warn(ctx, "create opportunity failed", logger.Error(err))
		return err
	}

	p.mu.Lock()
	p.form = blankOpportunityForm()
	p.mu.Unlock()

	if created != nil {
		p.logger.Info(ctx, "opportunity posted", logger.String("opportunity_id", created.ID))
	}
	return p.Load(ctx)
}

// UpdateProposalStatus marks a received proposal viewed or selected, then
// re-fetches the bundle whatever the mutation's response body says.
func (p *DeveloperPanel) UpdateProposalStatus(ctx context.Context, proposalID string, status model.ProposalStatus) error {
	if status != model.StatusViewed && status != model.StatusSelected {
		err := fmt.Errorf("%w: %q", ErrUnsupportedStatus, status)
		p.setMessage(err.Error())
		return err
	}
	p.setMessage("")

	if _, err := p.api.UpdateProposalStatus(ctx, proposalID, status); err != nil {
		p.setMessage(err.Error())
		p.logger.Warn(ctx, "proposal status update failed",
			logger.String("proposal_id", proposalID),
			logger.String("status", string(status)),
			logger.Error(err))
		return err
	}
	return p.Load(ctx)
}

func (p *DeveloperPanel) setMessage(msg string) {
	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}
