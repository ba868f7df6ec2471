package app

import (
	"context"
	"sync"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/pkg/logger"
	"github.com/okian/nodo/pkg/metrics"
)

// FilterForm narrows the marketplace. Blank fields do not filter.
type FilterForm struct {
	Category string
	Location string
}

// ProposalForm is the proposal draft as typed. Amount is a decimal and
// TimelineWeeks a whole number; both are optional.
type ProposalForm struct {
	Amount        string
	Message       string
	TimelineWeeks string
}

func (f ProposalForm) payload() (model.NewProposal, error) {
	amount, err := optionalMoney("amount", f.Amount)
	if err != nil {
		return model.NewProposal{}, err
	}
	weeks, err := optionalInt("timeline_weeks", f.TimelineWeeks)
	if err != nil {
		return model.NewProposal{}, err
	}
	return model.NewProposal{
		Amount:        amount,
		Message:       f.Message,
		TimelineWeeks: weeks,
		Attachments:   []string{},
	}, nil
}

// ContractorPanel is the contractor's dashboard: the marketplace and the
// contractor's own proposals, plus the proposal form.
type ContractorPanel struct {
	api    ContractorAPI
	logger logger.Logger

	// Load writes both halves; Filter writes only the marketplace half.
	oppSeq  sequence
	propSeq sequence

	mu            sync.RWMutex
	opportunities []model.Opportunity
	myProposals   []model.Proposal
	filter        FilterForm
	selected      *model.Opportunity
	draft         ProposalForm
	message       string
}

// NewContractorPanel creates an empty panel; call Load to mount it.
func NewContractorPanel(api ContractorAPI, l logger.Logger) *ContractorPanel {
	if l == nil {
		l = logger.Nop()
	}
	return &ContractorPanel{api: api, logger: l}
}

// Opportunities returns the marketplace as last loaded or filtered.
func (p *ContractorPanel) Opportunities() []model.Opportunity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Opportunity(nil), p.opportunities...)
}

// MyProposals returns the contractor's own proposals as last loaded.
func (p *ContractorPanel) MyProposals() []model.Proposal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.Proposal(nil), p.myProposals...)
}

// CurrentFilter returns the last filter applied.
func (p *ContractorPanel) CurrentFilter() FilterForm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

// Selected returns the opportunity the proposal form is open for, or nil.
func (p *ContractorPanel) Selected() *model.Opportunity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selected == nil {
		return nil
	}
	op := *p.selected
	return &op
}

// Draft returns the proposal form fields.
func (p *ContractorPanel) Draft() ProposalForm {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.draft
}

// Message returns the last error text, "" after a successful action.
func (p *ContractorPanel) Message() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.message
}

// Load fetches the contractor bundle. Each half is applied only if no newer
// write to it has landed.
func (p *ContractorPanel) Load(ctx context.Context) error {
	oppTicket := p.oppSeq.next()
	propTicket := p.propSeq.next()
	metrics.RecordDashboardLoad(string(model.RoleContractor))

	dash, err := p.api.ContractorDashboard(ctx)
	if err != nil {
		p.setMessage(err.Error())
		p.logger.Warn(ctx, "contractor dashboard load failed", logger.Error(err))
		return err
	}

	applyOpps := p.oppSeq.apply(oppTicket)
	applyProps := p.propSeq.apply(propTicket)
	if !applyOpps {
		metrics.RecordStaleResponse("contractor.opportunities")
	}
	if !applyProps {
		metrics.RecordStaleResponse("contractor.proposals")
	}

	p.mu.Lock()
	if applyOpps {
		p.opportunities = dash.Opportunities
	}
	if applyProps {
		p.myProposals = dash.MyProposals
	}
	if applyOpps || applyProps {
		p.message = ""
	}
	p.mu.Unlock()
	return nil
}

// Filter lists opportunities matching f and replaces the marketplace half
// only. Blank fields are not sent.
func (p *ContractorPanel) Filter(ctx context.Context, f FilterForm) error {
	p.mu.Lock()
	p.filter = f
	p.message = ""
	p.mu.Unlock()

	category, err := optionalCategory(f.Category)
	if err != nil {
		p.setMessage(err.Error())
		return err
	}

	ticket := p.oppSeq.next()
	ops, err := p.api.ListOpportunities(ctx, model.OpportunityFilter{Category: category, Location: f.Location})
	if err != nil {
		p.setMessage(err.Error())
		p.logger.Warn(ctx, "filter opportunities failed", logger.Error(err))
		return err
	}
	if !p.oppSeq.apply(ticket) {
		metrics.RecordStaleResponse("contractor.opportunities")
		p.logger.Debug(ctx, "dropped stale opportunity list", logger.Uint64("ticket", ticket))
		return nil
	}

	p.mu.Lock()
	p.opportunities = ops
	p.mu.Unlock()
	return nil
}

// Open selects op for a proposal and resets the draft.
func (p *ContractorPanel) Open(op model.Opportunity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = &op
	p.draft = ProposalForm{}
	p.message = ""
}

// OpenByID selects an opportunity from the current marketplace view.
func (p *ContractorPanel) OpenByID(id string) bool {
	for _, op := range p.Opportunities() {
		if op.ID == id {
			p.Open(op)
			return true
		}
	}
	return false
}

// Cancel closes the proposal form.
func (p *ContractorPanel) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// SubmitProposal sends the draft against the selected opportunity. On
// success the form closes and the bundle is re-fetched.
func (p *ContractorPanel) SubmitProposal(ctx context.Context, f ProposalForm) error {
	p.mu.Lock()
	selected := p.selected
	p.draft = f
	p.message = ""
	p.mu.Unlock()

	if selected == nil {
		p.setMessage(ErrNoOpportunitySelected.Error())
		return ErrNoOpportunitySelected
	}

	payload, err := f.payload()
	if err != nil {
		p.setMessage(err.Error())
		return err
	}

	created, err := p.api.SubmitProposal(ctx, selected.ID, payload)
	if err != nil {
		p.setMessage(err.Error())
		p.logger.Warn(ctx, "submit proposal failed",
			logger.String("opportunity_id", selected.ID),
			logger.Error(err))
		return err
	}

	p.mu.Lock()
	p.selected = nil
	p.mu.Unlock()

	if created != nil {
		p.logger.Info(ctx, "proposal submitted",
			logger.String("opportunity_id", selected.ID),
			logger.String("proposal_id", created.ID))
	}
	return p.Load(ctx)
}

func (p *ContractorPanel) setMessage(msg string) {
	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}
