package model

// ProposalStatus tracks a proposal through the developer's review. The
// backend owns the full set; unknown values pass through untouched.
type ProposalStatus string

// Statuses the client knows about.
const (
	StatusSubmitted ProposalStatus = "submitted"
	StatusViewed    ProposalStatus = "viewed"
	StatusSelected  ProposalStatus = "selected"
)

// Proposal is a contractor's bid against one opportunity.
type Proposal struct {
	ID            string         `json:"id"`
	OpportunityID string         `json:"opportunity_id"`
	Amount        *Money         `json:"amount,omitempty"`
	TimelineWeeks *int           `json:"timeline_weeks,omitempty"`
	Message       string         `json:"message"`
	Status        ProposalStatus `json:"status"`
	Attachments   []string       `json:"attachments"`
	ContractorID  string         `json:"contractor_id,omitempty"`
	CreatedAt     *Timestamp     `json:"created_at,omitempty"`
}

// NewProposal is the body of POST /opportunities/{id}/proposals.
// Attachments is always sent, empty for now.
type NewProposal struct {
	Amount        *Money   `json:"amount,omitempty"`
	Message       string   `json:"message"`
	TimelineWeeks *int     `json:"timeline_weeks,omitempty"`
	Attachments   []string `json:"attachments"`
}

// StatusUpdate is the body of PATCH /proposals/{id}/status.
type StatusUpdate struct {
	Status ProposalStatus `json:"status"`
}

// DeveloperDashboard is the bundle behind GET /dashboard/developer.
type DeveloperDashboard struct {
	MyOpportunities   []Opportunity `json:"my_opportunities"`
	ProposalsReceived []Proposal    `json:"proposals_received"`
}

// ContractorDashboard is the bundle behind GET /dashboard/contractor.
type ContractorDashboard struct {
	Opportunities []Opportunity `json:"opportunities"`
	MyProposals   []Proposal    `json:"my_proposals"`
}
