package testbackend

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/nodo/internal/domain/model"
)

type account struct {
	user    model.User
	hash    []byte
	code    string
	profile model.Profile
}

// store is the backend state. Lists keep insertion order.
type store struct {
	mu            sync.RWMutex
	now           func() time.Time
	accounts      map[string]*account // by id
	emails        map[string]string   // email -> id
	opportunities []*model.Opportunity
	proposals     []*model.Proposal
	uploads       []string
}

func newStore(now func() time.Time) *store {
	return &store{
		now:      now,
		accounts: make(map[string]*account),
		emails:   make(map[string]string),
	}
}

func (s *store) register(r model.Registration) (model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	switch {
	case strings.TrimSpace(r.Name) == "":
		return model.User{}, "", fmt.Errorf("%w: name is required", ErrValidation)
	case email == "":
		return model.User{}, "", fmt.Errorf("%w: email is required", ErrValidation)
	case r.Password == "":
		return model.User{}, "", fmt.Errorf("%w: password is required", ErrValidation)
	case !r.Role.Valid():
		return model.User{}, "", fmt.Errorf("%w: role must be developer or contractor", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[email]; ok {
		return model.User{}, "", ErrEmailTaken
	}

	created := s.now()
	a := &account{
		user: model.User{
			ID:        uuid.NewString(),
			Name:      r.Name,
			Email:     email,
			Role:      r.Role,
			CreatedAt: model.NewTimestamp(created),
		},
		hash: hash,
		code: fmt.Sprintf("%06d", rand.IntN(1_000_000)), //nolint:gosec // not a secret outside tests
	}
	a.profile = model.Profile{"name": r.Name, "email": email, "role": string(r.Role)}
	s.accounts[a.user.ID] = a
	s.emails[email] = a.user.ID
	return a.user, a.code, nil
}

func (s *store) verify(v model.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byEmail(v.Email)
	if !ok {
		return ErrNotFound
	}
	if strings.TrimSpace(v.Code) != a.code {
		return ErrInvalidCode
	}
	a.user.IsVerified = true
	return nil
}

func (s *store) login(c model.Credentials) (model.User, error) {
	s.mu.RLock()
	a, ok := s.byEmail(c.Email)
	s.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(a.hash, []byte(c.Password)) != nil {
		return model.User{}, ErrInvalidLogin
	}
	if !a.user.IsVerified {
		return model.User{}, ErrNotVerified
	}
	return a.user, nil
}

// byEmail expects s.mu held.
func (s *store) byEmail(email string) (*account, bool) {
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, false
	}
	return s.accounts[id], true
}

func (s *store) user(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return model.User{}, false
	}
	return a.user, true
}

func (s *store) profile(id string) model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := model.Profile{}
	if a, ok := s.accounts[id]; ok {
		for k, v := range a.profile {
			out[k] = v
		}
	}
	return out
}

func (s *store) updateProfile(id string, p model.Profile) model.Profile {
	s.mu.Lock()
	if a, ok := s.accounts[id]; ok {
		for k, v := range p {
			a.profile[k] = v
		}
	}
	s.mu.Unlock()
	return s.profile(id)
}

func (s *store) addUpload(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := uuid.NewString() + "-" + name
	s.uploads = append(s.uploads, key)
	return "/uploads/" + key
}

func (s *store) createOpportunity(developerID string, o model.NewOpportunity) (model.Opportunity, error) {
	if strings.TrimSpace(o.Title) == "" {
		return model.Opportunity{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	category, ok := model.ParseCategory(string(o.Category))
	if !ok {
		return model.Opportunity{}, fmt.Errorf("%w: unknown category %q", ErrValidation, o.Category)
	}
	op := model.Opportunity{
		ID:          uuid.NewString(),
		Title:       o.Title,
		Category:    category,
		Description: o.Description,
		Budget:      o.Budget,
		Location:    o.Location,
		CreatedAt:   model.NewTimestamp(s.now()),
		DeveloperID: developerID,
	}
	if o.Deadline != "" {
		d, err := time.Parse(time.RFC3339, o.Deadline)
		if err != nil {
			return model.Opportunity{}, fmt.Errorf("%w: deadline must be an ISO-8601 timestamp", ErrValidation)
		}
		op.Deadline = model.NewTimestamp(d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities = append(s.opportunities, &op)
	return op, nil
}

// listOpportunities matches category exactly and location as a
// case-insensitive substring. Blank filters match everything.
func (s *store) listOpportunities(f model.OpportunityFilter) []model.Opportunity {
	loc := strings.ToLower(strings.TrimSpace(f.Location))
	return s.opportunitiesWhere(func(o *model.Opportunity) bool {
		if f.Category != "" && o.Category != f.Category {
			return false
		}
		return loc == "" || strings.Contains(strings.ToLower(o.Location), loc)
	})
}

func (s *store) opportunitiesOf(developerID string) []model.Opportunity {
	return s.opportunitiesWhere(func(o *model.Opportunity) bool { return o.DeveloperID == developerID })
}

func (s *store) opportunitiesWhere(keep func(*model.Opportunity) bool) []model.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Opportunity, 0, len(s.opportunities))
	for _, o := range s.opportunities {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out
}

func (s *store) opportunity(id string) (model.Opportunity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.opportunities {
		if o.ID == id {
			return *o, true
		}
	}
	return model.Opportunity{}, false
}

func (s *store) submitProposal(contractorID, opportunityID string, p model.NewProposal) (model.Proposal, error) {
	if _, ok := s.opportunity(opportunityID); !ok {
		return model.Proposal{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.proposals {
		if existing.OpportunityID == opportunityID && existing.ContractorID == contractorID {
			return model.Proposal{}, ErrDuplicateProposal
		}
	}
	created := s.now()
	attachments := p.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	pr := model.Proposal{
		ID:            uuid.NewString(),
		OpportunityID: opportunityID,
		Amount:        p.Amount,
		TimelineWeeks: p.TimelineWeeks,
		Message:       p.Message,
		Status:        model.StatusSubmitted,
		Attachments:   attachments,
		ContractorID:  contractorID,
		CreatedAt:     model.NewTimestamp(created),
	}
	s.proposals = append(s.proposals, &pr)
	return pr, nil
}

func (s *store) proposalsBy(contractorID string) []model.Proposal {
	return s.proposalsWhere(func(p *model.Proposal) bool { return p.ContractorID == contractorID })
}

// proposalsFor returns proposals on opportunities owned by developerID.
func (s *store) proposalsFor(developerID string) []model.Proposal {
	owned := make(map[string]bool)
	for _, o := range s.opportunitiesOf(developerID) {
		owned[o.ID] = true
	}
	return s.proposalsWhere(func(p *model.Proposal) bool { return owned[p.OpportunityID] })
}

func (s *store) proposalsWhere(keep func(*model.Proposal) bool) []model.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		if keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

// setProposalStatus lets only the developer owning the opportunity move a
// proposal.
func (s *store) setProposalStatus(developerID, proposalID string, status model.ProposalStatus) (model.Proposal, error) {
	switch status {
	case model.StatusSubmitted, model.StatusViewed, model.StatusSelected:
	default:
		return model.Proposal{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.proposals {
		if p.ID != proposalID {
			continue
		}
		for _, o := range s.opportunities {
			if o.ID == p.OpportunityID && o.DeveloperID != developerID {
				return model.Proposal{}, ErrForbidden
			}
		}
		p.Status = status
		return *p, nil
	}
	return model.Proposal{}, ErrNotFound
}
