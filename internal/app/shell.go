package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/internal/session"
	"github.com/okian/nodo/pkg/logger"
)

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger. Controllers get named children of it.
func WithLogger(l logger.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// View is what the front-end renders. Exactly one of Auth, Developer and
// Contractor is set after Start, except for an identity with an unknown
// role, which gets none.
type View struct {
	Identity   *model.User
	Auth       *AuthFlow
	Developer  *DeveloperPanel
	Contractor *ContractorPanel
	BackendURL string
}

// Greeting is the header line: "name • role" or "Welcome".
func (v View) Greeting() string {
	if v.Identity == nil {
		return "Welcome"
	}
	return fmt.Sprintf("%s • %s", v.Identity.Name, v.Identity.Role)
}

// Shell is the top-level controller. It owns the current view and rebuilds
// it on every auth transition.
type Shell struct {
	api      API
	session  *session.Session
	logger   logger.Logger
	resolver *Resolver

	mu   sync.RWMutex
	view View
}

// NewShell creates a shell; call Start to build the first view.
func NewShell(api API, sess *session.Session, opts ...Option) *Shell {
	s := &Shell{
		api:     api,
		session: sess,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = NewResolver(api, s.logger.Named("resolver"))
	s.view = View{BackendURL: api.BaseURL()}
	return s
}

// View returns the current view.
func (s *Shell) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Session returns the session the shell writes on login and logout.
func (s *Shell) Session() *session.Session { return s.session }

// Start resolves the identity and mounts the matching view. A panel loads
// its bundle once here; a load failure stays on the panel as its message
// and is also returned.
func (s *Shell) Start(ctx context.Context) error {
	user := s.resolver.Resolve(ctx)
	view := View{Identity: user, BackendURL: s.api.BaseURL()}

	var load func(context.Context) error
	switch {
	case user == nil:
		view.Auth = NewAuthFlow(s.api, s.session, s.logger.Named("auth"))
	case user.Role == model.RoleDeveloper:
		view.Developer = NewDeveloperPanel(s.api, s.logger.Named("developer"))
		load = view.Developer.Load
	case user.Role == model.RoleContractor:
		view.Contractor = NewContractorPanel(s.api, s.logger.Named("contractor"))
		load = view.Contractor.Load
	default:
		s.logger.Warn(ctx, "no panel for role", logger.String("role", string(user.Role)))
	}

	s.mu.Lock()
	s.view = view
	s.mu.Unlock()

	if load == nil {
		return nil
	}
	return load(ctx)
}

// Handle reacts to a transition emitted by the auth flow or by Logout.
func (s *Shell) Handle(ctx context.Context, t Transition) error {
	switch t {
	case TransitionLoggedIn, TransitionLoggedOut:
		s.logger.Debug(ctx, "auth transition", logger.String("transition", t.String()))
		return s.Start(ctx)
	default:
		return nil
	}
}

// Login runs the auth flow's login step and, on success, rebuilds the view.
func (s *Shell) Login(ctx context.Context, email, password string) error {
	auth := s.View().Auth
	if auth == nil {
		return fmt.Errorf("%w: already logged in", ErrInvalidTransition)
	}
	t, err := auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.Handle(ctx, t)
}

// Logout clears the token and rebuilds the view.
func (s *Shell) Logout(ctx context.Context) error {
	if s.View().Identity == nil && !s.session.Authenticated(ctx) {
		return ErrNotAuthenticated
	}
	if err := s.session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info(ctx, "logged out")
	return s.Handle(ctx, TransitionLoggedOut)
}

// Reload re-fetches the active panel's bundle.
func (s *Shell) Reload(ctx context.Context) error {
	v := s.View()
	switch {
	case v.Developer != nil:
		return v.Developer.Load(ctx)
	case v.Contractor != nil:
		return v.Contractor.Load(ctx)
	default:
		return s.Start(ctx)
	}
}
