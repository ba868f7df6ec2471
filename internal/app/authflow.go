package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/internal/session"
	"github.com/okian/nodo/pkg/logger"
	"github.com/okian/nodo/pkg/metrics"
)

// Mode is the state of the auth flow.
type Mode string

// Auth flow modes.
const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
	ModeVerify   Mode = "verify"
)

// Transition is what the auth flow (or logout) asks the shell to do next.
type Transition int

// Transitions understood by Shell.Handle.
const (
	TransitionNone Transition = iota
	TransitionLoggedIn
	TransitionLoggedOut
)

func (t Transition) String() string {
	switch t {
	case TransitionLoggedIn:
		return "logged_in"
	case TransitionLoggedOut:
		return "logged_out"
	default:
		return "none"
	}
}

// Messages shown after successful steps.
const (
	msgRegisteredWithCode = "Registered. Your verification code: %s"
	msgRegisteredNoCode   = "Registered. Check your email for the verification code."
	msgVerified           = "Email verified. You can log in now."
)

// AuthForm holds what the user typed. It survives failed attempts so the
// user can retry without retyping.
type AuthForm struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// AuthFlow is the login/register/verify state machine.
//
//	login -> register            user-initiated, no side effect
//	register -> verify           successful register call
//	verify -> login              successful verify call
//	login (successful login)     token stored, TransitionLoggedIn emitted
//
// A failed call leaves the mode where it was and shows the error text.
type AuthFlow struct {
	api     AuthAPI
	session *session.Session
	logger  logger.Logger

	mu         sync.RWMutex
	mode       Mode
	message    string
	form       AuthForm
	verifyCode string
}

// NewAuthFlow starts a flow in login mode.
func NewAuthFlow(api AuthAPI, sess *session.Session, l logger.Logger) *AuthFlow {
	if l == nil {
		l = logger.Nop()
	}
	return &AuthFlow{
		api:     api,
		session: sess,
		logger:  l,
		mode:    ModeLogin,
		form:    AuthForm{Role: model.RoleDeveloper},
	}
}

// Mode returns the current mode.
func (a *AuthFlow) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Message returns the last status or error text, "" if none.
func (a *AuthFlow) Message() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.message
}

// Form returns a copy of the current form fields.
func (a *AuthFlow) Form() AuthForm {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.form
}

// VerifyCode returns the code last typed into the verify step.
func (a *AuthFlow) VerifyCode() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.verifyCode
}

// SetMode switches between login and register. Verify is reachable only
// through a successful registration.
func (a *AuthFlow) SetMode(m Mode) error {
	if m != ModeLogin && m != ModeRegister {
		return fmt.Errorf("%w: cannot switch to %q", ErrInvalidTransition, m)
	}
	a.mu.Lock()
	from := a.mode
	a.mode = m
	a.mu.Unlock()

	if from != m {
		metrics.RecordAuthTransition(string(from), string(m))
	}
	return nil
}

// Register creates the account. On success the flow moves to verify and
// the message carries the code the backend handed back.
func (a *AuthFlow) Register(ctx context.Context, f AuthForm) error {
	if f.Role == "" {
		f.Role = model.RoleDeveloper
	}

	a.mu.Lock()
	if a.mode != ModeRegister {
		mode := a.mode
		a.mu.Unlock()
		return fmt.Errorf("%w: register from %q", ErrInvalidTransition, mode)
	}
	a.form = f
	a.message = ""
	a.mu.Unlock()

	res, err := a.api.Register(ctx, model.Registration{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		Role:     f.Role,
	})
	if err != nil {
		a.fail(ctx, "register", err)
		return err
	}

	msg := msgRegisteredNoCode
	if res != nil && strings.TrimSpace(res.VerificationCode) != "" {
		msg = fmt.Sprintf(msgRegisteredWithCode, res.VerificationCode)
	}

	a.mu.Lock()
	a.message = msg
	a.mode = ModeVerify
	a.verifyCode = ""
	a.mu.Unlock()

	metrics.RecordAuthTransition(string(ModeRegister), string(ModeVerify))
	a.logger.Info(ctx, "registered", logger.String("email", f.Email), logger.String("role", string(f.Role)))
	return nil
}

// Verify confirms the registered email with code. The code is never
// pre-filled: the user copies it from the registration message.
func (a *AuthFlow) Verify(ctx context.Context, code string) error {
	a.mu.Lock()
	if a.mode != ModeVerify {
		mode := a.mode
		a.mu.Unlock()
		return fmt.Errorf("%w: verify from %q", ErrInvalidTransition, mode)
	}
	a.verifyCode = code
	a.message = ""
	email := a.form.Email
	a.mu.Unlock()

	if _, err := a.api.Verify(ctx, model.Verification{Email: email, Code: strings.TrimSpace(code)}); err != nil {
		a.fail(ctx, "verify", err)
		return err
	}

	a.mu.Lock()
	a.message = msgVerified
	a.mode = ModeLogin
	a.mu.Unlock()

	metrics.RecordAuthTransition(string(ModeVerify), string(ModeLogin))
	a.logger.Info(ctx, "email verified", logger.String("email", email))
	return nil
}

// Login exchanges credentials for a token, stores it in the session and
// asks the shell to re-resolve the identity.
func (a *AuthFlow) Login(ctx context.Context, email, password string) (Transition, error) {
	a.mu.Lock()
	if a.mode != ModeLogin {
		mode := a.mode
		a.mu.Unlock()
		return TransitionNone, fmt.Errorf("%w: login from %q", ErrInvalidTransition, mode)
	}
	a.form.Email = email
	a.form.Password = password
	a.message = ""
	a.mu.Unlock()

	res, err := a.api.Login(ctx, model.Credentials{Email: email, Password: password})
	if err == nil && (res == nil || strings.TrimSpace(res.Token) == "") {
		err = ErrMissingToken
	}
	if err != nil {
		a.fail(ctx, "login", err)
		return TransitionNone, err
	}

	if err := a.session.SetToken(ctx, res.Token); err != nil {
		a.fail(ctx, "login", err)
		return TransitionNone, err
	}

	a.logger.Info(ctx, "logged in", logger.String("email", email))
	return TransitionLoggedIn, nil
}

func (a *AuthFlow) fail(ctx context.Context, step string, err error) {
	a.mu.Lock()
	a.message = err.Error()
	a.mu.Unlock()
	a.logger.Debug(ctx, "auth step failed", logger.String("step", step), logger.Error(err))
}
