// Package cli is the line-oriented terminal front-end. It renders the shell's
// current view and turns typed commands into controller calls.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/nodo/internal/app"
	"github.com/okian/nodo/internal/domain/model"
	"github.com/okian/nodo/pkg/logger"
)

const prompt = "> "

// AccountAPI covers the calls that have no controller of their own.
type AccountAPI interface {
	GetProfile(ctx context.Context) (model.Profile, error)
	UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*model.UploadResult, error)
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a args) error
}

// CLI reads commands and writes the rendered view after each one.
type CLI struct {
	shell   *app.Shell
	account AccountAPI
	out     io.Writer
	logger  logger.Logger
	open    func(name string) (io.ReadCloser, error)

	commands []command
	byName   map[string]command
	quit     bool
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *CLI) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFileOpener replaces os.Open for the upload command.
func WithFileOpener(open func(name string) (io.ReadCloser, error)) Option {
	return func(c *CLI) {
		if open != nil {
			c.open = open
		}
	}
}

// New creates a CLI writing to out.
func New(shell *app.Shell, account AccountAPI, out io.Writer, opts ...Option) *CLI {
	c := &CLI{
		shell:   shell,
		account: account,
		out:     out,
		logger:  logger.Nop(),
		open:    func(name string) (io.ReadCloser, error) { return os.Open(name) }, //nolint:gosec // user-chosen file
	}
	for _, opt := range opts {
		opt(c)
	}
	c.commands = []command{
		{"help", "help", c.cmdHelp},
		{"whoami", "whoami", c.cmdWhoami},
		{"mode", "mode login|register", c.cmdMode},
		{"register", "register name=.. email=.. password=.. role=developer|contractor", c.cmdRegister},
		{"verify", "verify <code>", c.cmdVerify},
		{"login", "login email=.. password=..", c.cmdLogin},
		{"logout", "logout", c.cmdLogout},
		{"reload", "reload", c.cmdReload},
		{"post", "post title=.. category=.. description=.. [deadline=YYYY-MM-DD] [budget=..] [location=..]", c.cmdPost},
		{"status", "status <proposal-id> viewed|selected", c.cmdStatus},
		{"filter", "filter [category=..] [location=..]", c.cmdFilter},
		{"open", "open <opportunity-id>", c.cmdOpen},
		{"cancel", "cancel", c.cmdCancel},
		{"propose", "propose [amount=..] [timeline_weeks=..] message=..", c.cmdPropose},
		{"profile", "profile [key=value ...]", c.cmdProfile},
		{"upload", "upload <path>", c.cmdUpload},
		{"quit", "quit", c.cmdQuit},
	}
	c.byName = make(map[string]command, len(c.commands))
	for _, cmd := range c.commands {
		c.byName[cmd.name] = cmd
	}
	c.byName["exit"] = c.byName["quit"]
	return c
}

// Run renders the view, then executes lines from in until quit or EOF.
func (c *CLI) Run(ctx context.Context, in io.Reader) error {
	c.render()
	sc := bufio.NewScanner(in)
	for {
		c.printf("%s", prompt)
		if !sc.Scan() {
			c.printf("\n")
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.Exec(ctx, sc.Text())
		if c.quit {
			return nil
		}
		shown := c.render()
		if err != nil && !strings.Contains(shown, err.Error()) {
			c.printf("error: %v\n", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// Exec runs one command line. Blank lines are ignored.
func (c *CLI) Exec(ctx context.Context, line string) error {
	words, err := splitLine(line)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	cmd, ok := c.byName[strings.ToLower(words[0])]
	if !ok {
		return fmt.Errorf("%w: %s (try help)", ErrUnknownCommand, words[0])
	}
	err = cmd.run(ctx, parseArgs(words[1:]))
	if errors.Is(err, ErrUsage) {
		return fmt.Errorf("%w (usage: %s)", err, cmd.usage)
	}
	if err != nil {
		c.logger.Debug(ctx, "command failed", logger.String("command", cmd.name), logger.Error(err))
	}
	return err
}

// Quit reports whether the quit command ran.
func (c *CLI) Quit() bool { return c.quit }

func (c *CLI) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}

func (c *CLI) cmdHelp(context.Context, args) error {
	c.printf("commands:\n")
	for _, cmd := range c.commands {
		c.printf("  %s\n", cmd.usage)
	}
	c.printf("categories: %s\n", strings.Join(categoryNames(), ", "))
	return nil
}

func (c *CLI) cmdWhoami(ctx context.Context, _ args) error {
	v := c.shell.View()
	if v.Identity == nil {
		c.printf("not logged in\n")
		return nil
	}
	u := v.Identity
	c.printf("%s <%s> role=%s verified=%t id=%s\n", u.Name, u.Email, u.Role, u.IsVerified, u.ID)
	if exp, ok := c.shell.Session().ExpiresAt(ctx); ok {
		c.printf("session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *CLI) auth() (*app.AuthFlow, error) {
	a := c.shell.View().Auth
	if a == nil {
		return nil, fmt.Errorf("%w: log out first", ErrNoPanel)
	}
	return a, nil
}

func (c *CLI) cmdMode(_ context.Context, a args) error {
	flow, err := c.auth()
	if err != nil {
		return err
	}
	m, err := a.require("mode", 0)
	if err != nil {
		return err
	}
	return flow.SetMode(app.Mode(strings.ToLower(m)))
}

func (c *CLI) cmdRegister(ctx context.Context, a args) error {
	flow, err := c.auth()
	if err != nil {
		return err
	}
	if flow.Mode() == app.ModeLogin {
		if err := flow.SetMode(app.ModeRegister); err != nil {
			return err
		}
	}
	return flow.Register(ctx, app.AuthForm{
		Name:     a.get("name", -1),
		Email:    a.get("email", -1),
		Password: a.get("password", -1),
		Role:     model.Role(strings.ToLower(a.get("role", -1))),
	})
}

func (c *CLI) cmdVerify(ctx context.Context, a args) error {
	flow, err := c.auth()
	if err != nil {
		return err
	}
	code, err := a.require("code", 0)
	if err != nil {
		return err
	}
	return flow.Verify(ctx, code)
}

func (c *CLI) cmdLogin(ctx context.Context, a args) error {
	flow, err := c.auth()
	if err != nil {
		return err
	}
	if flow.Mode() == app.ModeRegister {
		if err := flow.SetMode(app.ModeLogin); err != nil {
			return err
		}
	}
	email, err := a.require("email", 0)
	if err != nil {
		return err
	}
	return c.shell.Login(ctx, email, a.get("password", 1))
}

func (c *CLI) cmdLogout(ctx context.Context, _ args) error {
	return c.shell.Logout(ctx)
}

func (c *CLI) cmdReload(ctx context.Context, _ args) error {
	return c.shell.Reload(ctx)
}

func (c *CLI) developer() (*app.DeveloperPanel, error) {
	p := c.shell.View().Developer
	if p == nil {
		return nil, fmt.Errorf("%w: developers only", ErrNoPanel)
	}
	return p, nil
}

func (c *CLI) contractor() (*app.ContractorPanel, error) {
	p := c.shell.View().Contractor
	if p == nil {
		return nil, fmt.Errorf("%w: contractors only", ErrNoPanel)
	}
	return p, nil
}

func (c *CLI) cmdPost(ctx context.Context, a args) error {
	p, err := c.developer()
	if err != nil {
		return err
	}
	form := app.OpportunityForm{
		Title:       a.get("title", -1),
		Category:    a.get("category", -1),
		Description: a.get("description", -1),
		Deadline:    a.get("deadline", -1),
		Budget:      a.get("budget", -1),
		Location:    a.get("location", -1),
	}
	return p.CreateOpportunity(ctx, form)
}

func (c *CLI) cmdStatus(ctx context.Context, a args) error {
	p, err := c.developer()
	if err != nil {
		return err
	}
	id, err := a.require("id", 0)
	if err != nil {
		return err
	}
	status, err := a.require("status", 1)
	if err != nil {
		return err
	}
	return p.UpdateProposalStatus(ctx, id, model.ProposalStatus(strings.ToLower(status)))
}

func (c *CLI) cmdFilter(ctx context.Context, a args) error {
	p, err := c.contractor()
	if err != nil {
		return err
	}
	return p.Filter(ctx, app.FilterForm{Category: a.get("category", -1), Location: a.get("location", -1)})
}

func (c *CLI) cmdOpen(_ context.Context, a args) error {
	p, err := c.contractor()
	if err != nil {
		return err
	}
	id, err := a.require("id", 0)
	if err != nil {
		return err
	}
	if !p.OpenByID(id) {
		return fmt.Errorf("no opportunity %q in the list", id)
	}
	return nil
}

func (c *CLI) cmdCancel(context.Context, args) error {
	p, err := c.contractor()
	if err != nil {
		return err
	}
	p.Cancel()
	return nil
}

func (c *CLI) cmdPropose(ctx context.Context, a args) error {
	p, err := c.contractor()
	if err != nil {
		return err
	}
	return p.SubmitProposal(ctx, app.ProposalForm{
		Amount:        a.get("amount", -1),
		Message:       a.get("message", -1),
		TimelineWeeks: a.get("timeline_weeks", -1),
	})
}

func (c *CLI) cmdProfile(ctx context.Context, a args) error {
	if c.shell.View().Identity == nil {
		return app.ErrNotAuthenticated
	}
	var (
		profile model.Profile
		err     error
	)
	if len(a.named) == 0 {
		profile, err = c.account.GetProfile(ctx)
	} else {
		update := make(model.Profile, len(a.named))
		for k, v := range a.named {
			update[k] = v
		}
		profile, err = c.account.UpdateProfile(ctx, update)
	}
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("render profile: %w", err)
	}
	c.printf("%s\n", b)
	return nil
}

func (c *CLI) cmdUpload(ctx context.Context, a args) error {
	if c.shell.View().Identity == nil {
		return app.ErrNotAuthenticated
	}
	path, err := a.require("path", 0)
	if err != nil {
		return err
	}
	f, err := c.open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	res, err := c.account.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	c.printf("uploaded %s -> %s\n", res.Filename, res.URL)
	return nil
}

func (c *CLI) cmdQuit(context.Context, args) error {
	c.quit = true
	return nil
}

func categoryNames() []string {
	cats := model.Categories()
	out := make([]string, len(cats))
	for i, cat := range cats {
		out[i] = string(cat)
	}
	return out
}
