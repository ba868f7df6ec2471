package cli

import (
	"fmt"
	"strings"

	"github.com/okian/nodo/internal/app"
	"github.com/okian/nodo/internal/domain/model"
)

const dateLayout = "2006-01-02"

// render writes the current view and returns what it wrote.
func (c *CLI) render() string {
	s := renderView(c.shell.View())
	c.printf("%s", s)
	return s
}

func renderView(v app.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nNODO | %s\n", v.Greeting())
	fmt.Fprintf(&b, "backend: %s\n", v.BackendURL)

	switch {
	case v.Auth != nil:
		renderAuth(&b, v.Auth)
	case v.Developer != nil:
		renderDeveloper(&b, v.Developer)
	case v.Contractor != nil:
		renderContractor(&b, v.Contractor)
	default:
		if v.Identity != nil {
			fmt.Fprintf(&b, "no dashboard for role %q\n", v.Identity.Role)
		}
	}
	return b.String()
}

func renderAuth(b *strings.Builder, a *app.AuthFlow) {
	fmt.Fprintf(b, "mode: %s\n", a.Mode())
	if msg := a.Message(); msg != "" {
		fmt.Fprintf(b, "%s\n", msg)
	}
}

func renderDeveloper(b *strings.Builder, p *app.DeveloperPanel) {
	if msg := p.Message(); msg != "" {
		fmt.Fprintf(b, "! %s\n", msg)
	}
	ops := p.Opportunities()
	fmt.Fprintf(b, "My opportunities (%d)\n", len(ops))
	for _, o := range ops {
		fmt.Fprintf(b, "  %s\n", opportunityLine(o))
	}
	props := p.Received()
	fmt.Fprintf(b, "Proposals received (%d)\n", len(props))
	for _, pr := range props {
		fmt.Fprintf(b, "  %s\n", proposalLine(pr))
	}
}

func renderContractor(b *strings.Builder, p *app.ContractorPanel) {
	if msg := p.Message(); msg != "" {
		fmt.Fprintf(b, "! %s\n", msg)
	}
	if f := p.CurrentFilter(); f.Category != "" || f.Location != "" {
		fmt.Fprintf(b, "filter: category=%q location=%q\n", f.Category, f.Location)
	}
	ops := p.Opportunities()
	fmt.Fprintf(b, "Opportunities (%d)\n", len(ops))
	for _, o := range ops {
		fmt.Fprintf(b, "  %s\n", opportunityLine(o))
	}
	props := p.MyProposals()
	fmt.Fprintf(b, "My proposals (%d)\n", len(props))
	for _, pr := range props {
		fmt.Fprintf(b, "  %s\n", proposalLine(pr))
	}
	if sel := p.Selected(); sel != nil {
		fmt.Fprintf(b, "proposing on %s (%s): propose amount=.. timeline_weeks=.. message=.. | cancel\n", sel.ID, sel.Title)
	}
}

func opportunityLine(o model.Opportunity) string {
	parts := []string{fmt.Sprintf("[%s] %s", o.ID, o.Title), string(o.Category)}
	if o.Location != "" {
		parts = append(parts, o.Location)
	}
	if o.Budget != nil {
		parts = append(parts, "budget "+o.Budget.StringFixed(2))
	}
	if o.Deadline != nil {
		parts = append(parts, "due "+o.Deadline.Format(dateLayout))
	}
	return strings.Join(parts, " | ")
}

func proposalLine(p model.Proposal) string {
	parts := []string{fmt.Sprintf("[%s] on %s", p.ID, p.OpportunityID), string(p.Status)}
	if p.Amount != nil {
		parts = append(parts, "amount "+p.Amount.StringFixed(2))
	}
	if p.TimelineWeeks != nil {
		parts = append(parts, fmt.Sprintf("%d weeks", *p.TimelineWeeks))
	}
	if p.Message != "" {
		parts = append(parts, p.Message)
	}
	return strings.Join(parts, " | ")
}
