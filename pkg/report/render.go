package report

import (
	"fmt"

	"github.com/nsxbet/klc-reviewer/pkg/reviewer"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// RenderOptions control how much of a result is printed.
type RenderOptions struct {
	// Verbosity 1 adds rule titles and detail lines, 2 also announces every
	// rule as it is checked.
	Verbosity int
	// Silent skips the line for entities without findings.
	Silent bool
}

// Review prints one review result in the checker's console format.
func (p *Printer) Review(res *reviewer.ReviewResult, o RenderOptions) {
	if res.UnitTest != nil {
		p.unitTest(res.UnitTest)
		return
	}

	name := entityName(res)
	first := true
	for _, id := range res.Checked {
		if o.Verbosity >= 2 {
			p.Line(White, 0, "Checking rule %s", id)
		}
		rr := res.Rule(id)
		if rr == nil {
			continue
		}
		if first {
			p.Green(0, "Checking %s %s:", res.Kind, name)
			first = false
		}
		p.Yellow(2, "Violating %s - %s", rr.ID, rr.URL)
		if o.Verbosity >= 1 {
			p.Line(LightBlue, 4, "%s", rr.Title)
		}
		for _, msg := range rr.Messages {
			p.message(msg, o.Verbosity)
		}
	}

	if first && !o.Silent {
		p.Green(0, "Checking %s %s - No errors", res.Kind, name)
	}
}

func (p *Printer) message(msg types.Message, verbosity int) {
	p.Line(severityColor(msg.Severity), 4, "%s", msg.Text)
	if verbosity < 1 {
		return
	}
	for _, extra := range msg.Extra {
		p.Regular(6, "%s", extra)
	}
}

func (p *Printer) unitTest(ut *reviewer.UnitTestResult) {
	switch {
	case !ut.Parsed:
		p.Red(0, "Test '%s' could not be parsed", ut.Name)
	case ut.Passed:
		p.Green(0, "Test '%s' passed", ut.Name)
	default:
		p.Red(0, "Test '%s' failed", ut.Name)
	}
}

func entityName(res *reviewer.ReviewResult) string {
	if res.Kind == types.KindSymbol {
		return fmt.Sprintf("'%s:%s'", res.Library, res.Entity)
	}
	return fmt.Sprintf("'%s'", res.Entity)
}

func severityColor(s types.Message_Severity) Color {
	switch s {
	case types.Message_ERROR:
		return Red
	case types.Message_WARNING:
		return Yellow
	case types.Message_SUCCESS:
		return Green
	default:
		return Regular
	}
}
