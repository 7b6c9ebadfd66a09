package advisor

import (
	"fmt"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// Base accumulates the output of one rule instance. Every rule embeds it and
// implements Check; the zero value is ready to use once New has bound it.
type Base struct {
	Ctx *Context

	meta         Meta
	self         Rule
	messages     []types.Message
	errors       int
	warnings     int
	needsFixMore bool
}

func (b *Base) base() *Base { return b }

// ID returns the rule id, such as "F5.1".
func (b *Base) ID() string { return b.meta.ID }

// Title returns the one line rule description.
func (b *Base) Title() string { return b.meta.Title }

// URL links to the rule text.
func (b *Base) URL() string { return b.meta.URL() }

// Options returns the invocation options, or the zero value when unbound.
func (b *Base) Options() Options {
	if b.Ctx == nil {
		return Options{}
	}
	return b.Ctx.Options
}

// Payload returns the configured payload of the rule.
func (b *Base) Payload() map[string]interface{} {
	if b.Ctx == nil {
		return nil
	}
	return b.Ctx.Payload
}

func (b *Base) add(sev types.Message_Severity, text string) {
	b.messages = append(b.messages, types.Message{Severity: sev, Text: text})
}

// extra attaches a detail line to the latest message of severity sev.
func (b *Base) extra(sev types.Message_Severity, text string) {
	for i := len(b.messages) - 1; i >= 0; i-- {
		if b.messages[i].Severity == sev {
			b.messages[i].Extra = append(b.messages[i].Extra, text)
			return
		}
	}
	b.messages = append(b.messages, types.Message{Severity: sev, Extra: []string{text}})
}

// Error records an error.
func (b *Base) Error(msg string) {
	b.errors++
	b.add(types.Message_ERROR, msg)
}

// Errorf records a formatted error.
func (b *Base) Errorf(format string, args ...any) {
	b.Error(fmt.Sprintf(format, args...))
}

// ErrorExtra adds a detail line to the latest error.
func (b *Base) ErrorExtra(msg string) {
	b.extra(types.Message_ERROR, msg)
}

// ErrorExtraf adds a formatted detail line to the latest error.
func (b *Base) ErrorExtraf(format string, args ...any) {
	b.ErrorExtra(fmt.Sprintf(format, args...))
}

// Warning records a warning.
func (b *Base) Warning(msg string) {
	b.warnings++
	b.add(types.Message_WARNING, msg)
}

// Warningf records a formatted warning.
func (b *Base) Warningf(format string, args ...any) {
	b.Warning(fmt.Sprintf(format, args...))
}

// WarningExtra adds a detail line to the latest warning.
func (b *Base) WarningExtra(msg string) {
	b.extra(types.Message_WARNING, msg)
}

// WarningExtraf adds a formatted detail line to the latest warning.
func (b *Base) WarningExtraf(format string, args ...any) {
	b.WarningExtra(fmt.Sprintf(format, args...))
}

// Info records a message that is neither error nor warning.
func (b *Base) Info(msg string) {
	b.add(types.Message_INFO, msg)
}

// Infof records a formatted info message.
func (b *Base) Infof(format string, args ...any) {
	b.Info(fmt.Sprintf(format, args...))
}

// Success records a positive outcome.
func (b *Base) Success(msg string) {
	b.add(types.Message_SUCCESS, msg)
}

// Messages returns everything recorded since the last Drain.
func (b *Base) Messages() []types.Message {
	return b.messages
}

// Drain returns the recorded messages and forgets them. Counters are kept.
func (b *Base) Drain() []types.Message {
	out := b.messages
	b.messages = nil
	return out
}

// ErrorCount is the number of errors since the last reset.
func (b *Base) ErrorCount() int { return b.errors }

// WarningCount is the number of warnings since the last reset.
func (b *Base) WarningCount() int { return b.warnings }

// HasErrors reports whether an error was recorded.
func (b *Base) HasErrors() bool { return b.errors > 0 }

// HasOutput reports whether there is anything to print.
func (b *Base) HasOutput() bool { return len(b.messages) > 0 }

// Reset clears counters and messages.
func (b *Base) Reset() {
	b.errors = 0
	b.warnings = 0
	b.messages = nil
	b.needsFixMore = false
}

// Begin starts a check from a clean slate. Every Check calls it first so
// that checking an unchanged entity again yields the same output.
func (b *Base) Begin() {
	b.Reset()
}

// SetNeedsFixMore marks that FixMore could resolve what Fix cannot.
func (b *Base) SetNeedsFixMore(v bool) { b.needsFixMore = v }

// NeedsFixMore reports whether the rule asked for FixMore.
func (b *Base) NeedsFixMore() bool { return b.needsFixMore }

// Fix is the default for rules without a safe repair.
func (b *Base) Fix() {
	b.Info("Fix not supported")
}

// FixMore is the default for rules without a geometry altering repair.
func (b *Base) FixMore() {
	if b.needsFixMore {
		b.Info("FixMore not supported")
	}
}

// Recheck runs Check again after a fix. Counters reflect the new state; the
// detail of the second run is dropped and replaced by a single verdict.
func (b *Base) Recheck() bool {
	if b.self == nil {
		return b.errors > 0
	}
	kept := b.messages
	failed := b.self.Check()
	b.messages = kept
	if failed {
		b.add(types.Message_ERROR, "Could not be fixed")
	} else {
		b.Info("Everything fixed")
	}
	return failed
}
