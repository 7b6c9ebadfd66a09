package reviewer

import (
	"fmt"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// ReviewResult contains the results of reviewing one footprint or symbol.
type ReviewResult struct {
	Kind types.Kind `json:"kind" yaml:"kind"`
	// Entity is the footprint or symbol name.
	Entity string `json:"entity" yaml:"entity"`
	// Library is the footprint library (.pretty folder without extension) or
	// the symbol library file name.
	Library string `json:"library" yaml:"library"`

	// Checked lists every rule id that ran, in order.
	Checked []string `json:"checked" yaml:"checked"`

	// Rules holds one report per rule that produced output, in rule order.
	Rules []RuleReport `json:"rules,omitempty" yaml:"rules,omitempty"`

	// Summary provides aggregate statistics about the findings.
	Summary Summary `json:"summary" yaml:"summary"`

	// Modified is set when fixes or a rotation changed the entity and it
	// should be saved.
	Modified bool `json:"modified,omitempty" yaml:"modified,omitempty"`

	// UnitTest is set in unit test mode.
	UnitTest *UnitTestResult `json:"unit_test,omitempty" yaml:"unit_test,omitempty"`
}

// RuleReport is the outcome of one rule on one entity.
type RuleReport struct {
	ID    string          `json:"id" yaml:"id"`
	Title string          `json:"title" yaml:"title"`
	URL   string          `json:"url" yaml:"url"`
	Level types.RuleLevel `json:"level" yaml:"level"`

	// Errors and Warnings are counted by the check that ran before any fix.
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`

	// Unresolved is the number of errors left after fixing; without a fix
	// it equals Errors.
	Unresolved int `json:"unresolved" yaml:"unresolved"`

	// Messages are the check output followed by the fix output, if any.
	Messages []types.Message `json:"messages" yaml:"messages"`

	// Fixed is set when a fix was attempted; Remaining reports the recheck.
	Fixed     bool `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Remaining bool `json:"remaining,omitempty" yaml:"remaining,omitempty"`

	// Panic holds the recovered panic of a crashing rule.
	Panic string `json:"panic,omitempty" yaml:"panic,omitempty"`
}

// Failed reports whether the rule counts as failed for its entity.
func (r RuleReport) Failed() bool {
	return r.Errors > 0 && r.Level != types.RuleLevel_WARNING
}

// UnitTestResult is the verdict of one unit test entity.
type UnitTestResult struct {
	Name     string `json:"name" yaml:"name"`
	Expect   string `json:"expect" yaml:"expect"`
	Rule     string `json:"rule" yaml:"rule"`
	Parsed   bool   `json:"parsed" yaml:"parsed"`
	Passed   bool   `json:"passed" yaml:"passed"`
	Executed bool   `json:"executed" yaml:"executed"`
}

// Summary provides aggregate statistics about review findings.
type Summary struct {
	// Errors is the number of errors of rules at ERROR level, counted
	// before fixing.
	Errors int `json:"errors" yaml:"errors"`

	// Unresolved is the number of those errors still present after fixing
	// and rechecking.
	Unresolved int `json:"unresolved" yaml:"unresolved"`

	// Warnings counts warnings plus the errors of rules demoted to WARNING.
	Warnings int `json:"warnings" yaml:"warnings"`

	// Rules is the number of rules that ran.
	Rules int `json:"rules" yaml:"rules"`
}

// HasErrors returns true if errors remain after the optional fixing.
//
// This is useful for CI pipelines that should fail on errors:
//
//	if result.HasErrors() {
//	    os.Exit(1)
//	}
func (r *ReviewResult) HasErrors() bool {
	return r.Summary.Unresolved > 0
}

// HasWarnings returns true if the review found any warnings.
func (r *ReviewResult) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// IsClean returns true if the review found no errors or warnings.
func (r *ReviewResult) IsClean() bool {
	return r.Summary.Errors == 0 && r.Summary.Warnings == 0
}

// String returns a human-readable summary of the review results.
//
// Example output:
//
//	Review of Package_SO:SOIC-8: 2 errors, 3 warnings (15 rules)
func (r *ReviewResult) String() string {
	return fmt.Sprintf(
		"Review of %s:%s: %d errors, %d warnings (%d rules)",
		r.Library,
		r.Entity,
		r.Summary.Errors,
		r.Summary.Warnings,
		r.Summary.Rules,
	)
}

// Rule returns the report of rule id, or nil when the rule produced none.
func (r *ReviewResult) Rule(id string) *RuleReport {
	for i := range r.Rules {
		if r.Rules[i].ID == id {
			return &r.Rules[i]
		}
	}
	return nil
}

// FailedRules returns the ids of the rules that count as failed, in rule
// order. These are the rules written to the error log.
func (r *ReviewResult) FailedRules() []string {
	var ids []string
	for _, rr := range r.Rules {
		if rr.Failed() {
			ids = append(ids, rr.ID)
		}
	}
	return ids
}

// FilterBySeverity returns the messages of every rule with the given
// severity.
//
//	for _, msg := range result.FilterBySeverity(types.Message_ERROR) {
//	    fmt.Println(msg.Text)
//	}
func (r *ReviewResult) FilterBySeverity(severity types.Message_Severity) []types.Message {
	filtered := make([]types.Message, 0)
	for _, rr := range r.Rules {
		for _, msg := range rr.Messages {
			if msg.Severity == severity {
				filtered = append(filtered, msg)
			}
		}
	}
	return filtered
}

// ErrorRecords returns one error log record per failed rule.
func (r *ReviewResult) ErrorRecords() []types.ErrorRecord {
	var records []types.ErrorRecord
	for _, id := range r.FailedRules() {
		records = append(records, types.ErrorRecord{Rule: id, Library: r.Library, Entity: r.Entity})
	}
	return records
}
