package reviewer

import (
	"testing"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func TestReviewResult_HasErrors(t *testing.T) {
	tests := []struct {
		name     string
		result   *ReviewResult
		expected bool
	}{
		{
			name: "no errors",
			result: &ReviewResult{
				Summary: Summary{Errors: 0, Warnings: 2},
			},
			expected: false,
		},
		{
			name: "has errors",
			result: &ReviewResult{
				Summary: Summary{Errors: 1, Unresolved: 1, Warnings: 0},
			},
			expected: true,
		},
		{
			name: "multiple errors",
			result: &ReviewResult{
				Summary: Summary{Errors: 5, Unresolved: 5, Warnings: 3},
			},
			expected: true,
		},
		{
			name: "all errors fixed",
			result: &ReviewResult{
				Summary: Summary{Errors: 2, Unresolved: 0},
			},
			expected: false,
		},
		{
			name: "some errors left after fixing",
			result: &ReviewResult{
				Summary: Summary{Errors: 2, Unresolved: 1},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.result.HasErrors()
			if got != tt.expected {
				t.Errorf("HasErrors() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReviewResult_HasWarnings(t *testing.T) {
	tests := []struct {
		name     string
		result   *ReviewResult
		expected bool
	}{
		{
			name: "no warnings",
			result: &ReviewResult{
				Summary: Summary{Errors: 1, Warnings: 0},
			},
			expected: false,
		},
		{
			name: "has warnings",
			result: &ReviewResult{
				Summary: Summary{Errors: 0, Warnings: 1},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.result.HasWarnings()
			if got != tt.expected {
				t.Errorf("HasWarnings() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReviewResult_IsClean(t *testing.T) {
	tests := []struct {
		name     string
		summary  Summary
		expected bool
	}{
		{name: "clean", summary: Summary{Rules: 15}, expected: true},
		{name: "has errors", summary: Summary{Errors: 1}, expected: false},
		{name: "has warnings", summary: Summary{Warnings: 1}, expected: false},
		{name: "has both", summary: Summary{Errors: 1, Warnings: 1}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &ReviewResult{Summary: tt.summary}
			if got := result.IsClean(); got != tt.expected {
				t.Errorf("IsClean() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReviewResult_String(t *testing.T) {
	result := &ReviewResult{
		Entity:  "SOIC-8",
		Library: "Package_SO",
		Summary: Summary{Errors: 2, Warnings: 3, Rules: 15},
	}

	expected := "Review of Package_SO:SOIC-8: 2 errors, 3 warnings (15 rules)"
	if str := result.String(); str != expected {
		t.Errorf("String() = %q, want %q", str, expected)
	}
}

func sampleResult() *ReviewResult {
	return &ReviewResult{
		Entity:  "LM358",
		Library: "Amplifier_Operational",
		Rules: []RuleReport{
			{
				ID: "S3.1", Level: types.RuleLevel_ERROR, Errors: 1,
				Messages: []types.Message{{Severity: types.Message_ERROR, Text: "Symbol unit 1 not centered on origin"}},
			},
			{
				ID: "S4.1", Level: types.RuleLevel_WARNING, Errors: 2,
				Messages: []types.Message{
					{Severity: types.Message_ERROR, Text: "Pins not located on 100mil (=2.54mm) grid:"},
					{Severity: types.Message_WARNING, Text: "Pin 3 length is not a multiple of 50mil"},
				},
			},
			{
				ID: "EC02", Level: types.RuleLevel_ERROR, Warnings: 1,
				Messages: []types.Message{{Severity: types.Message_WARNING, Text: "field: reference, @ (0, 0), recommended @ (0, 325)"}},
			},
		},
	}
}

func TestReviewResult_FailedRules(t *testing.T) {
	result := sampleResult()

	failed := result.FailedRules()
	if len(failed) != 1 || failed[0] != "S3.1" {
		t.Errorf("FailedRules() = %v, want [S3.1]", failed)
	}

	records := result.ErrorRecords()
	want := types.ErrorRecord{Rule: "S3.1", Library: "Amplifier_Operational", Entity: "LM358"}
	if len(records) != 1 || records[0] != want {
		t.Errorf("ErrorRecords() = %+v, want [%+v]", records, want)
	}
}

func TestReviewResult_FilterBySeverity(t *testing.T) {
	result := sampleResult()

	tests := []struct {
		name          string
		severity      types.Message_Severity
		expectedCount int
	}{
		{name: "errors", severity: types.Message_ERROR, expectedCount: 2},
		{name: "warnings", severity: types.Message_WARNING, expectedCount: 2},
		{name: "info", severity: types.Message_INFO, expectedCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := result.FilterBySeverity(tt.severity)
			if len(filtered) != tt.expectedCount {
				t.Errorf("FilterBySeverity() returned %d items, want %d", len(filtered), tt.expectedCount)
			}
		})
	}
}

func TestReviewResult_Rule(t *testing.T) {
	result := sampleResult()
	if r := result.Rule("S4.1"); r == nil || r.Errors != 2 {
		t.Errorf("Rule(S4.1) = %+v", r)
	}
	if r := result.Rule("S7.1"); r != nil {
		t.Errorf("Rule(S7.1) = %+v, want nil", r)
	}
}

func TestSummaryTally(t *testing.T) {
	result := &ReviewResult{}
	result.tally(RuleReport{Level: types.RuleLevel_ERROR, Errors: 2, Unresolved: 1, Warnings: 1})
	result.tally(RuleReport{Level: types.RuleLevel_WARNING, Errors: 3, Unresolved: 3, Warnings: 1})

	if result.Summary.Errors != 2 {
		t.Errorf("Errors = %d, want 2", result.Summary.Errors)
	}
	if result.Summary.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1", result.Summary.Unresolved)
	}
	if result.Summary.Warnings != 5 {
		t.Errorf("Warnings = %d, want 5", result.Summary.Warnings)
	}
}
