package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

const (
	testKind   types.Kind = "advisor-test"
	repairKind types.Kind = "advisor-repair-test"
)

// counterRule raises one error per remaining defect; Fix removes them.
type counterRule struct {
	Base
	defects *int
}

func (r *counterRule) Check() bool {
	r.Begin()
	for i := 0; i < *r.defects; i++ {
		r.Errorf("defect %d", i)
		r.ErrorExtra("detail")
	}
	r.Warning("always warns")
	return r.HasErrors()
}

func (r *counterRule) Fix() {
	*r.defects = 0
	r.Info("removed defects")
}

// brokenFixRule fails its check and panics in Fix.
type brokenFixRule struct {
	Base
}

func (r *brokenFixRule) Check() bool {
	r.Begin()
	r.Error("always broken")
	return true
}

func (r *brokenFixRule) Fix() {
	panic("cannot fix")
}

type panicRule struct {
	Base
}

func (r *panicRule) Check() bool {
	panic("boom")
}

var defects int

func init() {
	Register(testKind, "T1.2", "Counter rule", func(ctx *Context) Rule {
		return &counterRule{defects: &defects}
	})
	Register(testKind, "T1.10", "Panicking rule", func(ctx *Context) Rule {
		return &panicRule{}
	})
	Register(repairKind, "T2.1", "Broken fix", func(ctx *Context) Rule {
		return &brokenFixRule{}
	})
	Register(testKind, "T1.9", "Another rule", func(ctx *Context) Rule {
		return &panicRule{}
	})
}

func TestRegisterPanics(t *testing.T) {
	assert.Panics(t, func() { Register(testKind, "T9.9", "nil", nil) })
	assert.Panics(t, func() {
		Register(testKind, "T1.2", "dup", func(ctx *Context) Rule { return &panicRule{} })
	})
}

func TestRulesSorted(t *testing.T) {
	var ids []string
	for _, m := range Rules(testKind) {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"T1.2", "T1.9", "T1.10"}, ids)

	m, ok := Lookup(testKind, "T1.2")
	require.True(t, ok)
	assert.Equal(t, "Counter rule", m.Title)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name             string
		include, exclude []string
		want             []string
		wantErr          bool
	}{
		{name: "all", want: []string{"T1.2", "T1.9", "T1.10"}},
		{name: "include", include: []string{"T1.10"}, want: []string{"T1.10"}},
		{name: "exclude", exclude: []string{"T1.9"}, want: []string{"T1.2", "T1.10"}},
		{name: "both", include: []string{"T1.2", "T1.9"}, exclude: []string{"T1.9"}, want: []string{"T1.2"}},
		{name: "unknown", include: []string{"X1.1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(testKind, tt.include, tt.exclude)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewBindsContext(t *testing.T) {
	ctx := &Context{Options: Options{Verbosity: 2}, Payload: map[string]interface{}{"min": 3}}
	r, err := New(testKind, "T1.2", ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1.2", r.ID())
	assert.Equal(t, "Counter rule", r.Title())
	assert.Equal(t, KLCBaseURL+"/", r.URL())

	b := r.base()
	assert.Same(t, ctx, b.Ctx)
	assert.Equal(t, 2, b.Options().Verbosity)
	assert.Equal(t, 3.0, b.Number("min", 1))
	assert.Equal(t, 1.0, b.Number("missing", 1))

	_, err = New(testKind, "T7.7", ctx)
	assert.Error(t, err)
}

func TestCheckAndRecheck(t *testing.T) {
	defects = 2
	r, err := New(testKind, "T1.2", &Context{})
	require.NoError(t, err)

	failed, err := Run(r)
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Equal(t, 2, r.ErrorCount())
	assert.Equal(t, 1, r.WarningCount())

	msgs := r.Drain()
	require.Len(t, msgs, 3)
	assert.Equal(t, types.Message_ERROR, msgs[0].Severity)
	assert.Equal(t, "defect 0", msgs[0].Text)
	assert.Equal(t, []string{"detail"}, msgs[0].Extra)
	assert.Equal(t, types.Message_WARNING, msgs[2].Severity)
	assert.False(t, r.HasOutput())
	assert.Equal(t, 2, r.ErrorCount())

	r.Fix()
	assert.False(t, r.Recheck())
	assert.Equal(t, 0, r.ErrorCount())
	msgs = r.Drain()
	require.Len(t, msgs, 2)
	assert.Equal(t, "removed defects", msgs[0].Text)
	assert.Equal(t, "Everything fixed", msgs[1].Text)
}

func TestRecheckStillFailing(t *testing.T) {
	defects = 1
	r, err := New(testKind, "T1.2", &Context{})
	require.NoError(t, err)
	assert.True(t, r.Check())
	r.Drain()

	assert.True(t, r.Recheck())
	msgs := r.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, types.Message_ERROR, msgs[0].Severity)
	assert.Equal(t, "Could not be fixed", msgs[0].Text)
	assert.Equal(t, 1, r.ErrorCount())
}

func TestRunRecoversPanic(t *testing.T) {
	r, err := New(testKind, "T1.10", &Context{})
	require.NoError(t, err)
	failed, err := Run(r)
	require.Error(t, err)
	assert.False(t, failed)
	assert.Contains(t, err.Error(), "rule T1.10 panicked: boom")
}

func TestRepair(t *testing.T) {
	defects = 3
	r, err := New(testKind, "T1.2", &Context{})
	require.NoError(t, err)
	require.True(t, r.Check())
	r.Drain()

	remaining, err := Repair(r, true)
	require.NoError(t, err)
	assert.False(t, remaining)
	msgs := r.Drain()
	require.Len(t, msgs, 2)
	assert.Equal(t, "removed defects", msgs[0].Text)
	assert.Equal(t, "Everything fixed", msgs[1].Text)

	broken, err := New(repairKind, "T2.1", &Context{})
	require.NoError(t, err)
	require.True(t, broken.Check())
	broken.Drain()
	remaining, err = Repair(broken, false)
	require.Error(t, err)
	assert.True(t, remaining)
	assert.Contains(t, err.Error(), "panicked while fixing: cannot fix")
	msgs = broken.Drain()
	require.Len(t, msgs, 1)
	assert.Equal(t, types.Message_ERROR, msgs[0].Severity)
	assert.Contains(t, msgs[0].Text, "panicked while fixing")
}

func TestCheckIsIdempotent(t *testing.T) {
	defects = 2
	r, err := New(testKind, "T1.2", &Context{})
	require.NoError(t, err)

	require.True(t, r.Check())
	first := append([]types.Message(nil), r.Messages()...)
	errorCount, warningCount := r.ErrorCount(), r.WarningCount()

	require.True(t, r.Check())
	assert.Equal(t, errorCount, r.ErrorCount())
	assert.Equal(t, warningCount, r.WarningCount())
	assert.Equal(t, first, r.Messages())
}

func TestRecheckKeepsFixOutput(t *testing.T) {
	defects = 1
	r, err := New(testKind, "T1.2", &Context{})
	require.NoError(t, err)
	require.True(t, r.Check())

	r.Fix()
	assert.False(t, r.Recheck())
	msgs := r.Drain()
	require.Len(t, msgs, 4)
	assert.Equal(t, "defect 0", msgs[0].Text)
	assert.Equal(t, "always warns", msgs[1].Text)
	assert.Equal(t, "removed defects", msgs[2].Text)
	assert.Equal(t, "Everything fixed", msgs[3].Text)
	assert.Equal(t, 0, r.ErrorCount())
	assert.Equal(t, 1, r.WarningCount())
}

func TestDefaultFixAndExtras(t *testing.T) {
	b := &Base{}
	b.WarningExtra("orphan")
	b.Fix()
	b.SetNeedsFixMore(true)
	b.FixMore()

	msgs := b.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"orphan"}, msgs[0].Extra)
	assert.Equal(t, "Fix not supported", msgs[1].Text)
	assert.Equal(t, "FixMore not supported", msgs[2].Text)
	assert.Equal(t, 0, b.WarningCount())

	b.Reset()
	assert.False(t, b.NeedsFixMore())
	assert.False(t, b.HasOutput())
}

func TestCompareIDs(t *testing.T) {
	assert.Negative(t, CompareIDs("F5.9", "F5.10"))
	assert.Positive(t, CompareIDs("S3.1", "F9.1"))
	assert.Zero(t, CompareIDs("EC02", "EC02"))
	assert.Negative(t, CompareIDs("EC01", "EC02"))
	assert.Negative(t, CompareIDs("F5", "F5.1"))
}

func TestRuleURL(t *testing.T) {
	tests := []struct{ id, want string }{
		{"F5.1", "https://klc.kicad.org/footprint/f5/f5.1/"},
		{"S4.3", "https://klc.kicad.org/symbol/s4/s4.3/"},
		{"G1.7", "https://klc.kicad.org/general/g1/g1.7/"},
		{"EC02", "https://klc.kicad.org/"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, RuleURL(tt.id))
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("R_0805_2012Metric", false))
	assert.False(t, ValidName("R:0805", false))
	assert.False(t, ValidName("#PWR", false))
	assert.True(t, ValidName("#PWR", true))
	assert.False(t, ValidName("", true))
}

func TestDerivedSymbolRules(t *testing.T) {
	assert.Equal(t, []string{"G1.1", "G1.7", "S3.2", "S5.1", "S5.2", "S6.2"}, DerivedSymbolRules())
	assert.True(t, AppliesToDerived("S5.1"))
	assert.False(t, AppliesToDerived("S4.1"))
}
