package footprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// TestCase is one entry of testdata/rules.yaml.
type TestCase struct {
	Rule      string  `yaml:"rule"`
	Name      string  `yaml:"name"`
	Footprint string  `yaml:"footprint"`
	Path      string  `yaml:"path"`
	Attr      *string `yaml:"attr"`
	Descr     *string `yaml:"descr"`
	Tags      *string `yaml:"tags"`
	Reference string  `yaml:"reference"`
	Items     string  `yaml:"items"`
	Extra     string  `yaml:"extra"`
	CRLF      bool    `yaml:"crlf"`
	Errors    int     `yaml:"errors"`
	Warnings  int     `yaml:"warnings"`
	Message   string  `yaml:"message"`
	Fixed     *bool   `yaml:"fixed"`
}

const cleanItems = `(fp_line (start -1.5 -1) (end 1.5 -1) (stroke (width 0.12) (type solid)) (layer "F.SilkS"))
(fp_line (start -1.5 1) (end 1.5 1) (stroke (width 0.12) (type solid)) (layer "F.SilkS"))
(fp_line (start -1.6 -1.2) (end 1.6 -1.2) (stroke (width 0.05) (type solid)) (layer "F.CrtYd"))
(fp_line (start 1.6 -1.2) (end 1.6 1.2) (stroke (width 0.05) (type solid)) (layer "F.CrtYd"))
(fp_line (start 1.6 1.2) (end -1.6 1.2) (stroke (width 0.05) (type solid)) (layer "F.CrtYd"))
(fp_line (start -1.6 1.2) (end -1.6 -1.2) (stroke (width 0.05) (type solid)) (layer "F.CrtYd"))
(pad "1" smd roundrect (at -0.8 0) (size 0.8 0.9) (layers "F.Cu" "F.Paste" "F.Mask") (roundrect_rratio 0.25))
(pad "2" smd roundrect (at 0.8 0) (size 0.8 0.9) (layers "F.Cu" "F.Paste" "F.Mask") (roundrect_rratio 0.25))
`

const defaultReference = `(fp_text reference "REF**" (at 0 -2) (layer "F.SilkS")
  (effects (font (size 1 1) (thickness 0.15))))`

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// source assembles the footprint text of tc.
func (tc TestCase) source() (path, src string) {
	name := tc.Footprint
	if name == "" {
		name = "Test_Footprint"
	}
	path = tc.Path
	if path == "" {
		path = filepath.Join("Test_Lib.pretty", name+footprint.Extension)
	}
	items := tc.Items
	if items == "" {
		items = cleanItems + tc.Extra
	}
	ref := tc.Reference
	if ref == "" {
		ref = defaultReference
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(footprint %q (version 20221018) (generator pcbnew)\n", name)
	b.WriteString("  (layer \"F.Cu\")\n")
	fmt.Fprintf(&b, "  (descr %q)\n", valueOr(tc.Descr, "Test footprint"))
	fmt.Fprintf(&b, "  (tags %q)\n", valueOr(tc.Tags, "test"))
	if attr := valueOr(tc.Attr, footprint.AttributeSMD); attr != "" {
		fmt.Fprintf(&b, "  (attr %s)\n", attr)
	}
	b.WriteString(ref + "\n")
	fmt.Fprintf(&b, "(fp_text value %q (at 0 2) (layer \"F.Fab\")\n  (effects (font (size 1 1) (thickness 0.15))))\n", name)
	b.WriteString(items)
	b.WriteString(")\n")

	src = b.String()
	if tc.CRLF {
		src = strings.ReplaceAll(src, "\n", "\r\n")
	}
	return path, src
}

func newRule(t *testing.T, id string, fp *footprint.Footprint) advisor.Rule {
	t.Helper()
	r, err := advisor.New(types.KindFootprint, id, &advisor.Context{Footprint: fp})
	require.NoError(t, err)
	return r
}

func TestFootprintRulesFromYAML(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "rules.yaml"))
	require.NoError(t, err)
	var tests []TestCase
	require.NoError(t, yaml.Unmarshal(data, &tests))
	require.NotEmpty(t, tests)

	for _, tc := range tests {
		t.Run(tc.Rule+"/"+tc.Name, func(t *testing.T) {
			path, src := tc.source()
			fp, err := footprint.Parse(path, src)
			require.NoError(t, err)

			r := newRule(t, tc.Rule, fp)
			failed, err := advisor.Run(r)
			require.NoError(t, err)

			assert.Equal(t, tc.Errors > 0, failed)
			assert.Equalf(t, tc.Errors, r.ErrorCount(), "messages: %v", r.Messages())
			assert.Equalf(t, tc.Warnings, r.WarningCount(), "messages: %v", r.Messages())
			if tc.Message != "" {
				assert.True(t, containsMessage(r.Messages(), tc.Message), "missing %q in %v", tc.Message, r.Messages())
			}

			if tc.Fixed != nil {
				r.Drain()
				r.Fix()
				assert.Equal(t, !*tc.Fixed, r.Recheck(), "messages: %v", r.Messages())
			}
		})
	}
}

func containsMessage(msgs []types.Message, text string) bool {
	for _, m := range msgs {
		if strings.Contains(m.Text, text) {
			return true
		}
	}
	return false
}

func TestAllFootprintRulesRegistered(t *testing.T) {
	var ids []string
	for _, m := range advisor.Rules(types.KindFootprint) {
		ids = append(ids, m.ID)
		assert.NotEmpty(t, m.Title)
	}
	assert.Equal(t, []string{
		"EC01", "EC02", "F5.1", "F5.3", "F5.4", "F6.1", "F6.3",
		"F7.1", "F7.2", "F7.3", "F7.4", "F7.6", "F9.1", "G1.1", "G1.7",
	}, ids)
}

func TestCleanFootprintPassesEveryRule(t *testing.T) {
	path, src := TestCase{}.source()
	fp, err := footprint.Parse(path, src)
	require.NoError(t, err)

	for _, m := range advisor.Rules(types.KindFootprint) {
		r := newRule(t, m.ID, fp)
		failed, err := advisor.Run(r)
		require.NoError(t, err)
		assert.False(t, failed, m.ID)
		assert.Zero(t, r.WarningCount(), "%s: %v", m.ID, r.Messages())
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	path, src := TestCase{Extra: `(fp_line (start -2 0) (end 2 0) (stroke (width 0.3) (type solid)) (layer "F.SilkS"))`}.source()
	fp, err := footprint.Parse(path, src)
	require.NoError(t, err)

	for _, m := range advisor.Rules(types.KindFootprint) {
		r := newRule(t, m.ID, fp)
		first := r.Check()
		msgs := append([]types.Message(nil), r.Messages()...)
		errs, warns := r.ErrorCount(), r.WarningCount()

		assert.Equal(t, first, r.Check(), m.ID)
		assert.Equal(t, msgs, r.Messages(), m.ID)
		assert.Equal(t, errs, r.ErrorCount(), m.ID)
		assert.Equal(t, warns, r.WarningCount(), m.ID)
	}
}

func TestCourtyardFixMoreAddsRectangle(t *testing.T) {
	path, src := TestCase{Items: `(pad "1" smd roundrect (at -0.8 0) (size 0.8 0.9) (layers "F.Cu" "F.Paste" "F.Mask"))
(pad "2" smd roundrect (at 0.8 0) (size 0.8 0.9) (layers "F.Cu" "F.Paste" "F.Mask"))
`}.source()
	fp, err := footprint.Parse(path, src)
	require.NoError(t, err)

	r := newRule(t, "F5.3", fp)
	require.True(t, r.Check())
	require.True(t, r.NeedsFixMore())

	r.FixMore()
	r.Fix()
	assert.False(t, r.Recheck(), "messages: %v", r.Messages())

	lines := fp.LinesOnLayer("F.CrtYd")
	require.Len(t, lines, 4)
	bb := fp.CourtyardBoundingBox()
	// pads span 2.4 x 0.9 with the default clearance of 0.25
	assert.InDelta(t, -1.45, bb.XMin, 1e-9)
	assert.InDelta(t, -0.7, bb.YMin, 1e-9)
	assert.InDelta(t, 1.45, bb.XMax, 1e-9)
	assert.InDelta(t, 0.7, bb.YMax, 1e-9)
}

func TestCourtyardOffsetForConnectors(t *testing.T) {
	path, src := TestCase{
		Footprint: "PinHeader_1x02",
		Path:      "Connector_PinHeader.pretty/PinHeader_1x02.kicad_mod",
		Items:     `(pad "1" thru_hole rect (at 0 0) (size 1.7 1.7) (drill 1) (layers "*.Cu" "*.Mask"))`,
	}.source()
	fp, err := footprint.Parse(path, src)
	require.NoError(t, err)

	r := &CourtyardRule{fp: fp}
	bounds := r.footprintBounds()
	assert.Equal(t, 0.5, r.defaultOffset(bounds))
}

func TestSilkscreenTrimmedAroundPads(t *testing.T) {
	path, src := TestCase{Extra: `(fp_line (start -2 0) (end 2 0) (stroke (width 0.12) (type solid)) (layer "F.SilkS"))`}.source()
	fp, err := footprint.Parse(path, src)
	require.NoError(t, err)

	r := newRule(t, "F5.1", fp)
	require.True(t, r.Check())
	r.Fix()
	require.False(t, r.Recheck())

	var pieces []geometry.Point
	for _, g := range fp.LinesOnLayer("F.SilkS") {
		if g.Start.Y == 0 {
			pieces = append(pieces, g.Start, g.End)
		}
	}
	assert.Equal(t, []geometry.Point{
		geometry.Pt(-2, 0), geometry.Pt(-1.476, 0),
		geometry.Pt(-0.124, 0), geometry.Pt(0.124, 0),
		geometry.Pt(1.476, 0), geometry.Pt(2, 0),
	}, pieces)
}

func TestPin1OriginFixMovesEverything(t *testing.T) {
	path, src := TestCase{
		Attr: strPtr(footprint.AttributeThroughHole),
		Items: `(pad "1" thru_hole rect (at 1 2) (size 1.7 1.7) (drill 1) (layers "*.Cu" "*.Mask"))
(fp_line (start 0 0) (end 2 0) (stroke (width 0.1) (type solid)) (layer "F.Fab"))
`,
	}.source()
	fp, err := footprint.Parse(path, src)
	require.NoError(t, err)

	r := newRule(t, "F7.2", fp)
	require.True(t, r.Check())
	r.Fix()
	assert.False(t, r.Recheck())
	assert.Equal(t, geometry.Pt(0, 0), fp.Pads[0].Pos)
	fab := fp.LinesOnLayer("F.Fab")
	require.Len(t, fab, 1)
	assert.Equal(t, geometry.Pt(-1, -2), fab[0].Start)
	assert.Equal(t, geometry.Pt(-1, 0), fp.Value.Pos)
	assert.Equal(t, geometry.Pt(-1, -4), fp.Reference.Pos)
}

func strPtr(s string) *string { return &s }
