package footprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
)

const resistorSource = `(footprint "R_0603_1608Metric" (version 20221018) (generator pcbnew)
  (layer "F.Cu")
  (descr "Resistor SMD 0603")
  (tags "resistor")
  (attr smd)
  (fp_text reference "REF**" (at 0 -1.43) (layer "F.SilkS")
    (effects (font (size 1 1) (thickness 0.15)))
    (tstamp 1)
  )
  (fp_text value "R_0603_1608Metric" (at 0 1.43) (layer "F.Fab")
    (effects (font (size 1 1) (thickness 0.15)))
  )
  (fp_line (start -0.237 -0.5225) (end 0.237 -0.5225) (stroke (width 0.12) (type solid)) (layer "F.SilkS"))
  (fp_arc (start -1 0) (mid 0 -1) (end 1 0) (stroke (width 0.1) (type solid)) (layer "F.Fab"))
  (fp_circle (center 0 0) (end 0.5 0) (stroke (width 0.1) (type solid)) (layer "F.Fab"))
  (pad "1" smd roundrect (at -0.825 0) (size 0.8 0.95) (layers "F.Cu" "F.Paste" "F.Mask") (roundrect_rratio 0.25))
  (pad "2" smd roundrect (at 0.825 0) (size 0.8 0.95) (layers "F.Cu" "F.Paste" "F.Mask") (roundrect_rratio 0.25))
  (pad "" thru_hole oval (at 0 3 90) (size 1.2 1.8) (drill oval 0.6 1.2 (offset 0.1 0)) (layers "*.Cu" "*.Mask"))
  (model "${KICAD6_3DMODEL_DIR}/Resistor_SMD.3dshapes/R_0603_1608Metric.wrl"
    (offset (xyz 0 0 0))
    (scale (xyz 1 1 1))
    (rotate (xyz 0 0 0))
  )
)
`

func TestParse(t *testing.T) {
	f, err := Parse("Resistor_SMD.pretty/R_0603_1608Metric.kicad_mod", resistorSource)
	require.NoError(t, err)

	assert.Equal(t, "R_0603_1608Metric", f.Name)
	assert.Equal(t, "Resistor SMD 0603", f.Description)
	assert.Equal(t, "resistor", f.Tags)
	assert.Equal(t, AttributeSMD, f.Attribute)
	assert.Equal(t, "Resistor_SMD", f.Library())
	assert.Equal(t, "R_0603_1608Metric", f.FileBase())
	assert.False(t, f.HasCR)

	assert.Equal(t, "REF**", f.Reference.Value)
	assert.Equal(t, "F.SilkS", f.Reference.Layer)
	assert.True(t, f.Reference.Locked)
	assert.Equal(t, Font{Height: 1, Width: 1, Thickness: 0.15}, f.Reference.Font)
	assert.Equal(t, "F.Fab", f.Value.Layer)

	require.Len(t, f.Pads, 3)
	assert.Equal(t, geometry.Pt(-0.825, 0), f.Pads[0].Pos)
	assert.Equal(t, []string{"F.Cu", "F.Paste", "F.Mask"}, f.Pads[0].Layers)
	require.NotNil(t, f.Pads[2].Drill)
	assert.True(t, f.Pads[2].Drill.Oval)
	assert.Equal(t, geometry.Pt(0.6, 1.2), f.Pads[2].Drill.Size)
	assert.Equal(t, geometry.Pt(0.1, 0), f.Pads[2].Drill.Offset)
	assert.InDelta(t, 90, f.Pads[2].Rotation, 1e-12)

	require.Len(t, f.Graphics, 3)
	arc := f.Graphics[1]
	assert.Equal(t, GraphicArc, arc.Kind)
	assert.InDelta(t, 0, arc.Center.X, 1e-9)
	assert.InDelta(t, 0, arc.Center.Y, 1e-9)
	assert.InDelta(t, 1, arc.Radius(), 1e-9)
	assert.Len(t, f.LinesOnLayer("F.SilkS"), 1)
	assert.Len(t, f.CirclesOnLayer("F.Fab"), 1)
	assert.Len(t, f.Models, 1)
}

func TestParseLegacyArc(t *testing.T) {
	src := `(module Test (layer F.Cu)
  (fp_arc (start 0 0) (end 1 0) (angle 90) (layer F.Fab) (width 0.1))
)`
	f, err := Parse("Test.kicad_mod", src)
	require.NoError(t, err)
	require.Len(t, f.Graphics, 1)
	arc := f.Graphics[0]
	assert.Equal(t, geometry.Pt(0, 0), arc.Center)
	assert.Equal(t, geometry.Pt(1, 0), arc.Start)
	assert.InDelta(t, 0, arc.End.X, 1e-9)
	assert.InDelta(t, 1, arc.End.Y, 1e-9)
	assert.InDelta(t, 0.1, arc.Width, 1e-12)

	out := f.Format()
	assert.Contains(t, out, "(fp_arc (start 0 0) (end 1 0) (angle 90) (layer F.Fab) (width 0.1))")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("x.kicad_mod", `(kicad_symbol_lib (version 1))`)
	assert.Error(t, err)

	_, err = Load("missing.txt")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.kicad_mod"))
	assert.Error(t, err)
}

func TestFormatRoundTrip(t *testing.T) {
	f, err := Parse("R.kicad_mod", resistorSource)
	require.NoError(t, err)

	again, err := Parse("R.kicad_mod", f.Format())
	require.NoError(t, err)
	assert.Equal(t, f.Format(), again.Format())
	assert.Len(t, again.Graphics, len(f.Graphics))
	assert.Len(t, again.Pads, len(f.Pads))
}

func TestSaveWritesUnixLineEndings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "R.kicad_mod")
	src := strings.ReplaceAll(resistorSource, "\n", "\r\n")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.True(t, f.HasCR)

	f.Value.Value = "changed"
	require.NoError(t, f.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.False(t, again.HasCR)
	assert.Equal(t, "changed", again.Value.Value)
}

func TestAddedGraphicsAreSaved(t *testing.T) {
	f, err := Parse("R.kicad_mod", resistorSource)
	require.NoError(t, err)

	f.AddRectangle(geometry.Pt(-1.5, -1), geometry.Pt(1.5, 1), "F.CrtYd", 0.05)
	f.RemoveGraphic(f.Graphics[0])

	again, err := Parse("R.kicad_mod", f.Format())
	require.NoError(t, err)
	assert.Len(t, again.Graphics, 6)
	assert.Len(t, again.GraphicsOnLayer("F.CrtYd"), 4)
	assert.Empty(t, again.LinesOnLayer("F.SilkS"))
}

func TestSetAnchor(t *testing.T) {
	f, err := Parse("R.kicad_mod", resistorSource)
	require.NoError(t, err)

	f.SetAnchor(f.Pads[0].Pos)
	assert.Equal(t, geometry.Pt(0, 0), f.Pads[0].Pos)
	assert.InDelta(t, 1.65, f.Pads[1].Pos.X, 1e-9)
	assert.InDelta(t, 0.825, f.Reference.Pos.X, 1e-9)
}

func TestRotate(t *testing.T) {
	f, err := Parse("R.kicad_mod", resistorSource)
	require.NoError(t, err)

	f.Rotate(90)
	assert.InDelta(t, 0, f.Pads[0].Pos.X, 1e-9)
	assert.InDelta(t, -0.825, f.Pads[0].Pos.Y, 1e-9)
	assert.InDelta(t, 270, f.Pads[0].Rotation, 1e-9)
	assert.InDelta(t, 0, f.Pads[2].Rotation, 1e-9)
}

func TestAttributeSync(t *testing.T) {
	f, err := Parse("R.kicad_mod", strings.Replace(resistorSource, "(attr smd)", "(attr smd exclude_from_bom)", 1))
	require.NoError(t, err)

	f.Attribute = AttributeThroughHole
	assert.Contains(t, f.Format(), "(attr through_hole exclude_from_bom)")
}

func TestPadHelpers(t *testing.T) {
	stencil := &Pad{Layers: []string{"F.Paste"}}
	assert.True(t, stencil.IsStencil())
	assert.False(t, (&Pad{}).IsStencil())

	n, ok := (&Pad{Number: "12"}).NumberInt()
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	_, ok = (&Pad{Number: "A1"}).NumberInt()
	assert.False(t, ok)

	p := &Pad{Pos: geometry.Pt(1, 1), Size: geometry.Pt(2, 1), Rotation: 90}
	b := p.BoundingBox()
	assert.InDelta(t, 0.5, b.XMin, 1e-9)
	assert.InDelta(t, 1.5, b.XMax, 1e-9)
	assert.InDelta(t, 0, b.YMin, 1e-9)
	assert.InDelta(t, 2, b.YMax, 1e-9)
}
