package sexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const padSource = `(footprint "R_0603" (version 20221018)
  (layer "F.Cu")
  (descr "Resistor \"SMD\" 0603")
  (pad "1" smd roundrect (at -0.825 0 90) (size 0.8 0.95) (layers "F.Cu" "F.Paste" "F.Mask") (roundrect_rratio 0.25))
  (fp_text reference "REF**" (at 0 -1.43) (layer "F.SilkS") hide
    (effects (font (size 1 1) (thickness 0.15)))
  )
)`

func TestParseString(t *testing.T) {
	root, err := ParseString("test.kicad_mod", padSource)
	require.NoError(t, err)

	assert.Equal(t, "footprint", root.Name())
	assert.Equal(t, "R_0603", root.Text(0))
	assert.Equal(t, `Resistor "SMD" 0603`, root.Child("descr").Text(0))

	pad := root.Child("pad")
	require.NotNil(t, pad)
	assert.Equal(t, "1", pad.Text(0))
	assert.Equal(t, KindString, pad.Arg(0).Kind)
	assert.Equal(t, "smd", pad.Text(1))
	assert.Equal(t, KindSymbol, pad.Arg(1).Kind)
	assert.InDelta(t, -0.825, pad.Child("at").Float(0), 1e-12)
	assert.InDelta(t, 90, pad.Child("at").Float(2), 1e-12)

	layers := pad.Child("layers")
	require.Len(t, layers.Args(), 3)
	assert.Equal(t, "F.Paste", layers.Text(1))

	ref := root.Child("fp_text")
	assert.True(t, ref.Flag("hide"))
	assert.False(t, ref.Flag("locked"))
	assert.InDelta(t, 0.15, ref.Path("effects", "font", "thickness").Float(0), 1e-12)
}

func TestParseStringErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unbalanced", `(footprint "x" (layer F.Cu)`},
		{"bare atom", `footprint`},
		{"unterminated string", `(descr "abc)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString("bad", tt.src)
			assert.Error(t, err)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	root, err := ParseString("test.kicad_mod", padSource)
	require.NoError(t, err)

	again, err := ParseString("again", Format(root))
	require.NoError(t, err)
	assert.Equal(t, root, again)
}

func TestFlagForms(t *testing.T) {
	root, err := ParseString("x", `(pin (hide yes) (power) (exclude no))`)
	require.NoError(t, err)
	assert.True(t, root.Flag("hide"))
	assert.True(t, root.Flag("power"))
	assert.False(t, root.Flag("exclude"))

	root.SetFlag("hide", false)
	assert.False(t, root.Flag("hide"))

	bare := List("fp_text", Sym("reference"), Str("REF**"))
	bare.SetFlag("hide", true)
	assert.True(t, bare.Flag("hide"))
	bare.SetFlag("hide", false)
	assert.False(t, bare.Flag("hide"))
	assert.Len(t, bare.Items, 3)
}

func TestSetReplacesFirstChild(t *testing.T) {
	n := List("pad", Str("1"), List("at", Num(1), Num(2)))
	n.Set("at", Num(0), Num(0))
	n.Set("size", Num(1.5), Num(1.5))

	assert.Equal(t, "(pad \"1\"\n  (at 0 0)\n  (size 1.5 1.5)\n)\n", Format(n))
}

func TestFormatInlinesShallowLists(t *testing.T) {
	root := List("footprint", Str("X"),
		List("fp_line", List("start", Num(0), Num(0)), List("end", Num(1), Num(0)),
			List("stroke", List("width", Num(0.12)), List("type", Sym("solid")))),
	)
	want := "(footprint \"X\"\n" +
		"  (fp_line (start 0 0) (end 1 0) (stroke (width 0.12) (type solid)))\n" +
		")\n"
	assert.Equal(t, want, Format(root))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.3", FormatFloat(0.1+0.2))
	assert.Equal(t, "0", FormatFloat(-0.0000001))
	assert.Equal(t, "-1.27", FormatFloat(-1.27))
	assert.Equal(t, "100", FormatFloat(100))
}
