// Package footprint holds the library convention rules for .kicad_mod files.
// Every rule registers itself with the advisor registry from an init function;
// importing the package for side effects makes them available.
package footprint

import (
	"math"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Dimensions required by the convention, in millimetres.
const (
	TextSize       = 1.0
	TextThickness  = 0.15
	SilkWidth      = 0.12
	CourtyardWidth = 0.05
	CourtyardGrid  = 0.01
	MinDrill       = 0.20
)

// SilkWidthsAllowed are the accepted silkscreen stroke widths.
var SilkWidthsAllowed = []float64{0.1, 0.12, 0.15}

// pin1Names are the pad numbers accepted for the first pin.
var pin1Names = []string{"1", "A", "A1", "P1", "PAD1"}

// drawingLayers are checked for overlapping and skewed items.
var drawingLayers = []string{"F.Fab", "B.Fab", "F.SilkS", "B.SilkS", "F.CrtYd", "B.CrtYd"}

func sameValue(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func isPin1(number string) bool {
	n := strings.ToUpper(number)
	for _, name := range pin1Names {
		if n == name {
			return true
		}
	}
	return false
}

// formatList renders widths the way they appear in messages, e.g. [0.1, 0.12].
func formatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = sexpr.FormatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func num(v float64) string {
	return sexpr.FormatFloat(v)
}

func describe(g *footprint.Graphic, width bool) string {
	return g.Describe(true, width)
}
