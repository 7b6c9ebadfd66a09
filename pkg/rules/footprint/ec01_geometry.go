package footprint

import (
	"math"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "EC01", "Basic geometry checks", func(ctx *advisor.Context) advisor.Rule {
		return &GeometryRule{fp: ctx.Footprint}
	})
}

// Angles below which a line is treated as meant to be horizontal or vertical.
var (
	smallAngle     = 2.0 * math.Pi / 180
	verySmallAngle = 0.4 * math.Pi / 180
)

// GeometryRule warns about zero length lines and lines that are almost, but
// not exactly, horizontal or vertical.
type GeometryRule struct {
	advisor.Base
	fp *footprint.Footprint
}

// skew is the angle between the line and the nearest axis.
func skew(g *footprint.Graphic) float64 {
	dx := math.Abs(g.End.X - g.Start.X)
	dy := math.Abs(g.End.Y - g.Start.Y)
	return math.Atan2(math.Min(dx, dy), math.Max(dx, dy))
}

func (r *GeometryRule) report(title, detail string, items []*footprint.Graphic) {
	if len(items) == 0 {
		return
	}
	r.Warning(title)
	r.WarningExtra(detail)
	for _, g := range items {
		r.WarningExtra(describe(g, false))
	}
}

// Check implements advisor.Rule. There is no convention rule behind these
// findings, so it never fails.
func (r *GeometryRule) Check() bool {
	r.Begin()
	for _, layer := range drawingLayers {
		var null, lowAngle, strange []*footprint.Graphic
		for _, g := range r.fp.LinesOnLayer(layer) {
			if g.Start == g.End {
				null = append(null, g)
				continue
			}
			if g.Start.X == g.End.X || g.Start.Y == g.End.Y {
				continue
			}
			switch a := skew(g); {
			case a < verySmallAngle:
				lowAngle = append(lowAngle, g)
			case a < smallAngle:
				strange = append(strange, g)
			}
		}

		r.report("Zero length lines", "The following lines have 0 length", null)
		r.report("Low angle", "The following lines should be vertical or horizontal", lowAngle)
		r.report("Verticality / horizontality", "The following lines might be slightly not horizontal or vertical", strange)
	}
	return false
}
