package footprint

import (
	"math"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F7.6", "Minimum hole drill size", func(ctx *advisor.Context) advisor.Rule {
		return &DrillRule{fp: ctx.Footprint}
	})
}

// DrillRule requires every plated hole to be at least MinDrill wide.
type DrillRule struct {
	advisor.Base
	fp *footprint.Footprint
}

func (r *DrillRule) checkPad(p *footprint.Pad, minDrill float64) {
	if p.Drill == nil {
		r.Errorf("Pad %s is missing 'drill' parameter", p.Number)
		return
	}
	if !p.Drill.HasSize {
		r.Errorf("Drill specification is missing 'size' parameter for pad %s", p.Number)
		return
	}
	size := math.Min(p.Drill.Size.X, p.Drill.Size.Y)
	if size < minDrill {
		r.Errorf("Pad %s min. drill size (%smm) is below minimum (%smm)", p.Number, num(size), num(minDrill))
	}
}

// Check implements advisor.Rule. The minimum can be overridden with the
// "min_drill" payload field.
func (r *DrillRule) Check() bool {
	r.Begin()
	minDrill := r.Number("min_drill", MinDrill)
	for _, p := range r.fp.PadsByType(footprint.PadThroughHole) {
		r.checkPad(p, minDrill)
	}
	return r.HasErrors()
}
