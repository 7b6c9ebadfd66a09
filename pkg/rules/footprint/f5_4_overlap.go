package footprint

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F5.4", "Elements on the graphic layer should not overlap", func(ctx *advisor.Context) advisor.Rule {
		return &OverlapRule{fp: ctx.Footprint}
	})
}

// OverlapRule reports duplicated or overlapping drawing items per layer.
type OverlapRule struct {
	advisor.Base
	fp *footprint.Footprint

	overlaps map[string][]*footprint.Graphic
}

// Check implements advisor.Rule.
func (r *OverlapRule) Check() bool {
	r.Begin()
	r.overlaps = make(map[string][]*footprint.Graphic)

	for _, layer := range drawingLayers {
		var bad []*footprint.Graphic
		bad = append(bad, footprint.OverlappingLines(r.fp.LinesOnLayer(layer))...)
		bad = append(bad, footprint.OverlappingCircles(r.fp.CirclesOnLayer(layer))...)
		if len(bad) == 0 {
			continue
		}
		r.overlaps[layer] = bad

		r.Errorf("%s graphic elements should not overlap.", layer)
		r.ErrorExtra("The following elements do overlap at least one other graphic element on the same layer")
		for _, g := range bad {
			r.ErrorExtra(describe(g, false))
		}
	}

	return r.HasErrors()
}
