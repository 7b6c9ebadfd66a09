package footprint

import (
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "EC02", "Pad shape checks", func(ctx *advisor.Context) advisor.Rule {
		return &PadShapeRule{fp: ctx.Footprint}
	})
}

// PadShapeRule suggests rounded rectangles for SMD pads.
type PadShapeRule struct {
	advisor.Base
	fp *footprint.Footprint
}

// Check implements advisor.Rule.
func (r *PadShapeRule) Check() bool {
	r.Begin()
	var bad []string
	for _, p := range r.fp.PadsByType(footprint.PadSMD) {
		if p.Shape == "rect" {
			bad = append(bad, p.Number)
		}
	}
	if len(bad) > 0 {
		r.Warning("Rectangular SMD pad")
		r.WarningExtra("Pads " + strings.Join(bad, ", ") + " are square. If possible, change to round-rect.")
	}
	return false
}
