package footprint

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F7.3", "Pad 1 should be denoted by rectangular pad", func(ctx *advisor.Context) advisor.Rule {
		return &Pin1ShapeRule{fp: ctx.Footprint}
	})
}

var pin1Shapes = map[string]bool{"rect": true, "roundrect": true}

// Pin1ShapeRule suggests a rectangular first pad on through hole parts and
// round pads everywhere else. It only warns.
type Pin1ShapeRule struct {
	advisor.Base
	fp *footprint.Footprint
}

// Check implements advisor.Rule.
func (r *Pin1ShapeRule) Check() bool {
	r.Begin()
	if r.fp.Attribute != footprint.AttributeThroughHole {
		return false
	}

	pin1Rect := true
	otherRect := false
	for _, p := range r.fp.Pads {
		if isPin1(p.Number) {
			if !pin1Shapes[p.Shape] {
				pin1Rect = false
			}
		} else if pin1Shapes[p.Shape] {
			otherRect = true
		}
	}

	if !pin1Rect && len(r.fp.Pads) >= 2 {
		r.Warning("Pad 1 should be rectangular")
		r.WarningExtra("Ignore for non-polarized devices")
	}
	if otherRect {
		r.Warning("Only pad 1 should be rectangular")
	}
	return false
}
