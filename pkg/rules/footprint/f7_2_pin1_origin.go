package footprint

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F7.2", "For through-hole components, footprint anchor is set on pad 1", func(ctx *advisor.Context) advisor.Rule {
		return &Pin1OriginRule{fp: ctx.Footprint}
	})
}

// Pin1OriginRule requires a through hole footprint to be anchored on pad 1.
type Pin1OriginRule struct {
	advisor.Base
	fp *footprint.Footprint

	pin1     *geometry.Point
	pin1Pads int
}

// Check implements advisor.Rule.
func (r *Pin1OriginRule) Check() bool {
	r.Begin()
	r.pin1 = nil
	r.pin1Pads = 0

	if r.fp.Attribute != footprint.AttributeThroughHole {
		return false
	}

	var pads []*footprint.Pad
	var name string
	for _, n := range pin1Names {
		if pads = r.fp.FilterPads(n); len(pads) > 0 {
			name = n
			break
		}
	}
	if len(pads) == 0 {
		r.Warning("Pad 1 not found in footprint!")
		return false
	}

	r.pin1Pads = len(pads)
	for _, p := range pads {
		if r.pin1 == nil {
			pos := p.Pos
			r.pin1 = &pos
		}
		if p.Pos.X == 0 && p.Pos.Y == 0 {
			r.pin1 = nil
			return false
		}
	}

	if len(pads) > 1 {
		r.Warningf("Multiple Pins exist with number '%s'", name)
		r.WarningExtra("None are located on origin")
		return false
	}

	r.Errorf("Pad '%s' not located at origin", name)
	r.ErrorExtra("Set origin to location of Pad '" + name + "'")
	return true
}

// Fix moves the footprint anchor onto pad 1.
func (r *Pin1OriginRule) Fix() {
	if !r.HasErrors() || r.pin1 == nil {
		return
	}
	r.Info("Moved anchor position to Pin-1")
	r.fp.SetAnchor(*r.pin1)
}
