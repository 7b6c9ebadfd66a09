package footprint

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F7.1", `For through-hole devices, placement type must be set to "Through Hole"`, func(ctx *advisor.Context) advisor.Rule {
		return &THTAttributeRule{fp: ctx.Footprint}
	})
}

// THTAttributeRule requires the through_hole attribute on footprints with
// only through hole pads. Mixed footprints are usually SMD parts and pass.
type THTAttributeRule struct {
	advisor.Base
	fp *footprint.Footprint
}

// Check implements advisor.Rule.
func (r *THTAttributeRule) Check() bool {
	r.Begin()
	tht := len(r.fp.PadsByType(footprint.PadThroughHole))
	smd := len(r.fp.PadsByType(footprint.PadSMD))

	if tht == 0 || r.fp.Attribute == footprint.AttributeThroughHole {
		return false
	}

	switch {
	case r.fp.Attribute == footprint.AttributeVirtual:
		r.Warning("Footprint placement type set to 'virtual' - ensure this is correct!")
	case smd == 0:
		r.Error("Through Hole attribute not set")
		r.ErrorExtra("For THT footprints, 'Placement type' must be set to 'Through hole'")
	}
	return r.HasErrors()
}

// Fix implements advisor.Rule.
func (r *THTAttributeRule) Fix() {
	if r.HasErrors() {
		r.Info("Setting placement type to 'Through hole'")
		r.fp.Attribute = footprint.AttributeThroughHole
	}
}
