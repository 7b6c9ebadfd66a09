package footprint

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F6.1", `For surface-mount devices, placement type must be set to "Surface Mount"`, func(ctx *advisor.Context) advisor.Rule {
		return &SMDAttributeRule{fp: ctx.Footprint}
	})
}

// SMDAttributeRule requires the smd attribute on footprints with only SMD
// pads.
type SMDAttributeRule struct {
	advisor.Base
	fp *footprint.Footprint
}

// Check implements advisor.Rule.
func (r *SMDAttributeRule) Check() bool {
	r.Begin()
	tht := len(r.fp.PadsByType(footprint.PadThroughHole))
	smd := len(r.fp.PadsByType(footprint.PadSMD))

	if smd == 0 || r.fp.Attribute == footprint.AttributeSMD {
		return false
	}

	switch {
	case r.fp.Attribute == footprint.AttributeVirtual:
		r.Warning("Footprint placement type set to 'virtual' - ensure this is correct!")
	case tht == 0:
		r.Error("Surface Mount attribute not set")
		r.ErrorExtra("For SMD footprints, 'Placement type' must be set to 'Surface mount'")
	default:
		r.Warning("Surface Mount attribute not set")
		r.WarningExtra("Both THT and SMD pads were found")
		r.WarningExtra("Suggest setting 'Placement Type' to 'Surface Mount'")
	}
	return r.HasErrors()
}

// Fix implements advisor.Rule.
func (r *SMDAttributeRule) Fix() {
	if r.HasErrors() {
		r.Info("Set 'surface mount' attribute")
		r.fp.Attribute = footprint.AttributeSMD
	}
}
