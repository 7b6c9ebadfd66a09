package footprint

import (
	"fmt"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F6.3", "Pad requirements for SMD footprints", func(ctx *advisor.Context) advisor.Rule {
		return &SMDPadsRule{fp: ctx.Footprint}
	})
}

var (
	smdRequiredLayers = []string{"Cu", "Paste", "Mask"}
	layerSides        = []string{"F.", "B."}
)

// SMDPadsRule checks the layer stack of SMD pads and that paste-only
// stencil openings carry no number.
type SMDPadsRule struct {
	advisor.Base
	fp *footprint.Footprint

	stencilWithNumber []*footprint.Pad
}

// simpleRect reports pads whose outline is an unrotated rectangle.
func simpleRect(p *footprint.Pad) bool {
	return p.Shape == "rect" && p.Rotation == 0
}

func padRect(p *footprint.Pad) geometry.BoundingBox {
	half := p.Size.Scale(0.5)
	return geometry.NewBoundingBox(p.Pos.Sub(half), p.Pos.Add(half))
}

// hasStencilOpening reports whether a stencil pad lies entirely inside p.
func hasStencilOpening(p *footprint.Pad, pads []*footprint.Pad) bool {
	if !simpleRect(p) {
		return false
	}
	outer := padRect(p)
	for _, s := range pads {
		if !simpleRect(s) || !s.IsStencil() {
			continue
		}
		inner := padRect(s)
		if outer.XMin <= inner.XMin && outer.XMax >= inner.XMax && outer.YMin <= inner.YMin && outer.YMax >= inner.YMax {
			return true
		}
	}
	return false
}

// Check implements advisor.Rule.
func (r *SMDPadsRule) Check() bool {
	r.Begin()
	r.stencilWithNumber = nil
	var missing, extra []string

	pads := r.fp.PadsByType(footprint.PadSMD)
	allowed := make(map[string]bool)
	for _, layer := range smdRequiredLayers {
		for _, side := range layerSides {
			allowed[side+layer] = true
		}
	}

	for _, p := range pads {
		if p.IsStencil() {
			if p.Number != "" {
				r.stencilWithNumber = append(r.stencilWithNumber, p)
			}
			continue
		}

		for _, layer := range smdRequiredLayers {
			present := false
			for _, side := range layerSides {
				if p.HasLayer(side + layer) {
					present = true
				}
			}
			if !present && layer == "Paste" {
				present = hasStencilOpening(p, pads)
			}
			if !present {
				missing = append(missing, fmt.Sprintf("Pad '%s' missing layer '%s'", p.Number, layer))
			}
		}

		for _, layer := range p.Layers {
			if !allowed[layer] {
				extra = append(extra, fmt.Sprintf("Pad '%s' has extra layer '%s'", p.Number, layer))
			}
		}
	}

	if len(r.stencilWithNumber) > 0 {
		r.Error("Stencil pad(s) found with non-empty number")
		for _, p := range r.stencilWithNumber {
			r.ErrorExtra(fmt.Sprintf("Pad '%s' @ (%s, %s)", p.Number, num(p.Pos.X), num(p.Pos.Y)))
		}
	}

	if len(extra) > 0 {
		r.Error("Pad(s) found with extra layers")
		for _, e := range extra {
			r.ErrorExtra(e)
		}
	}

	if len(missing) > 0 {
		r.Warning("Pad(s) potentially missing layers")
		for _, w := range missing {
			r.WarningExtra(w)
		}
	}

	return r.HasErrors()
}

// Fix clears the number of stencil pads. Extra layers are left alone.
func (r *SMDPadsRule) Fix() {
	for _, p := range r.stencilWithNumber {
		r.Infof("Removing number '%s' for stencil pad", p.Number)
		p.Number = ""
	}
}
