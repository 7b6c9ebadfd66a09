package footprint

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F7.4", "Pad requirements for THT footprints", func(ctx *advisor.Context) advisor.Rule {
		return &THTLayersRule{fp: ctx.Footprint}
	})
}

var (
	thtRequiredLayers = []string{"*.Cu", "*.Mask"}
	// exposedPadName matches names like QFN-16-1EP; the digit counts the
	// exposed pads.
	exposedPadName = regexp.MustCompile(`(?i)-(\d)\d*[EP]{2}`)
)

// THTLayersRule checks the layers of through hole pads. Thermal vias inside
// an exposed pad only need copper.
type THTLayersRule struct {
	advisor.Base
	fp *footprint.Footprint

	wrongLayers []*footprint.Pad
}

// exposedPads returns the pads with the highest numbers on F.Cu, one per
// exposed pad announced in the footprint name.
func (r *THTLayersRule) exposedPads() []*footprint.Pad {
	m := exposedPadName.FindStringSubmatch(r.fp.Name)
	if m == nil {
		return nil
	}
	count, _ := strconv.Atoi(m[1])

	maxNumber := 0
	var copper []*footprint.Pad
	for _, p := range r.fp.Pads {
		if p.Type != footprint.PadSMD || !p.HasLayer("F.Cu") {
			continue
		}
		n, ok := p.NumberInt()
		if !ok {
			continue
		}
		copper = append(copper, p)
		if n > maxNumber {
			maxNumber = n
		}
	}

	var out []*footprint.Pad
	for i := 0; i < count; i++ {
		for _, p := range copper {
			if n, _ := p.NumberInt(); n == maxNumber-i {
				out = append(out, p)
			}
		}
	}
	return out
}

func insideExposedPad(p *footprint.Pad, exposed []*footprint.Pad) bool {
	for _, ep := range exposed {
		if ep.Pos.X+ep.Size.X-p.Pos.X > 0 &&
			ep.Pos.Y+ep.Size.Y-p.Pos.Y > 0 &&
			ep.Pos.X-ep.Size.X-p.Pos.X < 0 &&
			ep.Pos.Y-ep.Size.Y-p.Pos.Y < 0 {
			return true
		}
	}
	return false
}

// Check implements advisor.Rule.
func (r *THTLayersRule) Check() bool {
	r.Begin()
	r.wrongLayers = nil
	var errs []string

	exposed := r.exposedPads()
	required := make(map[string]bool, len(thtRequiredLayers))
	for _, l := range thtRequiredLayers {
		required[l] = true
	}

	for _, p := range r.fp.Pads {
		if p.Type != footprint.PadThroughHole {
			continue
		}
		thermalVia := insideExposedPad(p, exposed)

		wrong := false
		for _, l := range thtRequiredLayers {
			if !p.HasLayer(l) && !thermalVia {
				errs = append(errs, fmt.Sprintf("Pad '%s' missing layer '%s'", p.Number, l))
				wrong = true
			}
		}
		for _, l := range p.Layers {
			if !required[l] {
				errs = append(errs, fmt.Sprintf("Pad '%s' has extra layer '%s'", p.Number, l))
				wrong = true
			}
		}
		if wrong {
			r.wrongLayers = append(r.wrongLayers, p)
		}
	}

	if len(errs) > 0 {
		r.Error("Some THT pads have incorrect layer settings")
		for _, e := range errs {
			r.ErrorExtra(e)
		}
	}
	return r.HasErrors()
}

// Fix resets the layers of the offending pads.
func (r *THTLayersRule) Fix() {
	for _, p := range r.wrongLayers {
		r.Infof("Pad %s - Setting required layers for THT pad", p.Number)
		p.SetLayers(thtRequiredLayers...)
	}
}
