package footprint

import (
	"fmt"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F5.1", "Silkscreen layer requirements", func(ctx *advisor.Context) advisor.Rule {
		return &SilkscreenRule{fp: ctx.Footprint}
	})
}

const maxTrimPasses = 8

type silkIntersection struct {
	pad     *footprint.Pad
	graphic *footprint.Graphic
}

// SilkscreenRule checks the reference label, silkscreen stroke widths and
// silkscreen crossing pads.
type SilkscreenRule struct {
	advisor.Base
	fp *footprint.Footprint

	refDesError     bool
	badWidth        []*footprint.Graphic
	nonNominalWidth []*footprint.Graphic
	intersections   []silkIntersection
}

func (r *SilkscreenRule) checkReference() {
	var errs []string
	ref := r.fp.Reference
	if ref == nil {
		errs = append(errs, "Reference label is missing")
	} else {
		if ref.Value != "REF**" {
			errs = append(errs, fmt.Sprintf("Reference text is '%s', expected: 'REF**'", ref.Value))
		}
		if ref.Layer != "F.SilkS" {
			errs = append(errs, fmt.Sprintf("Reference label is on layer '%s', but should be on layer F.SilkS!", ref.Layer))
		}
		if ref.Hidden {
			errs = append(errs, "Reference label is hidden (must be set to visible)")
		}
		if !ref.Locked {
			errs = append(errs, "RefDes on F.SilkS layer should be locked (upright orientation)")
		}
		font := ref.Font
		if !sameValue(font.Width, font.Height) {
			errs = append(errs, "Reference label font aspect ratio should be 1:1")
		}
		if !sameValue(font.Height, TextSize) {
			errs = append(errs, fmt.Sprintf("Reference label has a height of %smm (expected: %smm).", num(font.Height), num(TextSize)))
		}
		if !sameValue(font.Width, TextSize) {
			errs = append(errs, fmt.Sprintf("Reference label has a width of %smm (expected: %smm).", num(font.Width), num(TextSize)))
		}
		if !sameValue(font.Thickness, TextThickness) {
			errs = append(errs, fmt.Sprintf("Reference label has a thickness of %smm (expected: %smm).", num(font.Thickness), num(TextThickness)))
		}
	}

	r.refDesError = len(errs) > 0
	if r.refDesError {
		r.Error("Reference label errors:")
		for _, e := range errs {
			r.ErrorExtra(e)
		}
	}
}

func allowedSilkWidth(w float64) bool {
	for _, a := range SilkWidthsAllowed {
		if sameValue(w, a) {
			return true
		}
	}
	return false
}

// Check implements advisor.Rule.
func (r *SilkscreenRule) Check() bool {
	r.Begin()
	r.badWidth = nil
	r.nonNominalWidth = nil
	r.intersections = nil

	silk := r.fp.GraphicsOnLayer("F.SilkS", "B.SilkS")

	r.checkReference()

	for _, g := range silk {
		switch {
		case !allowedSilkWidth(g.Width):
			r.badWidth = append(r.badWidth, g)
		case !sameValue(g.Width, SilkWidth):
			r.nonNominalWidth = append(r.nonNominalWidth, g)
		}
	}

	for _, g := range silk {
		for _, p := range r.fp.Pads {
			if footprint.PadIntersects(p, g) {
				r.intersections = append(r.intersections, silkIntersection{pad: p, graphic: g})
			}
		}
	}

	if len(r.badWidth) > 0 {
		r.Errorf("Some silkscreen lines have incorrect width: Allowed = %s mm", formatList(SilkWidthsAllowed))
		for _, g := range r.badWidth {
			r.ErrorExtra(describe(g, true))
		}
	}

	if len(r.nonNominalWidth) > 0 {
		r.Warningf("Some silkscreen lines are not using the nominal width of %s mm", num(SilkWidth))
		for _, g := range r.nonNominalWidth {
			r.WarningExtra(describe(g, true))
		}
	}

	if len(r.intersections) > 0 {
		r.Error("Some Silkscreen lines intersects with pads")
		seen := make(map[string]bool)
		for _, in := range r.intersections {
			if seen[in.pad.Number] {
				continue
			}
			seen[in.pad.Number] = true
			r.ErrorExtra(fmt.Sprintf(" - Pad %s @ (%s,%s)", in.pad.Number, num(in.pad.Pos.X), num(in.pad.Pos.Y)))
		}
	}

	return r.HasErrors()
}

// Fix restores the reference label, resets bad widths and trims straight
// silkscreen lines around the pads they cross.
func (r *SilkscreenRule) Fix() {
	if r.refDesError {
		r.Info("Fixing reference label")
		if r.fp.Reference == nil {
			r.Info("Could not fix reference label - no reference field found")
		} else {
			ref := r.fp.Reference
			ref.Value = "REF**"
			ref.Layer = "F.SilkS"
			ref.Hidden = false
			ref.Locked = true
			ref.Font = footprint.Font{Height: TextSize, Width: TextSize, Thickness: TextThickness}
		}
	}

	if len(r.badWidth) > 0 {
		r.Info("Fixing silkscreen line width")
	}
	for _, g := range r.badWidth {
		g.Width = SilkWidth
	}

	if len(r.intersections) == 0 {
		return
	}
	r.Info("Trimming silkscreen lines around pads")
	// A trim can split a line, so repeat until nothing crosses a pad.
	for pass := 0; pass < maxTrimPasses; pass++ {
		changed := false
		for _, p := range r.fp.Pads {
			for _, g := range r.fp.GraphicsOnLayer("F.SilkS", "B.SilkS") {
				if g.Kind != footprint.GraphicLine || !footprint.PadIntersectsLine(p, g.Start, g.End) {
					continue
				}
				if r.fp.TrimLineAroundPad(g, p) {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}
