package symbol

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "EC02", "Check part reference, name and footprint position and alignment", func(ctx *advisor.Context) advisor.Rule {
		return &FieldPlacementRule{sym: ctx.Symbol}
	})
}

// placement is where a field should go.
type placement struct {
	pos     geometry.Point
	justify string
}

// FieldPlacementRule recommends positions for Reference and Value above the
// body and for Footprint below it. Fields move aside when pins leave the
// body on that side. It only warns.
type FieldPlacementRule struct {
	advisor.Base
	sym *symbol.Symbol

	fields map[string]placement
}

var placedFields = []struct {
	property, label string
}{
	{"Reference", "reference"},
	{"Value", "name"},
	{"Footprint", "footprint"},
}

// Check implements advisor.Rule.
func (r *FieldPlacementRule) Check() bool {
	r.Begin()
	r.fields = nil
	outline := r.sym.CenterRectangle(0, 1)
	if outline == nil {
		return false
	}
	top, bottom := outline.Box.YMax, outline.Box.YMin

	r.fields = map[string]placement{
		"Reference": r.above(top + geometry.MilToMM(125)),
		"Value":     r.above(top + geometry.MilToMM(50)),
		"Footprint": r.below(bottom - geometry.MilToMM(50)),
	}

	for _, f := range placedFields {
		prop := r.sym.Property(f.property)
		if prop == nil {
			continue
		}
		want := r.fields[f.property]
		if mil(prop.Pos.X) != mil(want.pos.X) || mil(prop.Pos.Y) != mil(want.pos.Y) {
			r.Warningf("field: %s, %s, recommended %s", f.label, symbol.PositionString(prop.Pos), symbol.PositionString(want.pos))
		}
		if prop.HJustify != want.justify {
			r.Warningf("field: %s, justification %s, recommended %s", f.label, prop.HJustify, want.justify)
		}
	}
	return false
}

// above places a field at y, centered, or right aligned left of the pins
// leaving the top of the body.
func (r *FieldPlacementRule) above(y float64) placement {
	pins := r.sym.PinsWithDirection("D")
	if len(pins) == 0 {
		return placement{pos: geometry.Pt(0, y), justify: "center"}
	}
	x := pins[0].Pos.X
	for _, p := range pins[1:] {
		if p.Pos.X < x {
			x = p.Pos.X
		}
	}
	return placement{pos: geometry.Pt(x-geometry.MilToMM(100), y), justify: "right"}
}

// below places a field at y, centered, or left aligned right of the pins
// leaving the bottom of the body.
func (r *FieldPlacementRule) below(y float64) placement {
	pins := r.sym.PinsWithDirection("U")
	if len(pins) == 0 {
		return placement{pos: geometry.Pt(0, y), justify: "center"}
	}
	x := pins[0].Pos.X
	for _, p := range pins[1:] {
		if p.Pos.X > x {
			x = p.Pos.X
		}
	}
	return placement{pos: geometry.Pt(x+geometry.MilToMM(50), y), justify: "left"}
}

// Fix moves the fields to the recommended places.
func (r *FieldPlacementRule) Fix() {
	if r.fields == nil {
		return
	}
	r.Info("Fixing...")
	for name, want := range r.fields {
		if prop := r.sym.Property(name); prop != nil {
			prop.Pos = want.pos
			prop.HJustify = want.justify
		}
	}
}
