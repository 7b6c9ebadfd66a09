package symbol

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S3.2", "Text fields should use a common text size of 50mils", func(ctx *advisor.Context) advisor.Rule {
		return &TextSizeRule{sym: ctx.Symbol}
	})
}

// TextSizeRule checks field and pin text sizes. Fields must be 50 mil; pin
// names and numbers may range from 20 to 50 mil but should be 50.
type TextSizeRule struct {
	advisor.Base
	sym *symbol.Symbol

	badProperties []*symbol.Property
	badPins       []*symbol.Pin
}

// Check implements advisor.Rule.
func (r *TextSizeRule) Check() bool {
	r.Begin()
	r.badProperties = nil
	r.badPins = nil

	for _, p := range r.sym.Properties {
		size := mil(p.FontSize.X)
		if size != TextSizeMil {
			r.badProperties = append(r.badProperties, p)
			r.Errorf(" - Field %s at posx %d posy %d size %d", p.Name, mil(p.Pos.X), mil(p.Pos.Y), size)
		}
	}

	for _, p := range r.sym.Pins {
		name, number := mil(p.NameSize), mil(p.NumberSize)
		if name < PinNameMinMil || name > PinNameMaxMil || number < PinNameMinMil || number > PinNameMaxMil {
			r.badPins = append(r.badPins, p)
			r.Errorf(" - Pin %s (%s), text size %d, number size %d", p.Name, p.Number, name, number)
			continue
		}
		if name != TextSizeMil {
			r.Warningf("Pin %s (%s) name text size should be 50mils (or 20...50mils if required by the symbol geometry)", p.Name, p.Number)
		}
		if number != TextSizeMil {
			r.Warningf("Pin %s (%s) number text size should be 50mils (or 20...50mils if required by the symbol geometry)", p.Name, p.Number)
		}
	}
	return r.HasErrors()
}

// Fix resets the offending sizes to 50 mil.
func (r *TextSizeRule) Fix() {
	size := geometry.MilToMM(TextSizeMil)
	if len(r.badProperties) > 0 {
		r.Info("Fixing field text size")
	}
	for _, p := range r.badProperties {
		p.FontSize = geometry.Pt(size, size)
	}
	if len(r.badPins) > 0 {
		r.Info("Fixing pin text size")
	}
	for _, p := range r.badPins {
		p.NameSize = size
		p.NumberSize = size
	}
}
