package symbol

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S7.2", "Graphical symbols follow some special rules/KLC-exceptions", func(ctx *advisor.Context) advisor.Rule {
		return &GraphicSymbolRule{sym: ctx.Symbol}
	})
}

// GraphicSymbolRule checks drawings that are not parts: no pins, no
// footprint, a hidden #SYM reference and exclusion from BOM and board.
type GraphicSymbolRule struct {
	advisor.Base
	sym *symbol.Symbol

	pins, footprint bool
}

// Check implements advisor.Rule.
func (r *GraphicSymbolRule) Check() bool {
	r.Begin()
	r.pins, r.footprint = false, false
	if !r.sym.IsGraphic() {
		return false
	}

	if len(r.sym.Pins) > 0 {
		r.Error("Graphical symbols have no pins")
		r.pins = true
	}
	if fp := r.sym.PropertyValue("Footprint"); fp != "" {
		r.Errorf("Graphical symbols have no footprint association (footprint was set to '%s')", fp)
		r.footprint = true
	}
	if len(r.sym.FootprintFilters()) > 0 {
		r.Error("Graphical symbols have no footprint filters")
		r.footprint = true
	}

	if ref := r.sym.Property("Reference"); ref == nil {
		r.Error("Graphical symbols have a Reference property")
	} else {
		if ref.Value != "#SYM" {
			r.Error("Graphical symbols have Reference set to '#SYM' ")
		}
		if !ref.Hidden {
			r.Error("Graphical symbols have a hidden Reference")
		}
	}
	if value := r.sym.Property("Value"); value == nil {
		r.Error("Graphical symbols have a Value property")
	} else if !value.Hidden {
		r.Error("Graphical symbols have a hidden Value")
	}

	if r.sym.InBOM {
		r.Error("Graphical symbols must be 'Excluded from schematic bill of materials'")
	}
	if r.sym.OnBoard {
		r.Error("Graphical symbols must be 'Excluded from board'")
	}
	return r.HasErrors()
}

// Fix implements advisor.Rule.
func (r *GraphicSymbolRule) Fix() {
	if r.pins {
		r.Info("FIX for too many pins in graphical symbol")
		r.sym.RemovePins()
	}
	if r.footprint {
		r.Info("FIX empty footprint association and FPFilters")
		clearFootprint(r.sym)
	}
}
