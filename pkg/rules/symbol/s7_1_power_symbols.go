package symbol

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S7.1", "Power flag symbols", func(ctx *advisor.Context) advisor.Rule {
		return &PowerSymbolRule{sym: ctx.Symbol}
	})
}

// PowerSymbolRule checks power flags: one hidden power input pin named like
// the symbol, no footprint and the #PWR reference.
type PowerSymbolRule struct {
	advisor.Base
	sym *symbol.Symbol

	tooManyPins, pinType, pinHidden, pinName, footprint, reference bool
}

// Check implements advisor.Rule.
func (r *PowerSymbolRule) Check() bool {
	r.Begin()
	r.tooManyPins, r.pinType, r.pinHidden, r.pinName, r.footprint, r.reference = false, false, false, false, false, false
	if !r.sym.IsPower() {
		return false
	}

	if len(r.sym.Pins) != 1 {
		r.Error("Power-flag symbols have exactly one pin")
		r.tooManyPins = true
		return true
	}

	pin := r.sym.Pins[0]
	if pin.Etype != symbol.PinPowerIn {
		r.Error("The pin in power-flag symbols has to be of a POWER-INPUT")
		r.pinType = true
	}
	if !pin.Hidden {
		r.Error("The pin in power-flag symbols has to be INVISIBLE")
		r.pinHidden = true
	}
	if pin.Name != r.sym.Name && "~"+pin.Name != r.sym.Name {
		r.Errorf("The pin name (%s) in power-flag symbols has to be the same as the component name (%s)", pin.Name, r.sym.Name)
		r.pinName = true
	}
	if fp := r.sym.PropertyValue("Footprint"); fp != "" {
		r.Errorf("Power symbols have no footprint association (footprint is set to '%s')", fp)
		r.footprint = true
	}
	if ref := r.sym.Property("Reference"); ref == nil || ref.Value != "#PWR" {
		r.Error("Power symbols have Reference set to '#PWR' ")
		r.reference = true
	}
	if len(r.sym.FootprintFilters()) > 0 {
		r.Error("Graphical symbols have no footprint filters")
		r.footprint = true
	}
	return r.HasErrors()
}

// Fix implements advisor.Rule.
func (r *PowerSymbolRule) Fix() {
	if r.tooManyPins {
		r.Info("FIX for too many pins in power-symbol not supported")
		return
	}
	pin := r.sym.Pins[0]
	if r.pinType {
		r.Info("FIX: switching pin-type to power-input")
		pin.Etype = symbol.PinPowerIn
	}
	if r.pinHidden {
		r.Info("FIX: making pin invisible")
		pin.Hidden = true
	}
	if r.pinName {
		name := r.sym.Name
		if name[0] == '~' {
			name = name[1:]
		}
		r.Info("FIX: change pin name to '" + name + "'")
		pin.Name = name
	}
	if r.footprint {
		r.Info("FIX empty footprint association and FPFilters")
		clearFootprint(r.sym)
	}
	if r.reference {
		r.Info("FIX: set Reference to '#PWR'")
		r.sym.SetProperty("Reference", "#PWR")
	}
}

// clearFootprint empties the footprint link and filters that exist.
func clearFootprint(s *symbol.Symbol) {
	for _, name := range []string{"Footprint", "ki_fp_filters"} {
		if p := s.Property(name); p != nil {
			p.Value = ""
		}
	}
}
