package symbol

import (
	"regexp"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S4.4", "Pin electrical type should match pin function", func(ctx *advisor.Context) advisor.Rule {
		return &PinTypeRule{sym: ctx.Symbol}
	})
}

var powerInputNames = compileAll(`^[ad]*g(rou)*nd(a)*$`, `^[ad]*v(aa|cc|dd|ss|bat|in)$`)

// pinSuggestions map a pin type to the names that suggest it, in the order
// they are tried.
var pinSuggestions = []struct {
	etype string
	names []*regexp.Regexp
}{
	{symbol.PinPowerOut, compileAll(`^vout$`)},
	{symbol.PinInput, compileAll(`^sdi$`, `^cl(oc)*k(in)*$`, `^~*cs~*$`, `^[av]ref$`)},
	{symbol.PinOutput, compileAll(`^sdo$`, `^cl(oc)*kout$`)},
	{symbol.PinBidirectional, compileAll(`^sda$`, `^s*dio$`)},
}

var overlined = regexp.MustCompile(`~\{(.+)\}`)

// PinTypeRule requires supply pins to be power inputs and forbids inverted
// pins with an overlined name. Other name based type hints are warnings.
type PinTypeRule struct {
	advisor.Base
	sym *symbol.Symbol

	powerErrors     []*symbol.Pin
	inversionErrors []*symbol.Pin
}

// Check implements advisor.Rule.
func (r *PinTypeRule) Check() bool {
	r.Begin()
	r.checkPowerPins()
	r.checkDoubleInversions()
	r.checkSuggestions()
	return r.HasErrors()
}

func (r *PinTypeRule) checkPowerPins() {
	r.powerErrors = nil
	for _, st := range r.sym.PinStacks() {
		var visible, hidden []*symbol.Pin
		for _, p := range st.Pins {
			if p.Hidden {
				hidden = append(hidden, p)
			} else {
				visible = append(visible, p)
			}
		}

		// stacks show at most one pin, hidden stacks are checked in full
		checked := hidden
		if len(visible) > 0 {
			checked = visible[:1]
		}
		for _, p := range checked {
			if !matchAny(powerInputNames, strings.ToLower(p.Name)) || p.Etype == symbol.PinPowerIn {
				continue
			}
			if len(r.powerErrors) == 0 {
				r.Error("Power pins should be of type POWER INPUT")
			}
			r.powerErrors = append(r.powerErrors, p)
			r.ErrorExtraf("%s is of type %s", pinString(p), p.Etype)
		}

		if len(st.Pins) < 2 || len(visible) == 0 || visible[0].Etype != symbol.PinPowerIn {
			continue
		}
		for _, p := range hidden {
			if p.Etype != symbol.PinPassive {
				r.Error("Invisible powerpins in stacks should be of type PASSIVE")
				r.ErrorExtraf("%s is of type %s", pinString(p), p.Etype)
				break
			}
		}
	}
}

func (r *PinTypeRule) checkDoubleInversions() {
	r.inversionErrors = nil
	for _, p := range r.sym.Pins {
		if p.Shape != "inverted" || !overlined.MatchString(p.Name) {
			continue
		}
		if len(r.inversionErrors) == 0 {
			r.Error("Pins should not be inverted twice (with inversion-symbol on pin and overline on label)")
		}
		r.inversionErrors = append(r.inversionErrors, p)
		r.ErrorExtra(pinString(p) + " : double inversion (overline + pin type:Inverting)")
	}
}

func (r *PinTypeRule) checkSuggestions() {
	first := true
	for _, p := range r.sym.Pins {
		name := strings.ToLower(p.Name)
		for _, s := range pinSuggestions {
			if !matchAny(s.names, name) {
				continue
			}
			if s.etype != p.Etype {
				if first {
					r.Warning("Pin types should match pin function")
					first = false
				}
				r.WarningExtraf("%s is type %s : suggested %s", pinString(p), p.Etype, s.etype)
			}
			break
		}
	}
}

// Fix turns supply pins into power inputs and drops the pin inversion where
// the name is already overlined.
func (r *PinTypeRule) Fix() {
	for _, p := range r.powerErrors {
		r.Infof("Changing pin %s type to POWER_INPUT", p.Number)
		p.Etype = symbol.PinPowerIn
	}
	for _, p := range r.inversionErrors {
		r.Infof("Removing double inversion on pin %s", p.Number)
		p.Shape = "line"
	}
}
