package symbol

import (
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S4.6", "Hidden pins", func(ctx *advisor.Context) advisor.Rule {
		return &HiddenPinsRule{sym: ctx.Symbol}
	})
}

var noConnectNames = compileAll(`^nc$`, `^dnc$`, `^n\.c\.$`)

// HiddenPinsRule wants not connected pins typed no_connect and hidden, and
// power inputs visible outside power symbols.
type HiddenPinsRule struct {
	advisor.Base
	sym *symbol.Symbol

	visibleNC   []*symbol.Pin
	wrongType   []*symbol.Pin
	hiddenPower []*symbol.Pin
}

// Check implements advisor.Rule.
func (r *HiddenPinsRule) Check() bool {
	r.Begin()
	r.visibleNC, r.wrongType, r.hiddenPower = nil, nil, nil

	for _, p := range r.sym.Pins {
		if matchAny(noConnectNames, strings.ToLower(p.Name)) || p.Etype == symbol.PinNoConnect {
			if p.Etype != symbol.PinNoConnect {
				r.wrongType = append(r.wrongType, p)
			}
			if !p.Hidden {
				r.visibleNC = append(r.visibleNC, p)
			}
		}
		if !r.sym.IsPower() && p.Etype == symbol.PinPowerIn && p.Hidden {
			r.hiddenPower = append(r.hiddenPower, p)
		}
	}

	if len(r.wrongType) > 0 {
		r.Error("NC pins are not correct pin-type:")
		for _, p := range r.wrongType {
			r.ErrorExtraf("%s should be of type NOT CONNECTED, but is of type %s", pinString(p), p.Etype)
		}
	}
	if len(r.visibleNC) > 0 {
		r.Warning("NC pins are VISIBLE (should be INVISIBLE):")
		for _, p := range r.visibleNC {
			r.WarningExtra(pinString(p) + " should be INVISIBLE")
		}
	}
	if len(r.hiddenPower) > 0 {
		r.Error("Power input pins must not be invisible unless used in power symbols.")
		for _, p := range r.hiddenPower {
			r.ErrorExtra(pinString(p) + " is of type power_in and invisible")
		}
	}
	return r.HasErrors()
}

// Fix hides not connected pins and gives them the no_connect type.
func (r *HiddenPinsRule) Fix() {
	for _, p := range r.visibleNC {
		r.Infof("Setting pin %s to INVISIBLE", p.Number)
		p.Hidden = true
	}
	for _, p := range r.wrongType {
		r.Infof("Changing pin %s type to NO_CONNECT", p.Number)
		p.Etype = symbol.PinNoConnect
	}
}
