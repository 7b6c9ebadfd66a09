package symbol

import (
	"math"
	"strconv"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S4.3", "Rules for pin stacking", func(ctx *advisor.Context) advisor.Rule {
		return &PinStackRule{sym: ctx.Symbol}
	})
}

// specialStackTypes may share a stack with pins of another type.
var specialStackTypes = map[string]bool{
	symbol.PinPowerIn:  true,
	symbol.PinPowerOut: true,
	symbol.PinOutput:   true,
}

// PinStackRule checks pins drawn on top of each other. A stack shares one
// name and one type and shows exactly one pin, the lowest numbered. Power
// stacks may mix one driving pin with hidden passive pins.
type PinStackRule struct {
	advisor.Base
	sym *symbol.Symbol

	// stacks already warned about their visible pin
	notLowest map[*symbol.PinStack]bool
}

// Check implements advisor.Rule.
func (r *PinStackRule) Check() bool {
	r.Begin()
	r.notLowest = make(map[*symbol.PinStack]bool)

	var power []*symbol.PinStack
	for _, st := range r.sym.PinStacks() {
		if len(st.Pins) < 2 {
			continue
		}
		if r.checkStack(st) {
			power = append(power, st)
		}
	}
	for _, st := range power {
		r.checkPowerStack(st)
	}
	return r.HasErrors()
}

// checkStack reports plain stack violations and whether the stack mixes
// types in a way only a power stack may.
func (r *PinStackRule) checkStack(st *symbol.PinStack) bool {
	first := st.Pins[0]
	lowest := lowestNumber(st.Pins)

	var visible []*symbol.Pin
	nonNumeric, names, etypes, power := false, false, false, false
	for _, p := range st.Pins {
		if _, ok := p.NumberInt(); !ok && !nonNumeric {
			r.Warningf("Found non-numeric pin in a pinstack: %s", pinString(p))
			nonNumeric = true
		}

		if p.Etype == symbol.PinNoConnect {
			r.Errorf("NC %s (x=%s, y=%s) is stacked on other pins", pinString(p), mm(p.Pos.X), mm(p.Pos.Y))
		}

		if p.Name != first.Name && !names {
			r.Error("Pin names in the stack have different names")
			for _, q := range st.Pins {
				r.ErrorExtra(pinString(q))
			}
			names = true
		}

		if !p.Hidden {
			visible = append(visible, p)
			r.checkLowest(st, p, lowest)
		}

		if p.Etype != first.Etype {
			if specialStackTypes[p.Etype] || specialStackTypes[first.Etype] {
				power = true
			} else if !etypes {
				r.Error("Pin names in the stack have different electrical types")
				for _, q := range st.Pins {
					r.ErrorExtraf("%s is of type %s", pinString(q), q.Etype)
				}
				etypes = true
			}
		}
	}

	if len(visible) > 1 && !power {
		r.Error("A pin stack must have exactly one (1) visible pin")
		for _, p := range visible {
			r.ErrorExtra(pinString(p) + " is visible")
		}
	}
	return power
}

// checkPowerStack accepts one output, power output or power input pin over
// hidden passive pins, or a stack made only of outputs or power outputs.
func (r *PinStackRule) checkPowerStack(st *symbol.PinStack) {
	count := make(map[string]int)
	for _, p := range st.Pins {
		count[p.Etype]++
	}
	total := len(st.Pins)
	others := total - count[symbol.PinPowerIn] - count[symbol.PinPowerOut] - count[symbol.PinOutput] - count[symbol.PinPassive]
	lowest := lowestNumber(st.Pins)

	switch {
	case count[symbol.PinPassive] == total-1 &&
		(count[symbol.PinPowerIn] == 1 || count[symbol.PinPowerOut] == 1 || count[symbol.PinOutput] == 1):
		var shown []*symbol.Pin
		for _, p := range st.Pins {
			if p.Etype == symbol.PinPassive && !p.Hidden {
				shown = append(shown, p)
			}
		}
		if len(shown) > 0 {
			r.Error("Passive pins in a pinstack are hidden")
			for _, p := range shown {
				r.ErrorExtraf("%s is of type %s and visible", pinString(p), p.Etype)
			}
		}
		for _, p := range st.Pins {
			if p.Etype == symbol.PinPassive {
				continue
			}
			if p.Hidden {
				r.Error("Non passive pins in a pinstack are visible")
				r.ErrorExtraf("%s is of type %s and invisible", pinString(p), p.Etype)
			}
			r.checkLowest(st, p, lowest)
			break
		}

	case count[symbol.PinOutput] == total || count[symbol.PinPowerOut] == total:
		var shown []*symbol.Pin
		for _, p := range st.Pins {
			if !p.Hidden {
				shown = append(shown, p)
			}
		}
		if len(shown) > 1 {
			r.Error("Only one pin in a pinstack is visible")
			for _, p := range shown {
				r.ErrorExtra(pinString(p) + " is visible")
			}
		}

	default:
		r.Errorf("Illegal pin stack configuration next to %s", pinString(st.Pins[0]))
		r.ErrorExtraf("Power input pins: %d", count[symbol.PinPowerIn])
		r.ErrorExtraf("Power output pins: %d", count[symbol.PinPowerOut])
		r.ErrorExtraf("Output pins: %d", count[symbol.PinOutput])
		r.ErrorExtraf("Passive pins: %d", count[symbol.PinPassive])
		r.ErrorExtraf("Other type pins: %d", others)
	}
}

func (r *PinStackRule) checkLowest(st *symbol.PinStack, p *symbol.Pin, lowest int) {
	n, ok := p.NumberInt()
	if !ok || n == lowest || r.notLowest[st] {
		return
	}
	r.Warning("The pin with the lowest number in a pinstack should be visible")
	r.WarningExtra(pinString(p) + " is visible, the lowest number in this stack is " + strconv.Itoa(lowest))
	r.notLowest[st] = true
}

func lowestNumber(pins []*symbol.Pin) int {
	lowest := math.MaxInt
	for _, p := range pins {
		if n, ok := p.NumberInt(); ok && n < lowest {
			lowest = n
		}
	}
	return lowest
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
