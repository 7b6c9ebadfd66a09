package symbol

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S4.1", "General pin requirements", func(ctx *advisor.Context) advisor.Rule {
		return &PinsRule{sym: ctx.Symbol}
	})
}

// PinsRule checks pin grid, pin length and duplicate pin numbers. Small
// symbols use a 50 mil grid and shorter pins.
type PinsRule struct {
	advisor.Base
	sym *symbol.Symbol
}

type pinLimits struct {
	grid, errorLength, warningLength int
}

var (
	standardPins = pinLimits{grid: 100, errorLength: 49, warningLength: 99}
	smallPins    = pinLimits{grid: 50, errorLength: 24, warningLength: 49}
)

const maxPinLength = 300

// Check implements advisor.Rule.
func (r *PinsRule) Check() bool {
	r.Begin()
	limits := standardPins
	if r.sym.IsSmallHeuristic() {
		limits = smallPins
	}
	r.checkGrid(limits.grid)
	r.checkLength(limits)
	r.checkDuplicates()
	return r.HasErrors()
}

func (r *PinsRule) checkGrid(grid int) {
	first := true
	for _, p := range r.sym.Pins {
		x, y := mil(p.Pos.X), mil(p.Pos.Y)
		if x%grid == 0 && y%grid == 0 {
			continue
		}
		if first {
			r.Errorf("Pins not located on %dmil (=%.3gmm) grid:", grid, float64(grid)*0.0254)
			first = false
		}
		r.Errorf(" - %s ", pinString(p))
	}
}

func (r *PinsRule) checkLength(limits pinLimits) {
	for _, p := range r.sym.Pins {
		length := mil(p.Length)
		// zero length pins are hidden power pins
		if length == 0 {
			continue
		}
		if length <= limits.errorLength {
			r.Errorf("%s length (%dmils) is below %dmils", pinString(p), length, limits.errorLength+1)
		} else if length <= limits.warningLength {
			r.Warningf("%s length (%dmils) is below %dmils", pinString(p), length, limits.warningLength+1)
		}
		if length%50 != 0 {
			r.Warningf("%s length (%dmils) is not a multiple of 50mils", pinString(p), length)
		}
		if length > maxPinLength {
			r.Errorf("%s length (%dmils) is longer than maximum (%dmils)", pinString(p), length, maxPinLength)
		}
	}
}

func (r *PinsRule) checkDuplicates() {
	type identity struct {
		number   string
		unit, dm int
	}
	seen := make(map[identity]bool, len(r.sym.Pins))
	for _, p := range r.sym.Pins {
		id := identity{p.Number, p.Unit, p.DeMorgan}
		if seen[id] {
			r.Errorf("Pin %s is duplicated:", p.Number)
			r.ErrorExtra(pinString(p))
		}
		seen[id] = true
	}
}
