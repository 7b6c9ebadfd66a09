package symbol

import (
	"regexp"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S4.2", "Pins should be grouped by function", func(ctx *advisor.Context) advisor.Rule {
		return &PinGroupingRule{sym: ctx.Symbol}
	})
}

var (
	// ground and negative supply pins
	groundPinNames = compileAll(`^[ad]*g(rou)*nd(a)*$`, `^[ad]*v(ss)$`)
	// positive supply pins
	supplyPinNames = compileAll(`^[ad]*v(aa|cc|dd|bat|in)$`)
)

// PinGroupingRule wants ground pins at the bottom and supply pins at the top
// of the body. It only warns.
type PinGroupingRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *PinGroupingRule) Check() bool {
	r.Begin()
	if r.sym.IsPower() {
		return false
	}
	r.checkPlacement(groundPinNames, "U", "Ground and negative power pins should be placed at bottom of symbol")
	r.checkPlacement(supplyPinNames, "D", "Positive power pins should be placed at top of symbol")
	return r.HasErrors()
}

func (r *PinGroupingRule) checkPlacement(names []*regexp.Regexp, direction, msg string) {
	first := true
	for _, p := range r.sym.Pins {
		if !matchAny(names, strings.ToLower(p.Name)) || p.Direction() == direction {
			continue
		}
		if first {
			r.Warning(msg)
			first = false
		}
		r.WarningExtra(pinString(p))
	}
}
