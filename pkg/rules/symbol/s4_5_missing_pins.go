package symbol

import (
	"strconv"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S4.5", "Pins not connected on the footprint may be omitted from the symbol", func(ctx *advisor.Context) advisor.Rule {
		return &MissingPinsRule{sym: ctx.Symbol}
	})
}

// MissingPinsRule warns about gaps in the numeric pin sequence.
type MissingPinsRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *MissingPinsRule) Check() bool {
	r.Begin()
	present := make(map[int]bool)
	highest := 0
	for _, p := range r.sym.Pins {
		if n, ok := p.NumberInt(); ok {
			present[n] = true
			if n > highest {
				highest = n
			}
		}
	}

	var missing []string
	for i := 1; i <= highest; i++ {
		if !present[i] {
			missing = append(missing, strconv.Itoa(i))
		}
	}
	if len(missing) > 0 {
		r.Warningf("Pin%s %s %s missing.", plural(len(missing), "", "s"), strings.Join(missing, ", "), plural(len(missing), "is", "are"))
	}
	return false
}
