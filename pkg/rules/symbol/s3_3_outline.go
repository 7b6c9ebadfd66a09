package symbol

import (
	"fmt"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S3.3", "Symbol outline and fill requirements", func(ctx *advisor.Context) advisor.Rule {
		return &OutlineRule{sym: ctx.Symbol}
	})
}

const smallSymbolException = "exceptions are allowed for small symbols like resistor, transistor, ..."

// OutlineRule checks the stroke width and fill of the body rectangle. Small
// symbols only get warnings.
type OutlineRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *OutlineRule) Check() bool {
	r.Begin()
	if r.sym.IsPower() || r.sym.IsGraphic() {
		return false
	}
	outline := r.sym.CenterRectangle(units(r.sym.UnitCount)...)
	if outline == nil {
		return false
	}
	small := r.sym.IsSmallHeuristic()

	if !isClose(outline.StrokeWidth, geometry.MilToMM(OutlineWidthMil)) {
		width := mil(outline.StrokeWidth)
		if small {
			r.Warningf("Component outline is thickness %dmil, recommended is %dmil for standard symbol", width, OutlineWidthMil)
			r.WarningExtra(smallSymbolException)
		} else {
			r.Errorf("Component outline is thickness %dmil, recommended is %dmil", width, OutlineWidthMil)
		}
	}

	if outline.Fill != "background" {
		msg := fmt.Sprintf("Component background is filled with %s color, recommended is filling with background color", outline.Fill)
		if small {
			r.Warning(msg)
			r.WarningExtra(smallSymbolException)
		} else {
			r.Error(msg)
		}
	}
	return r.HasErrors()
}
