package symbol

import (
	"fmt"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S3.1", "Origin is centered on the middle of the symbol", func(ctx *advisor.Context) advisor.Rule {
		return &CenteringRule{sym: ctx.Symbol}
	})
}

// CenteringRule requires every unit to be centered on the origin. The center
// is taken from the body outline, or from the pin extents when there is none.
type CenteringRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *CenteringRule) Check() bool {
	r.Begin()
	for unit := 1; unit <= r.sym.UnitCount; unit++ {
		center, ok := r.unitCenter(unit)
		if !ok {
			continue
		}

		x, y := mil(center.X), mil(center.Y)
		switch {
		case x == 0 && y == 0:
		case abs(x) <= 50 && abs(y) <= 50:
			r.Warningf("Symbol unit %d slightly off-center", unit)
			r.WarningExtra(centerString(x, y))
		default:
			r.Errorf("Symbol unit %d not centered on origin", unit)
			r.ErrorExtra(centerString(x, y))
		}
	}
	return r.HasErrors()
}

func (r *CenteringRule) unitCenter(unit int) (geometry.Point, bool) {
	if outline := r.sym.CenterRectangle(0, unit); outline != nil {
		return outline.Box.Center(), true
	}
	var box geometry.BoundingBox
	for _, p := range r.sym.Pins {
		if p.Unit == unit || p.Unit == 0 {
			box.AddPoint(p.Pos)
		}
	}
	if !box.Valid {
		return geometry.Point{}, false
	}
	return box.Center(), true
}

func centerString(x, y int) string {
	return fmt.Sprintf("Center calculated @ (%d, %d)", x, y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
