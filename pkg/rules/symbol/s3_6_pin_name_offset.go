package symbol

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S3.6", "Pin name position offset", func(ctx *advisor.Context) advisor.Rule {
		return &PinNameOffsetRule{sym: ctx.Symbol}
	})
}

// PinNameOffsetRule checks the pin name offset. An offset of zero puts the
// names outside the body and is always fine.
type PinNameOffsetRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *PinNameOffsetRule) Check() bool {
	r.Begin()
	offset := mil(r.sym.PinNamesOffset)
	switch {
	case r.sym.PinNamesHidden, offset == 0:
	case offset > 50:
		r.Error("Pin offset outside allowed range")
		r.ErrorExtra("Pin offset (" + itoa(offset) + ") must not be above 50mils")
	case offset < 20:
		r.Warning("Pin offset outside allowed range")
		r.WarningExtra("Pin offset (" + itoa(offset) + ") should not be below 20mils")
	case offset > 20:
		r.Warning("Pin offset not preferred value")
		r.WarningExtra("Pin offset (" + itoa(offset) + ") should be 20mils unless required by symbol geometry")
	}
	return r.HasErrors()
}

// Fix sets the offset to 20 mil.
func (r *PinNameOffsetRule) Fix() {
	r.Info("Fixing, assuming typical symbol geometry...")
	r.sym.PinNamesOffset = geometry.MilToMM(20)
}
