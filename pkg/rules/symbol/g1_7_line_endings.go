package symbol

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "G1.7", "Library files must use Unix-style line endings (LF)", func(ctx *advisor.Context) advisor.Rule {
		return &LineEndingsRule{sym: ctx.Symbol}
	})
}

// LineEndingsRule rejects libraries saved with CR or CRLF line endings.
type LineEndingsRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *LineEndingsRule) Check() bool {
	r.Begin()
	lib := r.sym.Library()
	if lib == nil || !lib.HasCR {
		return false
	}
	r.Error("Incorrect line endings (.kicad_sym)")
	r.ErrorExtra("Library files must use Unix-style line endings (LF)")
	return true
}

// Fix implements advisor.Rule. Saving always writes LF.
func (r *LineEndingsRule) Fix() {
	if lib := r.sym.Library(); lib != nil {
		lib.HasCR = false
	}
	r.Success("Line endings will be corrected on save")
}
