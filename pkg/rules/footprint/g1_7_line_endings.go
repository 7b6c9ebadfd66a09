package footprint

import (
	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "G1.7", "Library files must use Unix-style line endings (LF)", func(ctx *advisor.Context) advisor.Rule {
		return &LineEndingsRule{fp: ctx.Footprint}
	})
}

// LineEndingsRule rejects files containing carriage returns.
type LineEndingsRule struct {
	advisor.Base
	fp *footprint.Footprint
}

// Check implements advisor.Rule.
func (r *LineEndingsRule) Check() bool {
	r.Begin()
	if !r.fp.HasCR {
		return false
	}
	r.Error("Incorrect line endings")
	r.ErrorExtra("Library files must use Unix-style line endings (LF)")
	return true
}

// Fix relies on the writer, which always emits LF.
func (r *LineEndingsRule) Fix() {
	r.fp.HasCR = false
	r.Success("Line endings will be corrected on save")
}
