package symbol

import (
	"strings"
	"unicode"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "EC03", "Pin names should only contain ascii chars", func(ctx *advisor.Context) advisor.Rule {
		return &PinNamesASCIIRule{sym: ctx.Symbol}
	})
}

// PinNamesASCIIRule warns about pin names outside ASCII. It is not a written
// convention and never fails a symbol.
type PinNamesASCIIRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *PinNamesASCIIRule) Check() bool {
	r.Begin()
	var names []string
	for _, p := range r.sym.Pins {
		if !isASCII(p.Name) {
			names = append(names, pinString(p))
		}
	}
	if len(names) > 0 {
		r.Warningf("%s %s non ascii chars", strings.Join(names, ", "), plural(len(names), "contains", "contain"))
	}
	return false
}

func isASCII(s string) bool {
	for _, c := range s {
		if c > unicode.MaxASCII {
			return false
		}
	}
	return true
}
