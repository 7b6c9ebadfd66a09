package symbol

import (
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "G1.1", "Only standard characters are used for naming libraries and components", func(ctx *advisor.Context) advisor.Rule {
		return &NamingRule{sym: ctx.Symbol}
	})
}

// NamingRule allows letters, digits and "_-.+," in symbol names. Power and
// graphic symbols may start with '~' or '#'.
type NamingRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *NamingRule) Check() bool {
	r.Begin()
	var illegal strings.Builder
	for i, c := range strings.ToLower(r.sym.Name) {
		if legalNameChar(c) || (i == 0 && (c == '~' || c == '#')) {
			continue
		}
		illegal.WriteRune(c)
	}
	if illegal.Len() == 0 {
		return false
	}
	r.Error("Symbol name must contain only legal characters")
	r.ErrorExtraf("Name '%s' contains illegal characters '%s'", r.sym.Name, illegal.String())
	return true
}

func legalNameChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	return strings.ContainsRune("_-.+,", c)
}
