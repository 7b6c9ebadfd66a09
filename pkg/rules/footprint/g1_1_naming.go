package footprint

import (
	"regexp"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "G1.1", "Only standard characters are used for naming libraries and components", func(ctx *advisor.Context) advisor.Rule {
		return &NamingRule{fp: ctx.Footprint}
	})
}

var (
	legalName    = regexp.MustCompile(`^[a-zA-Z0-9_\-.,+]+$`)
	illegalChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.,+]+`)
)

// NamingRule restricts footprint names to letters, digits and "_-.,+".
type NamingRule struct {
	advisor.Base
	fp *footprint.Footprint
}

// Check implements advisor.Rule.
func (r *NamingRule) Check() bool {
	r.Begin()
	name := strings.ToLower(r.fp.Name)
	if legalName.MatchString(name) {
		return false
	}
	r.Error("Footprint name must contain only legal characters")
	r.ErrorExtra("Illegal character(s) '" + strings.Join(illegalChars.FindAllString(name, -1), "', '") + "' found")
	return true
}
