package symbol

import (
	"regexp"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S5.2", "Footprint filters should match all appropriate footprints", func(ctx *advisor.Context) advisor.Rule {
		return &FootprintFilterRule{sym: ctx.Symbol}
	})
}

// filterPinCount spots package names followed by a pin count, e.g. SOIC-8*.
var filterPinCount = regexp.MustCompile(`(?i)(SOIC|SOIJ|SIP|DIP|SO|SOT-\d+|SOT\d+|QFN|DFN|QFP|SOP|TO-\d+|VSO|PGA|BGA|LLC|LGA)-\d+[W-_*?$]+`)

// FootprintFilterRule checks the footprint filter patterns.
type FootprintFilterRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *FootprintFilterRule) Check() bool {
	r.Begin()
	filters := r.sym.FootprintFilters()
	if len(filters) == 0 && !r.sym.IsGraphic() && !r.sym.IsPower() {
		r.Warning("No footprint filters defined")
	}

	for _, filter := range filters {
		var problems []string
		if !strings.Contains(filter, "*") {
			problems = append(problems, "Does not contain wildcard ('*') character")
		} else if !strings.HasSuffix(filter, "*") {
			problems = append(problems, "Does not end with ('*') character")
		}
		if strings.Count(filter, ":") > 1 {
			problems = append(problems, "Filter should not contain more than one (':') character")
		}
		if len(problems) > 0 {
			r.Errorf("Footprint filter '%s' not correctly formatted", filter)
			for _, p := range problems {
				r.ErrorExtra(p)
			}
		}

		if filterPinCount.MatchString(filter) {
			r.Warningf("Footprint filter '%s' seems to contain pin-number, but should not!", filter)
		}
		if strings.ContainsAny(filter, "-_") {
			r.Warningf("Minuses and underscores in footprint filter '%s' should be escaped with '?' or '*'.", filter)
		}
	}
	return r.HasErrors()
}
