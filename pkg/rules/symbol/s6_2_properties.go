package symbol

import (
	"regexp"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S6.2", "Symbol fields and metadata filled out as required", func(ctx *advisor.Context) advisor.Rule {
		return &PropertiesRule{sym: ctx.Symbol}
	})
}

// forbiddenKeywordChars allows "3.3V" but not "foo. bar" or a trailing dot.
var forbiddenKeywordChars = regexp.MustCompile(`\.\W|\.$|[,:;?!<>]`)

var datasheetPrefixes = []string{"http", "www", "ftp"}

// PropertiesRule checks the mandatory fields: visibility of Reference,
// Value, Footprint and Datasheet, the value matching the symbol name, and
// the description and keywords.
type PropertiesRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *PropertiesRule) Check() bool {
	r.Begin()
	r.checkReference()
	r.checkValue()
	r.checkFootprint()
	r.checkDatasheet()
	r.checkDescription()
	r.checkKeywords()
	return r.HasErrors()
}

// special symbols are power flags and drawings without a real part.
func (r *PropertiesRule) special() bool {
	return r.sym.IsGraphic() || r.sym.IsPower()
}

func (r *PropertiesRule) checkReference() {
	ref := r.sym.Property("Reference")
	if ref == nil {
		r.Error("Component is missing Reference field")
		return
	}
	if !r.special() && ref.Hidden {
		r.Error("Reference field must be VISIBLE")
	} else if r.special() && !ref.Hidden {
		r.Error("Reference field must be INVISIBLE in graphic symbols or power-symbols")
	}
}

func (r *PropertiesRule) checkValue() {
	prop := r.sym.Property("Value")
	if prop == nil {
		r.Error("Component is missing Value field")
		return
	}
	value := strings.Trim(prop.Value, `"`)

	if !r.special() {
		if value != r.sym.Name {
			r.Errorf("Value %s does not match component name.", value)
		}
		if prop.Hidden {
			r.Error("Value field must be VISIBLE")
		}
	} else if value != r.sym.Name && "~"+value != r.sym.Name {
		r.Errorf("Value %s does not match component name.", value)
	}

	if !advisor.ValidName(r.sym.Name, r.special()) {
		r.Errorf("Symbol name '%s' contains invalid characters as per KLC 1.7", r.sym.Name)
	}
}

func (r *PropertiesRule) checkFootprint() {
	prop := r.sym.Property("Footprint")
	if prop == nil {
		r.Error("Component is missing Footprint field")
		return
	}
	if !prop.Hidden {
		r.Error("Footprint field must be INVISIBLE")
	}
}

func (r *PropertiesRule) checkDatasheet() {
	ds := r.sym.Property("Datasheet")
	if ds == nil {
		r.Error("Component is missing Datasheet field")
		return
	}
	if !ds.Hidden {
		r.Error("Datasheet field must be INVISIBLE")
	}
	if r.special() {
		return
	}
	if ds.Value == "" {
		r.Error("Datasheet field must not be EMPTY")
		return
	}
	if len(ds.Value) > 2 && !looksLikeURL(ds.Value) {
		r.Warningf("Datasheet entry '%s' does not look like a URL", ds.Value)
	}
}

func looksLikeURL(s string) bool {
	for _, prefix := range datasheetPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return strings.HasSuffix(s, ".pdf") || strings.Contains(s, ".htm")
}

func (r *PropertiesRule) checkDescription() {
	desc := r.sym.Description()
	if desc == nil {
		if !r.sym.IsPower() {
			r.Error("Missing Description field on 'Properties' tab")
		}
		return
	}
	if strings.Contains(strings.ToLower(desc.Value), strings.ToLower(r.sym.Name)) {
		r.Warning("Symbol name should not be included in description")
	}
}

func (r *PropertiesRule) checkKeywords() {
	kw := r.sym.Keywords()
	if kw == nil {
		if !r.sym.IsPower() {
			r.Error("Missing Keywords field on 'Properties' tab")
		}
		return
	}
	if found := forbiddenKeywordChars.FindAllString(kw.Value, -1); len(found) > 0 {
		r.Errorf("Symbol keywords contain forbidden characters: %s", quoteList(found))
	}
}
