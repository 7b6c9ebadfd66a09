package symbol

import (
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindSymbol, "S5.1", "Symbols with a default footprint link to a valid footprint file", func(ctx *advisor.Context) advisor.Rule {
		return &FootprintFieldRule{sym: ctx.Symbol}
	})
}

const prettySuffix = ".pretty"

// FootprintFieldRule checks the default footprint link: format, legal
// names, existence when a footprint directory is known, and agreement with
// the footprint filters.
type FootprintFieldRule struct {
	advisor.Base
	sym *symbol.Symbol
}

// Check implements advisor.Rule.
func (r *FootprintFieldRule) Check() bool {
	r.Begin()
	field := r.sym.Property("Footprint")
	if field == nil {
		return false
	}
	name := strings.Trim(field.Value, `"`)
	filters := r.sym.FootprintFilters()

	if name == "" {
		if len(filters) == 1 {
			r.Warning("Symbol possibly missing default footprint")
			r.WarningExtraf("Symbol has a single footprint filter string '%s' (i.e. it may be intended for a single default footprint only), but the footprint field is empty.", filters[0])
		}
		return r.HasErrors()
	}

	desc := "Footprint field '" + name + "' "
	if !field.Hidden {
		r.Error(desc + "must be set to invisible.")
	}

	if strings.Count(name, ":") != 1 || strings.HasPrefix(name, ":") || strings.HasSuffix(name, ":") {
		r.Error(desc + "must be of the format '<Library>:<Footprint>'")
	} else {
		lib, fp, _ := strings.Cut(name, ":")
		r.checkLink(lib, fp)
		r.checkFilters(name, fp, filters)
	}

	switch {
	case len(filters) == 0:
		r.Error("Symbol has a footprint defined in the footprint field, but no footprint filter set. Add a footprint filter that matches the default footprint (+ possibly variants).")
	case len(filters) > 1:
		r.Error("Symbol has a footprint defined in the footprint field, but several (" + strconv.Itoa(len(filters)) + ") footprint filters set. If the symbol is for a single default footprint, remove the surplus filters. If the symbol is meant for multiple different footprints, empty the footprint field.")
	}
	return r.HasErrors()
}

func (r *FootprintFieldRule) checkLink(lib, fp string) {
	valid := true
	if !advisor.ValidName(lib, false) {
		r.Errorf("Footprint library '%s' contains illegal characters", lib)
		valid = false
	}
	if !advisor.ValidName(fp, false) {
		r.Errorf("Footprint name '%s' contains illegal characters", fp)
		valid = false
	}

	dir := r.Options().FootprintsDir
	if dir == "" {
		r.Warning("footprint existence is not going to be checked if --footprints is not specified")
		return
	}
	if !valid || r.HasErrors() {
		return
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		r.Errorf("'%s' doesn't exist, check --footprints arg", dir)
		return
	}
	libDir := filepath.Join(dir, lib+prettySuffix)
	if info, err := os.Stat(libDir); err != nil || !info.IsDir() {
		r.Error("Specified footprint library does not exist")
		r.ErrorExtraf("Footprint library '%s' was not found", lib)
		return
	}
	if _, err := os.Stat(filepath.Join(libDir, fp+footprint.Extension)); err != nil {
		r.Error("Specified footprint does not exist")
		r.ErrorExtraf("Footprint file %s:%s was not found", lib, fp)
	}
}

func (r *FootprintFieldRule) checkFilters(name, fp string, filters []string) {
	for _, filter := range filters {
		if globMatch(filter, fp) || globMatch(filter, name) {
			continue
		}
		r.Errorf("Footprint filter '%s' does not match the footprint '%s' set for this symbol.", filter, name)
		r.ErrorExtraf("could not match '%s' against filter '%s'", fp, filter)
		r.ErrorExtraf("could not match '%s' against filter '%s'", name, filter)
	}
}

// globMatch matches shell style patterns; a malformed pattern matches
// nothing.
func globMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
