// Package symbol holds the library convention rules for .kicad_sym files.
// Rules register from init functions like the footprint rules do; the
// reviewer decides which of them run on derived symbols.
package symbol

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
)

// Sizes required by the convention, in mils.
const (
	TextSizeMil     = 50
	OutlineWidthMil = 10
	PinNameMinMil   = 20
	PinNameMaxMil   = 50
)

func mil(mm float64) int {
	return geometry.MMToMil(mm)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func pinString(p *symbol.Pin) string {
	return symbol.PinString(p, true)
}

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

// units lists 0 (shared) up to but not including n.
func units(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
