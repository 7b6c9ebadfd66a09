package advisor

import (
	"fmt"
	"strings"
)

// KLCBaseURL is the root of the published library convention.
const KLCBaseURL = "https://klc.kicad.org"

var sections = map[string]string{
	"F": "footprint",
	"S": "symbol",
	"G": "general",
	"M": "model",
}

// RuleURL links a rule id to its page, e.g. F5.1 maps to
// https://klc.kicad.org/footprint/f5/f5.1/. Extra checks (EC..) have no page
// of their own.
func RuleURL(id string) string {
	prefix, nums := splitID(id)
	section, ok := sections[prefix]
	if !ok || len(nums) < 2 {
		return KLCBaseURL + "/"
	}
	lower := strings.ToLower(id)
	return fmt.Sprintf("%s/%s/%s%d/%s/", KLCBaseURL, section, strings.ToLower(prefix), nums[0], lower)
}

// IllegalNameChars may never appear in symbol or footprint names.
var IllegalNameChars = []string{"*", "?", ":", "/", "\\", "[", "]", ";", "|", "=", ","}

// ValidName reports whether name is usable as a library entity name. A
// leading '~' or '#' is only allowed when special is set (power and graphic
// symbols).
func ValidName(name string, special bool) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "~") || strings.HasPrefix(name, "#") {
		if !special {
			return false
		}
		name = name[1:]
	}
	for _, c := range IllegalNameChars {
		if strings.Contains(name, c) {
			return false
		}
	}
	return true
}
