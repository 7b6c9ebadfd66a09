package advisor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// Options are the invocation options shared by every rule of one run.
type Options struct {
	Fix     bool
	FixMore bool
	// Verbosity is 0 (messages only), 1 (rule titles and detail lines) or 2
	// (also lists every rule checked).
	Verbosity int
	// FootprintsDir holds .pretty libraries used to resolve symbol footprints.
	FootprintsDir string
}

// Context binds a rule instance to the entity it checks.
type Context struct {
	Footprint *footprint.Footprint
	Symbol    *symbol.Symbol
	Options   Options
	Payload   map[string]interface{}
}

// Meta describes a registered rule.
type Meta struct {
	ID    string
	Kind  types.Kind
	Title string
}

// URL links the rule to its section of the library convention.
func (m Meta) URL() string {
	return RuleURL(m.ID)
}

// Factory builds a fresh rule instance bound to ctx.
type Factory func(ctx *Context) Rule

// Rule is the check/fix protocol every convention rule implements. Rules
// embed Base, which provides everything but Check.
type Rule interface {
	// Check inspects the bound entity and reports whether an error was raised.
	Check() bool
	// Fix repairs what the last Check found, when it can do so safely.
	Fix()
	// FixMore applies repairs that alter geometry and need explicit opt-in.
	FixMore()
	NeedsFixMore() bool
	// Recheck runs Check again after a fix and reports whether errors remain.
	Recheck() bool

	ID() string
	Title() string
	URL() string
	Messages() []types.Message
	Drain() []types.Message
	ErrorCount() int
	WarningCount() int
	HasErrors() bool
	HasOutput() bool
	Reset()

	base() *Base
}

type registration struct {
	meta    Meta
	factory Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[types.Kind]map[string]registration)
)

// Register makes a rule available under its id. It panics when called twice
// for the same id or with a nil factory.
func Register(kind types.Kind, id, title string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		panic("advisor: Register factory is nil")
	}
	rules, ok := registry[kind]
	if !ok {
		rules = make(map[string]registration)
		registry[kind] = rules
	}
	if _, dup := rules[id]; dup {
		panic(fmt.Sprintf("advisor: Register called twice for rule %v of %v", id, kind))
	}
	rules[id] = registration{meta: Meta{ID: id, Kind: kind, Title: title}, factory: f}
}

// Rules lists the registered rules of kind in id order.
func Rules(kind types.Kind) []Meta {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Meta, 0, len(registry[kind]))
	for _, r := range registry[kind] {
		out = append(out, r.meta)
	}
	sort.Slice(out, func(i, j int) bool { return CompareIDs(out[i].ID, out[j].ID) < 0 })
	return out
}

// Lookup returns the metadata of a registered rule.
func Lookup(kind types.Kind, id string) (Meta, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[kind][id]
	return r.meta, ok
}

// Select returns the ids to run: every registered rule, or only those in
// include when it is not empty, minus those in exclude. Unknown ids in
// include are an error.
func Select(kind types.Kind, include, exclude []string) ([]string, error) {
	all := Rules(kind)
	known := make(map[string]bool, len(all))
	for _, m := range all {
		known[m.ID] = true
	}
	wanted := make(map[string]bool, len(include))
	for _, id := range include {
		if !known[id] {
			return nil, errors.Errorf("advisor: unknown %s rule %q", kind, id)
		}
		wanted[id] = true
	}
	skipped := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skipped[id] = true
	}

	var ids []string
	for _, m := range all {
		if len(wanted) > 0 && !wanted[m.ID] {
			continue
		}
		if skipped[m.ID] {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// New builds a fresh instance of rule id bound to ctx.
func New(kind types.Kind, id string, ctx *Context) (Rule, error) {
	registryMu.RLock()
	r, ok := registry[kind][id]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("advisor: unknown %s rule %q", kind, id)
	}
	rule := r.factory(ctx)
	if rule == nil {
		return nil, errors.Errorf("advisor: factory of rule %q returned nil", id)
	}
	b := rule.base()
	b.meta = r.meta
	b.self = rule
	if b.Ctx == nil {
		b.Ctx = ctx
	}
	return rule, nil
}

// Run executes Check, turning a panic inside the rule into an error.
func Run(rule Rule) (failed bool, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			perr, ok := panicErr.(error)
			if !ok {
				perr = errors.Errorf("%v", panicErr)
			}
			err = errors.Errorf("rule %s panicked: %v", rule.ID(), perr)
			slog.Error("rule check PANIC RECOVER", "rule", rule.ID(), "error", perr)
		}
	}()
	return rule.Check(), nil
}

// Repair runs FixMore when requested and needed, then Fix and Recheck. It
// reports whether errors remain and turns a panic into an error, which is
// also recorded as an error message of the rule.
func Repair(rule Rule, fixMore bool) (remaining bool, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = errors.Errorf("rule %s panicked while fixing: %v", rule.ID(), panicErr)
			slog.Error("rule fix PANIC RECOVER", "rule", rule.ID(), "error", panicErr)
			rule.base().Error(err.Error())
			remaining = true
		}
	}()
	if fixMore && rule.NeedsFixMore() {
		rule.FixMore()
	}
	rule.Fix()
	return rule.Recheck(), nil
}

// derivedSymbolRules are the only symbol rules run on symbols that extend
// another one; pins and drawings of those are inherited.
var derivedSymbolRules = map[string]bool{
	"G1.1": true,
	"G1.7": true,
	"S3.2": true,
	"S5.1": true,
	"S5.2": true,
	"S6.2": true,
}

// DerivedSymbolRules lists the rule ids that apply to derived symbols.
func DerivedSymbolRules() []string {
	out := make([]string, 0, len(derivedSymbolRules))
	for id := range derivedSymbolRules {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return CompareIDs(out[i], out[j]) < 0 })
	return out
}

// AppliesToDerived reports whether rule id runs on derived symbols.
func AppliesToDerived(id string) bool {
	return derivedSymbolRules[id]
}

// CompareIDs orders rule ids by prefix and then numerically by section, so
// F5.10 sorts after F5.9.
func CompareIDs(a, b string) int {
	pa, na := splitID(a)
	pb, nb := splitID(b)
	if pa != pb {
		return strings.Compare(pa, pb)
	}
	for i := 0; i < len(na) && i < len(nb); i++ {
		if na[i] != nb[i] {
			if na[i] < nb[i] {
				return -1
			}
			return 1
		}
	}
	return len(na) - len(nb)
}

func splitID(id string) (string, []int) {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	var nums []int
	for _, part := range strings.Split(id[i:], ".") {
		n := 0
		for _, c := range part {
			if c < '0' || c > '9' {
				break
			}
			n = n*10 + int(c-'0')
		}
		nums = append(nums, n)
	}
	return id[:i], nums
}
