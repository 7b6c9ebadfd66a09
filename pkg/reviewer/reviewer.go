// Package reviewer provides a high-level API for checking KiCad footprints and
// symbols against the KiCad Library Convention.
//
// This package runs the registered rules of one entity kind, applies the
// configured rule levels and payloads, drives the fix cycle and collects the
// output into a ReviewResult.
//
// # Quick Start
//
//	fp, err := footprint.Load("Package_SO.pretty/SOIC-8_3.9x4.9mm_P1.27mm.kicad_mod")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r := reviewer.New(types.KindFootprint)
//	result, err := r.ReviewFootprint(context.Background(), fp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rule := range result.Rules {
//	    fmt.Printf("Violating %s - %s\n", rule.ID, rule.URL)
//	}
//
// # Using Custom Configuration
//
//	r := reviewer.New(types.KindSymbol)
//	if err := r.WithConfig("klc-rules.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Fixing
//
//	result, err := r.ReviewFootprint(ctx, fp, reviewer.WithFixMore(true))
//	if err == nil && result.Modified {
//	    err = fp.Save()
//	}
package reviewer

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/config"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/logger"
	_ "github.com/nsxbet/klc-reviewer/pkg/rules/footprint"
	_ "github.com/nsxbet/klc-reviewer/pkg/rules/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// Unit test entity names read "<Pass|Warn|Fail>__<rule id>__<description>".
var unitTestName = regexp.MustCompile(`^(\w+)__(.+)__(.+)`)

// Reviewer provides a high-level API for library review operations.
// It encapsulates configuration management and rule execution.
//
// A Reviewer is safe for concurrent use as long as its configuration is not
// replaced meanwhile; every review builds fresh rule instances.
type Reviewer struct {
	config   *config.Config
	kind     types.Kind
	defaults []ReviewOption
}

// New creates a Reviewer for the given entity kind with the built-in rule
// catalog as configuration. opts apply to every review and may be
// overridden per call.
//
// Example:
//
//	r := reviewer.New(types.KindSymbol, reviewer.WithFootprintsDir("/usr/share/kicad/footprints"))
func New(kind types.Kind, opts ...ReviewOption) *Reviewer {
	return &Reviewer{
		config:   loadDefaultConfig(kind),
		kind:     kind,
		defaults: opts,
	}
}

// loadDefaultConfig builds the configuration from the built-in catalog.
func loadDefaultConfig(kind types.Kind) *config.Config {
	cfg, err := config.CatalogConfig(kind)
	if err != nil {
		slog.Warn("Failed to load rule catalog, using empty default config", logger.Error(err))
		return config.DefaultConfig("default")
	}
	return cfg
}

// WithConfig loads rule configuration from a YAML or JSON file.
// This replaces the current configuration.
//
// Returns an error if the file cannot be read or parsed.
func (r *Reviewer) WithConfig(filename string) error {
	cfg, err := config.LoadFromFile(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to load config from %s", filename)
	}
	r.config = cfg
	return nil
}

// WithConfigObject sets a custom configuration object directly.
// This replaces the current configuration.
//
// Returns the Reviewer for method chaining.
func (r *Reviewer) WithConfigObject(cfg *config.Config) *Reviewer {
	r.config = cfg
	return r
}

// Config returns the active configuration.
func (r *Reviewer) Config() *config.Config {
	return r.config
}

// Kind returns the entity kind the reviewer checks.
func (r *Reviewer) Kind() types.Kind {
	return r.kind
}

// ReviewFootprint runs all enabled footprint rules against fp. Fixes mutate
// fp; the caller saves it when the result is Modified.
//
// Returns an error only if the review process itself fails, for instance on
// an unknown rule id or a cancelled context. Rule failures, including
// panics, are part of the result.
func (r *Reviewer) ReviewFootprint(ctx context.Context, fp *footprint.Footprint, opts ...ReviewOption) (*ReviewResult, error) {
	if r.kind != types.KindFootprint {
		return nil, errors.Errorf("reviewer checks %s entities, not footprints", r.kind)
	}
	o := r.options(opts)
	result := &ReviewResult{
		Kind:    types.KindFootprint,
		Entity:  fp.Name,
		Library: fp.Library(),
	}
	if o.rotate != 0 {
		fp.Rotate(o.rotate)
		result.Modified = true
	}

	ids, err := r.selectRules(o, nil)
	if err != nil {
		return nil, err
	}
	return r.review(ctx, result, ids, &advisor.Context{Footprint: fp, Options: r.advisorOptions(o)}, o)
}

// ReviewSymbol runs all enabled symbol rules against sym. Derived symbols
// only run the rules listed by advisor.DerivedSymbolRules.
func (r *Reviewer) ReviewSymbol(ctx context.Context, sym *symbol.Symbol, opts ...ReviewOption) (*ReviewResult, error) {
	if r.kind != types.KindSymbol {
		return nil, errors.Errorf("reviewer checks %s entities, not symbols", r.kind)
	}
	o := r.options(opts)
	result := &ReviewResult{
		Kind:    types.KindSymbol,
		Entity:  sym.Name,
		Library: sym.LibName(),
	}

	var keep func(string) bool
	if sym.IsDerived() {
		keep = advisor.AppliesToDerived
	}
	ids, err := r.selectRules(o, keep)
	if err != nil {
		return nil, err
	}
	return r.review(ctx, result, ids, &advisor.Context{Symbol: sym, Options: r.advisorOptions(o)}, o)
}

func (r *Reviewer) options(opts []ReviewOption) *reviewOptions {
	o := &reviewOptions{}
	for _, opt := range r.defaults {
		opt(o)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (r *Reviewer) advisorOptions(o *reviewOptions) advisor.Options {
	return advisor.Options{
		Fix:           o.fix,
		FixMore:       o.fixMore,
		Verbosity:     o.verbosity,
		FootprintsDir: o.footprintsDir,
	}
}

// selectRules applies the include and exclude lists and drops rules the
// configuration disables. keep, when set, filters the remaining ids.
func (r *Reviewer) selectRules(o *reviewOptions, keep func(string) bool) ([]string, error) {
	exclude := append(append([]string(nil), o.exclude...), r.config.Disabled(r.kind)...)
	ids, err := advisor.Select(r.kind, o.include, exclude)
	if err != nil {
		return nil, err
	}
	if keep == nil {
		return ids, nil
	}
	filtered := ids[:0]
	for _, id := range ids {
		if keep(id) {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// newRule binds a fresh instance of rule id to its own copy of base, with
// the configured payload.
func (r *Reviewer) newRule(id string, base *advisor.Context) (advisor.Rule, types.RuleLevel, error) {
	ruleCtx := *base
	level := types.RuleLevel_ERROR
	if rc := r.config.Rule(r.kind, id); rc != nil {
		ruleCtx.Payload = rc.Payload
		if rc.Level != types.RuleLevel_LEVEL_UNSPECIFIED {
			level = rc.Level
		}
	}
	rule, err := advisor.New(r.kind, id, &ruleCtx)
	if err != nil {
		return nil, level, err
	}
	return rule, level, nil
}

func (r *Reviewer) review(ctx context.Context, result *ReviewResult, ids []string, base *advisor.Context, o *reviewOptions) (*ReviewResult, error) {
	if o.unitTest {
		return r.unitTest(ctx, result, ids, base)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rule, level, err := r.newRule(id, base)
		if err != nil {
			return nil, err
		}
		report := RuleReport{ID: id, Title: rule.Title(), URL: rule.URL(), Level: level}
		result.Checked = append(result.Checked, id)
		result.Summary.Rules++

		if _, err := advisor.Run(rule); err != nil {
			report.Panic = err.Error()
			report.Errors = 1
			report.Unresolved = 1
			report.Messages = []types.Message{{Severity: types.Message_ERROR, Text: err.Error()}}
			result.tally(report)
			result.Rules = append(result.Rules, report)
			continue
		}
		report.Errors = rule.ErrorCount()
		report.Warnings = rule.WarningCount()
		report.Unresolved = report.Errors

		if o.fix && rule.HasErrors() {
			remaining, err := advisor.Repair(rule, o.fixMore)
			if err != nil {
				slog.Warn("Rule fix crashed", "rule", id, "entity", result.Entity, logger.Error(err))
			}
			report.Fixed = true
			report.Remaining = remaining
			report.Unresolved = 0
			if remaining {
				report.Unresolved = max(rule.ErrorCount(), 1)
			}
			result.Modified = true
		}
		report.Messages = rule.Drain()
		result.tally(report)

		if o.noWarnings && report.Errors == 0 {
			continue
		}
		if len(report.Messages) > 0 {
			result.Rules = append(result.Rules, report)
		}
	}
	return result, nil
}

// tally adds a rule report to the summary, demoting errors of WARNING level
// rules.
func (r *ReviewResult) tally(report RuleReport) {
	if report.Level == types.RuleLevel_WARNING {
		r.Summary.Warnings += report.Errors + report.Warnings
		return
	}
	r.Summary.Errors += report.Errors
	r.Summary.Unresolved += report.Unresolved
	r.Summary.Warnings += report.Warnings
}

// unitTest checks the one rule named by the entity and compares its outcome
// with the expectation encoded in the name. A name that cannot be parsed
// counts as one error.
func (r *Reviewer) unitTest(ctx context.Context, result *ReviewResult, ids []string, base *advisor.Context) (*ReviewResult, error) {
	ut := &UnitTestResult{Name: result.Entity}
	result.UnitTest = ut

	m := unitTestName.FindStringSubmatch(result.Entity)
	if m == nil {
		result.Summary.Errors = 1
		result.Summary.Unresolved = 1
		return result, nil
	}
	ut.Parsed = true
	ut.Expect = m[1]
	ut.Rule = m[2]

	for _, id := range ids {
		if id != ut.Rule {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rule, _, err := r.newRule(id, base)
		if err != nil {
			return nil, err
		}
		ut.Executed = true
		result.Checked = append(result.Checked, id)
		result.Summary.Rules++
		if _, err := advisor.Run(rule); err != nil {
			slog.Warn("Unit test rule crashed", "test", ut.Name, logger.Error(err))
			result.Summary.Errors++
			result.Summary.Unresolved++
			continue
		}

		switch ut.Expect {
		case "Fail":
			ut.Passed = rule.ErrorCount() > 0
		case "Warn":
			ut.Passed = rule.WarningCount() > 0
		case "Pass":
			ut.Passed = rule.ErrorCount() == 0 && rule.WarningCount() == 0
		default:
			ut.Passed = false
		}
		if !ut.Passed {
			result.Summary.Errors++
			result.Summary.Unresolved++
		}
	}
	return result, nil
}
