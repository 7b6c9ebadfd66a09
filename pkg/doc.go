// Package pkg provides KiCad Library Convention (KLC) checking for Go applications.
//
// KLC Reviewer checks footprints (.kicad_mod) and symbol libraries
// (.kicad_sym) against the convention rules, optionally fixes what it can,
// and compares two versions of symbol libraries.
//
// # Package Structure
//
// The pkg directory contains several specialized packages:
//
//   - reviewer: High-level API for reviewing footprints and symbols (recommended starting point)
//   - advisor: Rule protocol (check, fix, fixmore, recheck) and registration
//   - rules: Rule implementations, one package per entity kind
//   - footprint, symbol: Data models, loaders and writers
//   - sexpr: S-expression parser shared by both file formats
//   - geometry: Points, boxes, rotation and unit conversion
//   - libdiff: Old/new comparison of symbol libraries
//   - coordinator: Parallel checking of many files
//   - report: Console output, error log and metrics
//   - config: Rule catalog and configuration loading
//   - types: Core type definitions
//   - logger: Logging abstraction layer
//
// # Getting Started
//
// For most use cases, start with the reviewer package:
//
//	import (
//	    "github.com/nsxbet/klc-reviewer/pkg/footprint"
//	    "github.com/nsxbet/klc-reviewer/pkg/reviewer"
//	    "github.com/nsxbet/klc-reviewer/pkg/types"
//	)
//
//	func main() {
//	    fp, err := footprint.Load("Resistor_SMD.pretty/R_0603_1608Metric.kicad_mod")
//	    // Handle err...
//	    r := reviewer.New(types.KindFootprint)
//	    result, err := r.ReviewFootprint(context.Background(), fp)
//	    // Process results...
//	}
//
// # Rule Categories
//
// Rule ids follow the sections of the convention:
//
// General Rules (G): naming and file format requirements shared by all
// entities.
//
// Symbol Rules (S): origin and outline, pin placement, pin types and stacks,
// required properties, footprint filters, power and graphic symbols.
//
// Footprint Rules (F): silkscreen, fabrication and courtyard layers,
// placement type, pin 1 and pad requirements, drills and metadata.
//
// Extra Checks (EC): checks outside the convention, such as basic geometry,
// pad shapes and field placement.
//
// Run "klc-reviewer rules" for the full list.
//
// # Configuration
//
// Rule levels and thresholds can be configured via YAML/JSON files or
// programmatically:
//
//	r := reviewer.New(types.KindSymbol)
//	if err := r.WithConfig("klc-rules.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Fixing
//
// Rules repair what they found when asked to; geometry changes need the
// stronger FixMore option:
//
//	result, err := r.ReviewFootprint(ctx, fp, reviewer.WithFix(true))
//	if result.Modified {
//	    err = fp.Save()
//	}
//
// # Custom Rules
//
// Implement custom rules by embedding advisor.Base and registering a factory:
//
//	type MyRule struct {
//	    advisor.Base
//	    sym *symbol.Symbol
//	}
//
//	func (r *MyRule) Check() bool {
//	    if r.sym.PropertyValue("Datasheet") == "" {
//	        r.Error("Missing datasheet")
//	        return true
//	    }
//	    return false
//	}
//
//	func init() {
//	    advisor.Register(types.KindSymbol, "X1.1", "Symbols have a datasheet", func(ctx *advisor.Context) advisor.Rule {
//	        return &MyRule{sym: ctx.Symbol}
//	    })
//	}
//
// # Thread Safety
//
// Reviewers are safe for concurrent use by multiple goroutines. Footprints
// and symbols are not: fixing mutates them, so each goroutine must review
// its own entities. The coordinator package distributes files accordingly.
//
// # Error Handling
//
// Review operations distinguish between:
//   - Findings (returned as rule reports in ReviewResult)
//   - System errors (returned as error from ReviewFootprint/ReviewSymbol)
//
// A rule that panics is reported on its rule report and does not stop the
// other rules.
//
// # Documentation
//
// Examples: examples/library-usage/
package pkg
