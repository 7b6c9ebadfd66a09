// Package libdiff compares two snapshots of a set of symbol libraries and
// classifies the symbol changes, flagging the ones that break existing
// schematics.
package libdiff

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/nsxbet/klc-reviewer/pkg/logger"
	"github.com/nsxbet/klc-reviewer/pkg/report"
	"github.com/nsxbet/klc-reviewer/pkg/reviewer"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// DefaultDiffLimit is the largest formatted symbol, in bytes, that gets a
// verbose diff.
const DefaultDiffLimit = 1024 * 1024

// Options control a comparison.
type Options struct {
	// Check runs the symbol rules on added and changed symbols.
	Check bool
	// DesignBreaking counts moved or removed pins, removed symbols and
	// removed libraries.
	DesignBreaking bool
	// CheckDerived includes derived symbols in changed libraries.
	CheckDerived bool
	// Exclude lists rule ids left out of checks.
	Exclude []string
	// Footprints is the footprint library directory used by S5.1.
	Footprints string
	// Verbose reports every change and renders a diff of changed symbols.
	Verbose bool
	// ShowNoChanges also reports identical libraries when Verbose is set.
	ShowNoChanges bool
	// DiffLimit skips diffs of larger symbols. Zero means DefaultDiffLimit.
	DiffLimit int
	// Printer receives the console output. Nil discards it.
	Printer *report.Printer
}

// Status of a library or symbol between the two snapshots.
type Status int

const (
	Unchanged Status = iota
	Added
	Removed
	Changed
)

func (s Status) String() string {
	switch s {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	default:
		return "unchanged"
	}
}

// SymbolChange describes one symbol of a changed library.
type SymbolChange struct {
	Name   string
	Status Status
	// Extends is the base symbol of the newer version, or of the old one
	// for removed symbols.
	Extends string
	// DerivedChanged is set when the symbol changed its base.
	DerivedChanged bool
	// Pins is set for changed symbols when design-breaking changes are
	// counted.
	Pins *PinChanges
	// Diff is the unified diff of a changed symbol in verbose mode.
	Diff []string
	// Review holds the rule check of added or changed symbols.
	Review *reviewer.ReviewResult
}

// Breakage returns the pin breakage of a changed symbol.
func (c SymbolChange) Breakage() Breakage {
	if c.Pins == nil {
		return NotBreaking
	}
	return c.Pins.Breakage()
}

// LibraryChange describes one library.
type LibraryChange struct {
	Name    string
	OldPath string
	NewPath string
	Status  Status
	Symbols []SymbolChange
}

// Report is the outcome of a comparison.
type Report struct {
	Libraries []LibraryChange
	// Errors counts checked symbols with at least one error.
	Errors int
	// DesignBreaking counts design-breaking changes.
	DesignBreaking int
}

// ExitValue is the number of failed checks plus design-breaking changes.
func (r *Report) ExitValue() int {
	return r.Errors + r.DesignBreaking
}

// Library returns the change of library name, nil if it is not part of the
// report.
func (r *Report) Library(name string) *LibraryChange {
	for i := range r.Libraries {
		if r.Libraries[i].Name == name {
			return &r.Libraries[i]
		}
	}
	return nil
}

// Libraries expands file paths, glob patterns and directories into a map
// from library file name to absolute path. Directories are searched
// recursively for .kicad_sym files.
func Libraries(patterns []string) (map[string]string, error) {
	libs := make(map[string]string)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid library pattern %q", pattern)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if info.IsDir() {
				err := filepath.WalkDir(match, func(path string, d fs.DirEntry, err error) error {
					if err != nil {
						return err
					}
					if !d.IsDir() && filepath.Ext(path) == symbol.Extension {
						return addLibrary(libs, path)
					}
					return nil
				})
				if err != nil {
					return nil, errors.Wrapf(err, "failed to scan %s", match)
				}
				continue
			}
			if filepath.Ext(match) == symbol.Extension {
				if err := addLibrary(libs, match); err != nil {
					return nil, err
				}
			}
		}
	}
	return libs, nil
}

func addLibrary(libs map[string]string, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", path)
	}
	libs[filepath.Base(path)] = abs
	return nil
}

// Compare diffs the libraries found in oldPaths against those in newPaths.
// Libraries are matched by file name and visited in name order.
func Compare(ctx context.Context, oldPaths, newPaths []string, opts Options) (*Report, error) {
	oldLibs, err := Libraries(oldPaths)
	if err != nil {
		return nil, err
	}
	newLibs, err := Libraries(newPaths)
	if err != nil {
		return nil, err
	}

	c := &comparer{opts: opts, report: &Report{}}
	if opts.Printer == nil {
		c.opts.Printer = report.NewBufferedPrinter(false)
	}
	if c.opts.DiffLimit <= 0 {
		c.opts.DiffLimit = DefaultDiffLimit
	}
	if opts.Check {
		c.reviewer = reviewer.New(types.KindSymbol,
			reviewer.WithExclude(opts.Exclude...),
			reviewer.WithFootprintsDir(opts.Footprints),
		)
	}

	for _, name := range sortedKeys(newLibs) {
		if err := ctx.Err(); err != nil {
			return c.report, err
		}
		if err := c.library(ctx, name, oldLibs[name], newLibs[name]); err != nil {
			return c.report, err
		}
	}

	for _, name := range sortedKeys(oldLibs) {
		if _, ok := newLibs[name]; ok {
			continue
		}
		if opts.Verbose {
			c.opts.Printer.Red(0, "Removed library '%s'", name)
		}
		if opts.DesignBreaking {
			c.report.DesignBreaking++
		}
		c.report.Libraries = append(c.report.Libraries, LibraryChange{Name: name, OldPath: oldLibs[name], Status: Removed})
	}
	return c.report, nil
}

type comparer struct {
	opts     Options
	report   *Report
	reviewer *reviewer.Reviewer
}

func (c *comparer) library(ctx context.Context, name, oldPath, newPath string) error {
	p := c.opts.Printer
	change := LibraryChange{Name: name, OldPath: oldPath, NewPath: newPath}

	if oldPath != "" {
		same, err := sameContent(oldPath, newPath)
		if err != nil {
			return err
		}
		if same {
			if c.opts.Verbose && c.opts.ShowNoChanges {
				p.Yellow(0, "No changes to library '%s'", name)
			}
			c.report.Libraries = append(c.report.Libraries, change)
			return nil
		}
	}

	newLib, err := symbol.Load(newPath)
	if err != nil {
		return errors.Wrapf(err, "failed to load new library %s", name)
	}

	if oldPath == "" {
		change.Status = Added
		if c.opts.Verbose {
			p.Line(report.LightGreen, 0, "Created library '%s'", name)
		}
		for _, sym := range newLib.Symbols {
			sc := SymbolChange{Name: sym.Name, Status: Added, Extends: sym.Extends}
			if err := c.check(ctx, &sc, sym); err != nil {
				return err
			}
			change.Symbols = append(change.Symbols, sc)
		}
		c.report.Libraries = append(c.report.Libraries, change)
		return nil
	}

	oldLib, err := symbol.Load(oldPath)
	if err != nil {
		return errors.Wrapf(err, "failed to load old library %s", name)
	}
	change.Status = Changed

	newSyms := c.symbols(newLib)
	oldSyms := c.symbols(oldLib)
	oldByName := byName(oldSyms)
	newByName := byName(newSyms)

	for _, sym := range newSyms {
		derivedInfo := ""
		if sym.Extends != "" {
			derivedInfo = " derived from " + sym.Extends
		}
		sc := SymbolChange{Name: sym.Name, Extends: sym.Extends}

		old, ok := oldByName[sym.Name]
		if !ok {
			sc.Status = Added
			if c.opts.Verbose {
				p.Line(report.LightGreen, 0, "New '%s:%s'%s", name, sym.Name, derivedInfo)
			}
			if err := c.check(ctx, &sc, sym); err != nil {
				return err
			}
			change.Symbols = append(change.Symbols, sc)
			continue
		}

		if sym.Extends != old.Extends {
			sc.DerivedChanged = true
			if c.opts.Verbose {
				p.Line(report.White, 0, "Changed derived state of '%s:%s'", name, sym.Name)
			}
		}

		oldText, newText := old.Format(), sym.Format()
		if oldText == newText {
			change.Symbols = append(change.Symbols, sc)
			continue
		}
		sc.Status = Changed

		if c.opts.Verbose {
			p.Yellow(0, "Changed '%s:%s'%s", name, sym.Name, derivedInfo)
			sc.Diff = c.diff(name+":"+sym.Name, oldText, newText)
			printDiff(p, sc.Diff)
		}

		if c.opts.DesignBreaking {
			pins := ClassifyPins(old, sym)
			sc.Pins = &pins
			switch pins.Breakage() {
			case PinsBreaking:
				c.report.DesignBreaking++
				p.Line(report.LightPurple, 0, "Pins have been moved, renumbered or removed in symbol '%s:%s'%s", name, sym.Name, derivedInfo)
			case NoConnectBreaking:
				c.report.DesignBreaking++
				p.Line(report.Purple, 0, "Normal pins ok but NC pins have been moved, renumbered or removed in symbol '%s:%s'%s", name, sym.Name, derivedInfo)
			}
		}

		if err := c.check(ctx, &sc, sym); err != nil {
			return err
		}
		change.Symbols = append(change.Symbols, sc)
	}

	for _, old := range oldSyms {
		if _, ok := newByName[old.Name]; ok {
			continue
		}
		derivedInfo := ""
		if old.Extends != "" {
			derivedInfo = " was derived from " + old.Extends
		}
		if c.opts.Verbose {
			p.Red(0, "Removed '%s:%s'%s", name, old.Name, derivedInfo)
		}
		if c.opts.DesignBreaking {
			c.report.DesignBreaking++
		}
		change.Symbols = append(change.Symbols, SymbolChange{Name: old.Name, Status: Removed, Extends: old.Extends})
	}

	c.report.Libraries = append(c.report.Libraries, change)
	return nil
}

// symbols drops derived symbols unless they are compared too.
func (c *comparer) symbols(lib *symbol.Library) []*symbol.Symbol {
	if c.opts.CheckDerived {
		return lib.Symbols
	}
	var syms []*symbol.Symbol
	for _, s := range lib.Symbols {
		if !s.IsDerived() {
			syms = append(syms, s)
		}
	}
	return syms
}

func (c *comparer) check(ctx context.Context, sc *SymbolChange, sym *symbol.Symbol) error {
	if c.reviewer == nil {
		return nil
	}
	res, err := c.reviewer.ReviewSymbol(ctx, sym)
	if err != nil {
		return errors.Wrapf(err, "failed to check %s:%s", sym.LibName(), sym.Name)
	}
	sc.Review = res
	c.opts.Printer.Review(res, report.RenderOptions{Verbosity: 2, Silent: true})
	if res.HasErrors() {
		c.report.Errors++
	}
	return nil
}

func (c *comparer) diff(label, oldText, newText string) []string {
	if len(oldText) > c.opts.DiffLimit || len(newText) > c.opts.DiffLimit {
		slog.Debug("Symbol too large for a diff", "symbol", label, "limit", c.opts.DiffLimit)
		return nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: "a/" + label,
		ToFile:   "b/" + label,
		Context:  3,
	})
	if err != nil {
		slog.Warn("Failed to diff symbol", "symbol", label, logger.Error(err))
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, " \t\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func printDiff(p *report.Printer, lines []string) {
	for _, line := range lines {
		t := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(t, "+"):
			p.Green(0, "%s", line)
		case strings.HasPrefix(t, "-"):
			p.Red(0, "%s", line)
		case strings.HasPrefix(t, "?"):
			p.Yellow(0, "%s", line)
		default:
			p.Regular(0, "%s", line)
		}
	}
}

func sameContent(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", a)
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", b)
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}
	da, err := os.ReadFile(a)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", a)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", b)
	}
	return bytes.Equal(da, db), nil
}

func byName(syms []*symbol.Symbol) map[string]*symbol.Symbol {
	m := make(map[string]*symbol.Symbol, len(syms))
	for _, s := range syms {
		m[s.Name] = s
	}
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
