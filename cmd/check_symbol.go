package cmd

import (
	"context"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nsxbet/klc-reviewer/pkg/logger"
	"github.com/nsxbet/klc-reviewer/pkg/report"
	"github.com/nsxbet/klc-reviewer/pkg/symbol"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

var checkSymbolCmd = &cobra.Command{
	Use:   "check-symbol [flags] <file.kicad_sym>...",
	Short: "Check symbol libraries against the KLC symbol rules",
	Long: `Check KiCad symbol libraries (.kicad_sym) against the KiCad Library
Convention symbol rules.

Libraries are distributed over --jobs workers, largest first. Derived symbols
only run the rules that apply to them. The process exits with a non-zero
status if any symbol has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheckSymbol,
}

func init() {
	rootCmd.AddCommand(checkSymbolCmd)

	addCheckFlags(checkSymbolCmd, "symbol")
	checkSymbolCmd.Flags().StringP("component", "c", "", "check only the named symbol (case-insensitive)")
	checkSymbolCmd.Flags().StringP("pattern", "p", "", "check only symbols matching this regular expression (case-insensitive)")
	checkSymbolCmd.Flags().String("footprints", "", `path to footprint libraries (.pretty dirs), e.g. "~/kicad/footprints/"`)
}

// symbolWorker checks symbol libraries. Each worker keeps its own cache of
// parsed libraries.
type symbolWorker struct {
	checkWorker
	cache *symbol.Cache
}

func (w *symbolWorker) Process(ctx context.Context, path string, p *report.Printer) error {
	if !fileExists(path) {
		w.fail(p, path, "File does not exist: %s", path)
		return nil
	}
	if filepath.Ext(path) != symbol.Extension {
		w.fail(p, path, "File is not a %s : %s", symbol.Extension, path)
		return nil
	}
	lib, err := w.cache.Load(path)
	if err != nil {
		w.fail(p, path, "Could not parse library: %s. (%s)", path, err)
		return nil
	}

	var errorCount, warningCount int
	modified := false
	for _, sym := range lib.Symbols {
		if !w.settings.selects(sym.Name) {
			continue
		}
		res, err := w.reviewer.ReviewSymbol(ctx, sym)
		if err != nil {
			return err
		}
		w.record(p, res)
		w.metrics.Symbol(lib.Name(), sym.Name, res.Summary.Errors, res.Summary.Warnings)
		errorCount += res.Summary.Errors
		warningCount += res.Summary.Warnings
		modified = modified || res.Modified
	}
	w.metrics.LibraryTotal(lib.Name(), errorCount, warningCount)

	if modified {
		w.cache.Forget(path)
		if err := lib.Save(); err != nil {
			return err
		}
		w.updated = true
		appLogger.ForWorker(w.index).Info("Saved symbol library", logger.File(path))
	}
	return nil
}

// selects applies the --component and --pattern filters.
func (s *checkSettings) selects(name string) bool {
	if s.component != "" && !strings.EqualFold(s.component, name) {
		return false
	}
	if s.pattern != nil && !s.pattern.MatchString(name) {
		return false
	}
	return true
}

func runCheckSymbol(cmd *cobra.Command, args []string) error {
	s, err := loadCheckSettings(cmd, types.KindSymbol)
	if err != nil {
		return err
	}
	errLog := newErrorLog(s)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Caches outlive a single run so that --watch re-checks only parse the
	// libraries that changed. Worker i always gets cache i.
	caches := make([]*symbol.Cache, s.jobs)
	for i := range caches {
		caches[i] = symbol.NewCache(symbol.DefaultCacheSize, 0)
	}
	check := func(ctx context.Context, files []string) (*checkOutcome, error) {
		return runChecks(ctx, s, files,
			func(w *symbolWorker) *checkWorker { return &w.checkWorker },
			func(i int) (*symbolWorker, error) {
				return &symbolWorker{checkWorker: newCheckWorker(i, s, errLog), cache: caches[i]}, nil
			})
	}

	files := expandFiles(args)
	outcome, err := check(ctx, files)
	if err != nil {
		return err
	}
	return s.watchOrFinish(ctx, outcome, files, check)
}
