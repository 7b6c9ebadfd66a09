package cmd

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/logger"
	"github.com/nsxbet/klc-reviewer/pkg/report"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

var checkFootprintCmd = &cobra.Command{
	Use:   "check-footprint [flags] <file.kicad_mod>...",
	Short: "Check footprint files against the KLC footprint rules",
	Long: `Check KiCad footprint files (.kicad_mod) against the KiCad Library
Convention footprint rules.

Arguments may be glob patterns. The process exits with a non-zero status if
any footprint has errors after the optional fixing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheckFootprint,
}

func init() {
	rootCmd.AddCommand(checkFootprintCmd)

	addCheckFlags(checkFootprintCmd, "footprint")
	checkFootprintCmd.Flags().Float64("rotate", 0, "rotate the whole footprint by this many degrees and save it")
}

// footprintWorker checks footprint files.
type footprintWorker struct {
	checkWorker
}

func (w *footprintWorker) Process(ctx context.Context, path string, p *report.Printer) error {
	if !fileExists(path) {
		w.fail(p, path, "File does not exist: %s", path)
		return nil
	}
	if filepath.Ext(path) != footprint.Extension {
		w.fail(p, path, "File is not a %s : %s", footprint.Extension, path)
		return nil
	}
	fp, err := footprint.Load(path)
	if err != nil {
		w.fail(p, path, "Could not parse footprint: %s. (%s)", path, err)
		return nil
	}

	s := w.settings
	if s.rotate != 0 {
		p.Green(0, "rotated footprint by %g degrees", s.rotate)
	}
	res, err := w.reviewer.ReviewFootprint(ctx, fp)
	if err != nil {
		return err
	}
	w.record(p, res)
	w.metrics.Footprint(res.Library, res.Entity, res.Summary.Errors, res.Summary.Warnings)

	if res.Modified {
		if err := fp.Save(); err != nil {
			return err
		}
		w.updated = true
		appLogger.ForWorker(w.index).Info("Saved footprint", logger.File(path))
	}
	return nil
}

func runCheckFootprint(cmd *cobra.Command, args []string) error {
	s, err := loadCheckSettings(cmd, types.KindFootprint)
	if err != nil {
		return err
	}
	if s.watch && s.rotate != 0 {
		return errors.New("--rotate cannot be combined with --watch")
	}
	errLog := newErrorLog(s)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	check := func(ctx context.Context, files []string) (*checkOutcome, error) {
		return runChecks(ctx, s, files,
			func(w *footprintWorker) *checkWorker { return &w.checkWorker },
			func(i int) (*footprintWorker, error) {
				return &footprintWorker{checkWorker: newCheckWorker(i, s, errLog)}, nil
			})
	}

	files := expandFiles(args)
	outcome, err := check(ctx, files)
	if err != nil {
		return err
	}
	return s.watchOrFinish(ctx, outcome, files, check)
}

func newErrorLog(s *checkSettings) *report.ErrorLog {
	if s.logPath == "" {
		return nil
	}
	return report.NewErrorLog(s.logPath)
}
