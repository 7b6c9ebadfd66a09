package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/klc-reviewer/pkg/libdiff"
	"github.com/nsxbet/klc-reviewer/pkg/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare [flags] <old.kicad_sym|dir>... --new <new.kicad_sym|dir>...",
	Short: "Compare two versions of symbol libraries",
	Long: `Compare old and new versions of symbol libraries and report which
symbols were added, removed or changed.

Libraries are matched by file name; directories are searched for .kicad_sym
files. The exit status is the number of checked symbols with errors plus the
number of design-breaking changes, so that a build pipeline can gate on it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	flags := compareCmd.Flags()
	flags.StringSlice("new", nil, "new (updated) .kicad_sym files or folders")
	flags.Bool("check", false, "run the KLC symbol rules on added and changed symbols")
	flags.Bool("design-breaking-changes", false, "count changes that break existing designs using a symbol")
	flags.Bool("check-derived", false, "also compare derived symbols")
	flags.StringSlice("exclude", nil, `skip these rules when checking, e.g. "--exclude S3.1,EC02"`)
	flags.String("footprints", "", "path to footprint libraries (.pretty dirs)")
	flags.BoolP("changes", "v", false, "report every change and show a diff of changed symbols")
	flags.Bool("shownochanges", false, "also report libraries without changes")
	flags.Bool("nocolor", false, "do not use colors in the output")
	flags.Int("diff-limit", libdiff.DefaultDiffLimit, "largest symbol, in bytes, that gets a diff")
	_ = compareCmd.MarkFlagRequired("new")
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "failed to bind flags")
	}
	if err := viper.BindEnv("diff-limit", "KLC_DIFF_LIMIT", "VERBOSE_DIFF_LIMIT"); err != nil {
		return errors.Wrap(err, "failed to bind environment")
	}

	opts := libdiff.Options{
		Check:          viper.GetBool("check"),
		DesignBreaking: viper.GetBool("design-breaking-changes"),
		CheckDerived:   viper.GetBool("check-derived"),
		Exclude:        normalizeIDs(viper.GetStringSlice("exclude")),
		Footprints:     viper.GetString("footprints"),
		Verbose:        viper.GetBool("changes"),
		ShowNoChanges:  viper.GetBool("shownochanges"),
		DiffLimit:      viper.GetInt("diff-limit"),
		Printer:        report.NewPrinter(cmd.OutOrStdout(), !viper.GetBool("nocolor")),
	}

	rep, err := libdiff.Compare(cmd.Context(), args, viper.GetStringSlice("new"), opts)
	if err != nil {
		return err
	}
	appLogger.Debug("Comparison finished",
		"libraries", len(rep.Libraries),
		"errors", rep.Errors,
		"design_breaking", rep.DesignBreaking)
	return exitWith(rep.ExitValue())
}
