package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/config"
	"github.com/nsxbet/klc-reviewer/pkg/coordinator"
	"github.com/nsxbet/klc-reviewer/pkg/logger"
	"github.com/nsxbet/klc-reviewer/pkg/report"
	"github.com/nsxbet/klc-reviewer/pkg/reviewer"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// addCheckFlags registers the flags shared by both checkers.
func addCheckFlags(cmd *cobra.Command, entity string) {
	flags := cmd.Flags()
	flags.Bool("fix", false, "fix the violations if possible")
	flags.Bool("fixmore", false, "fix additional violations, may alter geometry (implies --fix)")
	flags.StringSliceP("rule", "r", nil, `check only these rules, e.g. "-r F5.1,F7.6"`)
	flags.StringSliceP("exclude", "e", nil, `skip these rules, e.g. "-e F5.1,F7.6"`)
	flags.BoolP("silent", "s", false, "skip output for "+entity+"s passing all checks")
	flags.BoolP("nowarnings", "w", false, "hide warnings (only show errors)")
	flags.StringP("log", "l", "", "path to a JSON lines file receiving one record per error")
	flags.BoolP("metrics", "m", false, "append metrics to "+report.MetricsFile)
	flags.String("prometheus", "", "write the metrics in Prometheus text format to this file")
	flags.BoolP("unittest", "u", false, "unit test mode, names read <Pass|Warn|Fail>__<rule>__<description>")
	flags.IntP("jobs", "j", 1, "number of parallel workers")
	flags.CountP("verbosity", "v", "show rule titles and details (-v), also list every rule (-vv)")
	flags.Bool("nocolor", false, "do not use colors in the output")
	flags.Bool("watch", false, "keep running and re-check files when they change")
	flags.StringP("output", "o", "text", "output format (text, json, yaml)")
	flags.String("rules-config", "", "path to rules configuration file (YAML or JSON)")
}

// checkSettings are the resolved options of one checker run.
type checkSettings struct {
	kind       types.Kind
	fix        bool
	fixMore    bool
	rotate     float64
	rules      []string
	exclude    []string
	silent     bool
	noWarnings bool
	unitTest   bool
	verbosity  int
	jobs       int
	color      bool
	watch      bool
	output     string
	logPath    string
	metrics    bool
	prometheus string
	footprints string
	component  string
	pattern    *regexp.Regexp
	config     *config.Config
	stdout     io.Writer
}

// loadCheckSettings reads the bound flags, the environment and the rules
// configuration file. Flags win over the configuration file settings.
func loadCheckSettings(cmd *cobra.Command, kind types.Kind) (*checkSettings, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	s := &checkSettings{
		kind:       kind,
		fix:        viper.GetBool("fix") || viper.GetBool("fixmore"),
		fixMore:    viper.GetBool("fixmore"),
		rotate:     viper.GetFloat64("rotate"),
		rules:      normalizeIDs(viper.GetStringSlice("rule")),
		exclude:    normalizeIDs(viper.GetStringSlice("exclude")),
		silent:     viper.GetBool("silent"),
		noWarnings: viper.GetBool("nowarnings"),
		unitTest:   viper.GetBool("unittest"),
		verbosity:  viper.GetInt("verbosity"),
		jobs:       viper.GetInt("jobs"),
		color:      !viper.GetBool("nocolor"),
		watch:      viper.GetBool("watch"),
		output:     strings.ToLower(viper.GetString("output")),
		logPath:    viper.GetString("log"),
		metrics:    viper.GetBool("metrics"),
		prometheus: viper.GetString("prometheus"),
		footprints: viper.GetString("footprints"),
		component:  viper.GetString("component"),
		stdout:     cmd.OutOrStdout(),
	}

	switch s.output {
	case "text", "json", "yaml":
	default:
		return nil, errors.Errorf("unsupported output format: %s", s.output)
	}

	if pattern := viper.GetString("pattern"); pattern != "" {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid symbol pattern %q", pattern)
		}
		s.pattern = re
	}

	if err := s.loadConfig(viper.GetString("rules-config")); err != nil {
		return nil, err
	}

	// Unknown rule ids are reported before any file is touched.
	if _, err := advisor.Select(kind, s.rules, s.exclude); err != nil {
		return nil, err
	}
	if s.jobs < 1 {
		s.jobs = 1
	}
	return s, nil
}

func (s *checkSettings) loadConfig(path string) error {
	if path == "" {
		cfg, err := config.CatalogConfig(s.kind)
		if err != nil {
			return err
		}
		s.config = cfg
		return nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to load rules configuration from %s", path)
	}
	s.config = cfg
	appLogger.Debug("Loaded rules configuration", logger.File(path), "rules", len(cfg.Rules))

	st := cfg.Settings
	if !viper.IsSet("footprints") && st.FootprintsDir != "" {
		s.footprints = st.FootprintsDir
	}
	if !viper.IsSet("nowarnings") && st.NoWarnings {
		s.noWarnings = true
	}
	if !viper.IsSet("silent") && st.Silent {
		s.silent = true
	}
	if !viper.IsSet("jobs") && st.Jobs > 0 {
		s.jobs = st.Jobs
	}
	if !viper.IsSet("log") && st.Log != "" {
		s.logPath = st.Log
	}
	if !viper.IsSet("metrics") && st.Metrics {
		s.metrics = true
	}
	return nil
}

func normalizeIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id = strings.ToUpper(strings.TrimSpace(id)); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// reviewOptions maps the settings onto the reviewer options.
func (s *checkSettings) reviewOptions() []reviewer.ReviewOption {
	return []reviewer.ReviewOption{
		reviewer.WithFix(s.fix),
		reviewer.WithFixMore(s.fixMore),
		reviewer.WithRotate(s.rotate),
		reviewer.WithRules(s.rules...),
		reviewer.WithExclude(s.exclude...),
		reviewer.WithFootprintsDir(s.footprints),
		reviewer.WithNoWarnings(s.noWarnings),
		reviewer.WithUnitTest(s.unitTest),
		reviewer.WithVerbosity(s.verbosity),
	}
}

func (s *checkSettings) newReviewer() *reviewer.Reviewer {
	return reviewer.New(s.kind, s.reviewOptions()...).WithConfigObject(s.config)
}

func (s *checkSettings) renderOptions() report.RenderOptions {
	return report.RenderOptions{Verbosity: s.verbosity, Silent: s.silent}
}

func (s *checkSettings) structured() bool {
	return s.output != "text"
}

// expandFiles resolves glob patterns. A pattern without matches is kept as is
// so that the checker reports the missing file.
func expandFiles(patterns []string) []string {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			files = append(files, pattern)
			continue
		}
		files = append(files, matches...)
	}
	return files
}

// fileFailure is a file that could not be checked at all.
type fileFailure struct {
	Path    string `json:"path"    yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// checkWorker holds what every checker worker accumulates.
type checkWorker struct {
	index    int
	settings *checkSettings
	reviewer *reviewer.Reviewer
	errLog   *report.ErrorLog
	metrics  *report.Metrics

	errors     int
	unresolved int
	warnings   int
	updated    bool
	results    []*reviewer.ReviewResult
	failures   []fileFailure
}

func newCheckWorker(i int, s *checkSettings, errLog *report.ErrorLog) checkWorker {
	return checkWorker{
		index:    i,
		settings: s,
		reviewer: s.newReviewer(),
		errLog:   errLog,
		metrics:  report.NewMetrics(),
	}
}

// fail reports a file that could not be checked. It counts as one error.
func (w *checkWorker) fail(p *report.Printer, path, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.Red(0, "%s", msg)
	w.errors++
	w.unresolved++
	w.failures = append(w.failures, fileFailure{Path: path, Message: msg})
}

// record prints a review and adds it to the totals and the error log.
func (w *checkWorker) record(p *report.Printer, res *reviewer.ReviewResult) {
	p.Review(res, w.settings.renderOptions())
	w.results = append(w.results, res)
	w.errors += res.Summary.Errors
	w.unresolved += res.Summary.Unresolved
	w.warnings += res.Summary.Warnings
	if err := w.errLog.Write(res.ErrorRecords()...); err != nil {
		appLogger.ForWorker(w.index).Warn("Failed to write error log", logger.Error(err))
	}
}

// checkOutcome is the merged result of a checker run.
type checkOutcome struct {
	Results  []*reviewer.ReviewResult `json:"results"            yaml:"results"`
	Failures []fileFailure            `json:"failures,omitempty" yaml:"failures,omitempty"`
	Errors   int                      `json:"errors"             yaml:"errors"`
	Warnings int                      `json:"warnings"           yaml:"warnings"`
	Updated  bool                     `json:"updated,omitempty"  yaml:"updated,omitempty"`

	// Unresolved counts the errors left after fixing; it decides the exit
	// status.
	Unresolved int `json:"unresolved" yaml:"unresolved"`
}

// runChecks distributes files over the workers built by newWorker and merges
// their results by worker index.
func runChecks[W coordinator.Worker](ctx context.Context, s *checkSettings, files []string, base func(W) *checkWorker, newWorker func(i int) (W, error)) (*checkOutcome, error) {
	if !s.unitTest {
		files = coordinator.SortBySize(files)
	}
	out := s.stdout
	if s.structured() {
		out = io.Discard
	}

	run, err := coordinator.Run(ctx, files, coordinator.Options{
		Workers: s.jobs,
		Output:  out,
		Color:   s.color,
		Logger:  appLogger,
	}, newWorker)
	if err != nil && run == nil {
		return nil, err
	}

	outcome := &checkOutcome{}
	metrics := report.NewMetrics()
	for _, w := range run.Workers {
		cw := base(w)
		outcome.Results = append(outcome.Results, cw.results...)
		outcome.Failures = append(outcome.Failures, cw.failures...)
		outcome.Errors += cw.errors
		outcome.Unresolved += cw.unresolved
		outcome.Warnings += cw.warnings
		outcome.Updated = outcome.Updated || cw.updated
		metrics.Merge(cw.metrics)
	}
	for _, fe := range run.Failed {
		outcome.Errors++
		outcome.Unresolved++
		outcome.Failures = append(outcome.Failures, fileFailure{Path: fe.Path, Message: fe.Err.Error()})
	}

	if s.metrics || s.unitTest {
		if werr := metrics.AppendTo(report.MetricsFile); werr != nil {
			appLogger.Warn("Failed to write metrics", logger.Error(werr))
		}
	}
	if s.prometheus != "" {
		if werr := metrics.WriteTextfile(s.prometheus); werr != nil {
			appLogger.Warn("Failed to write prometheus metrics", logger.Error(werr))
		}
	}
	return outcome, err
}

// finish writes the structured output, or the closing notes of the text
// output, and turns the error count into the exit status.
func (s *checkSettings) finish(outcome *checkOutcome) error {
	switch s.output {
	case "json":
		encoder := json.NewEncoder(s.stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(outcome); err != nil {
			return errors.Wrap(err, "failed to encode results")
		}
	case "yaml":
		encoder := yaml.NewEncoder(s.stdout)
		defer encoder.Close()
		if err := encoder.Encode(outcome); err != nil {
			return errors.Wrap(err, "failed to encode results")
		}
	default:
		if s.fix && outcome.Updated {
			report.NewPrinter(s.stdout, s.color).Line(report.LightRed, 0,
				"Some files were updated - ensure that they still load correctly in KiCad")
		}
	}
	if outcome.Unresolved > 0 {
		return exitWith(1)
	}
	return nil
}

// watchOrFinish finishes a run, or keeps re-checking changed files when
// --watch is set.
func (s *checkSettings) watchOrFinish(ctx context.Context, outcome *checkOutcome, files []string, check func(context.Context, []string) (*checkOutcome, error)) error {
	if !s.watch {
		return s.finish(outcome)
	}
	if err := s.finish(outcome); err != nil {
		var exit *exitCodeError
		if !errors.As(err, &exit) {
			return err
		}
	}
	return watchFiles(ctx, files, defaultWatchDelay, func(path string) {
		next, err := check(ctx, []string{path})
		if err != nil {
			appLogger.Warn("Re-check failed", logger.File(path), logger.Error(err))
			return
		}
		s.finishRecheck(path, next)
	})
}

// finishRecheck reports a watch re-check. Its exit status is dropped since
// watching goes on; other failures are logged.
func (s *checkSettings) finishRecheck(path string, outcome *checkOutcome) {
	if err := s.finish(outcome); err != nil {
		var exit *exitCodeError
		if !errors.As(err, &exit) {
			appLogger.Warn("Failed to report re-check", logger.File(path), logger.Error(err))
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
