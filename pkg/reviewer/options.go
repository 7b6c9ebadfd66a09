package reviewer

// ReviewOption is a functional option for customizing review behavior.
type ReviewOption func(*reviewOptions)

// reviewOptions holds optional configuration for a review operation.
type reviewOptions struct {
	fix           bool
	fixMore       bool
	rotate        float64
	include       []string
	exclude       []string
	footprintsDir string
	noWarnings    bool
	unitTest      bool
	verbosity     int
}

// WithFix repairs violations a rule knows how to repair safely. Every rule
// that raised an error is fixed and rechecked.
func WithFix(fix bool) ReviewOption {
	return func(opts *reviewOptions) {
		opts.fix = fix
	}
}

// WithFixMore additionally applies repairs that alter geometry, such as
// replacing a broken courtyard with a rectangle. It implies WithFix.
func WithFixMore(fixMore bool) ReviewOption {
	return func(opts *reviewOptions) {
		opts.fixMore = fixMore
		if fixMore {
			opts.fix = true
		}
	}
}

// WithRotate rotates a footprint clockwise by deg degrees before checking.
// It has no effect on symbols.
func WithRotate(deg float64) ReviewOption {
	return func(opts *reviewOptions) {
		opts.rotate = deg
	}
}

// WithRules restricts the review to the given rule ids.
//
// Example:
//
//	result, err := r.ReviewSymbol(ctx, sym, WithRules("S3.1", "EC02"))
func WithRules(ids ...string) ReviewOption {
	return func(opts *reviewOptions) {
		opts.include = append(opts.include, ids...)
	}
}

// WithExclude skips the given rule ids.
func WithExclude(ids ...string) ReviewOption {
	return func(opts *reviewOptions) {
		opts.exclude = append(opts.exclude, ids...)
	}
}

// WithFootprintsDir points S5.1 at a directory of .pretty libraries used to
// verify that symbol footprints exist.
func WithFootprintsDir(dir string) ReviewOption {
	return func(opts *reviewOptions) {
		opts.footprintsDir = dir
	}
}

// WithNoWarnings drops reports of rules that raised warnings only.
func WithNoWarnings(noWarnings bool) ReviewOption {
	return func(opts *reviewOptions) {
		opts.noWarnings = noWarnings
	}
}

// WithUnitTest switches to unit test mode: the entity name encodes the
// expected outcome of a single rule, as in "Fail__S4.1__pin_off_grid".
func WithUnitTest(unitTest bool) ReviewOption {
	return func(opts *reviewOptions) {
		opts.unitTest = unitTest
	}
}

// WithVerbosity is handed to the rules and controls how much a printer
// shows of the result.
func WithVerbosity(v int) ReviewOption {
	return func(opts *reviewOptions) {
		opts.verbosity = v
	}
}
