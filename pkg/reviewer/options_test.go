package reviewer

import (
	"reflect"
	"testing"
)

func TestWithFix(t *testing.T) {
	opts := &reviewOptions{}
	WithFix(true)(opts)

	if !opts.fix {
		t.Error("WithFix() did not enable fixing")
	}
	if opts.fixMore {
		t.Error("WithFix() must not enable fixmore")
	}
}

func TestWithFixMore(t *testing.T) {
	tests := []struct {
		name        string
		fixMore     bool
		wantFix     bool
		wantFixMore bool
	}{
		{name: "enabled implies fix", fixMore: true, wantFix: true, wantFixMore: true},
		{name: "disabled", fixMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &reviewOptions{}
			WithFixMore(tt.fixMore)(opts)
			if opts.fix != tt.wantFix || opts.fixMore != tt.wantFixMore {
				t.Errorf("fix=%v fixMore=%v, want fix=%v fixMore=%v", opts.fix, opts.fixMore, tt.wantFix, tt.wantFixMore)
			}
		})
	}
}

func TestWithRulesAndExclude(t *testing.T) {
	opts := &reviewOptions{}
	WithRules("F5.1", "F5.3")(opts)
	WithRules("F7.6")(opts)
	WithExclude("F5.3")(opts)

	if want := []string{"F5.1", "F5.3", "F7.6"}; !reflect.DeepEqual(opts.include, want) {
		t.Errorf("include = %v, want %v", opts.include, want)
	}
	if want := []string{"F5.3"}; !reflect.DeepEqual(opts.exclude, want) {
		t.Errorf("exclude = %v, want %v", opts.exclude, want)
	}
}

func TestScalarOptions(t *testing.T) {
	opts := &reviewOptions{}
	for _, opt := range []ReviewOption{
		WithRotate(90),
		WithFootprintsDir("/usr/share/kicad/footprints"),
		WithNoWarnings(true),
		WithUnitTest(true),
		WithVerbosity(2),
	} {
		opt(opts)
	}

	if opts.rotate != 90 {
		t.Errorf("rotate = %v, want 90", opts.rotate)
	}
	if opts.footprintsDir != "/usr/share/kicad/footprints" {
		t.Errorf("footprintsDir = %q", opts.footprintsDir)
	}
	if !opts.noWarnings || !opts.unitTest {
		t.Errorf("noWarnings=%v unitTest=%v, want both set", opts.noWarnings, opts.unitTest)
	}
	if opts.verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", opts.verbosity)
	}
}
