package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/klc-reviewer/pkg/logger"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func TestExitWith(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{0, 0},
		{-3, 0},
		{1, 1},
		{42, 42},
		{256, 255},
		{1000, 255},
	}
	for _, tt := range tests {
		err := exitWith(tt.status)
		if tt.want == 0 {
			assert.NoError(t, err, "status %d", tt.status)
			continue
		}
		var exit *exitCodeError
		require.True(t, errors.As(err, &exit), "status %d", tt.status)
		assert.Equal(t, tt.want, exit.code)
	}
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.kicad_mod", "b.kicad_mod", "c.kicad_sym"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	missing := filepath.Join(dir, "missing.kicad_mod")
	files := expandFiles([]string{filepath.Join(dir, "*.kicad_mod"), missing})
	assert.Equal(t, []string{
		filepath.Join(dir, "a.kicad_mod"),
		filepath.Join(dir, "b.kicad_mod"),
		missing,
	}, files)
}

func TestSelects(t *testing.T) {
	tests := []struct {
		name      string
		component string
		pattern   string
		symbol    string
		want      bool
	}{
		{name: "no filter", symbol: "LM358", want: true},
		{name: "component matches case-insensitively", component: "lm358", symbol: "LM358", want: true},
		{name: "component differs", component: "LM324", symbol: "LM358", want: false},
		{name: "pattern matches", pattern: "(?i)^lm3", symbol: "LM358", want: true},
		{name: "pattern misses", pattern: "(?i)^tl0", symbol: "LM358", want: false},
		{name: "both must match", component: "LM358", pattern: "(?i)^tl0", symbol: "LM358", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &checkSettings{component: tt.component}
			if tt.pattern != "" {
				s.pattern = regexp.MustCompile(tt.pattern)
			}
			assert.Equal(t, tt.want, s.selects(tt.symbol))
		})
	}
}

func TestListRules(t *testing.T) {
	all := listRules("")
	footprints := listRules(types.KindFootprint)
	symbols := listRules(types.KindSymbol)

	require.NotEmpty(t, footprints)
	require.NotEmpty(t, symbols)
	assert.Len(t, all, len(footprints)+len(symbols))
	for _, r := range footprints {
		assert.Equal(t, types.KindFootprint, r.Kind)
		assert.NotEmpty(t, r.Title, r.ID)
		assert.Contains(t, []string{"ERROR", "WARNING", "DISABLED"}, r.Level, r.ID)
	}
}

func TestWriteRules(t *testing.T) {
	rules := []ruleInfo{
		{ID: "F5.1", Kind: types.KindFootprint, Title: "Silkscreen layer requirements", Level: "ERROR"},
		{ID: "S3.1", Kind: types.KindSymbol, Title: "Origin is centered on the middle of the symbol", Level: "WARNING"},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRules(&buf, rules, "text"))
		assert.Contains(t, buf.String(), "ID    KIND       LEVEL    TITLE")
		assert.Contains(t, buf.String(), "S3.1  symbol     WARNING  Origin")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRules(&buf, rules, "json"))
		var decoded []ruleInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, rules, decoded)
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, writeRules(&bytes.Buffer{}, rules, "xml"))
	})
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.kicad_mod")
	other := filepath.Join(dir, "other.kicad_mod")
	require.NoError(t, os.WriteFile(watched, []byte("(module a)"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rechecked := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{watched}, 20*time.Millisecond, func(path string) {
			select {
			case rechecked <- path:
			default:
			}
		})
	}()

	abs, err := filepath.Abs(watched)
	require.NoError(t, err)

	// The watcher is set up asynchronously; keep writing until it reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for seen := false; !seen; {
		select {
		case path := <-rechecked:
			assert.Equal(t, abs, path)
			seen = true
		case <-tick.C:
			require.NoError(t, os.WriteFile(other, []byte("(module b)"), 0o644))
			require.NoError(t, os.WriteFile(watched, []byte("(module a)"), 0o644))
		case <-deadline:
			t.Fatal("no re-check after writing the watched file")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestFinishExitStatus(t *testing.T) {
	tests := []struct {
		name     string
		outcome  checkOutcome
		wantExit bool
	}{
		{name: "clean", outcome: checkOutcome{}},
		{name: "every error fixed", outcome: checkOutcome{Errors: 3, Updated: true}},
		{name: "errors left after fixing", outcome: checkOutcome{Errors: 3, Unresolved: 1}, wantExit: true},
		{name: "warnings only", outcome: checkOutcome{Warnings: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := &checkSettings{output: "text", fix: true, stdout: &buf}
			err := s.finish(&tt.outcome)
			if !tt.wantExit {
				assert.NoError(t, err)
				return
			}
			var exit *exitCodeError
			require.True(t, errors.As(err, &exit))
			assert.Equal(t, 1, exit.code)
		})
	}
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestFinishRecheckLogsFailures(t *testing.T) {
	var logs bytes.Buffer
	saved := appLogger
	appLogger = logger.NewWithWriter(&logs, slog.LevelDebug)
	defer func() { appLogger = saved }()

	s := &checkSettings{output: "json", stdout: failingWriter{}}
	s.finishRecheck("a.kicad_mod", &checkOutcome{Unresolved: 1})
	assert.Contains(t, logs.String(), "Failed to report re-check")
	assert.Contains(t, logs.String(), "disk full")

	logs.Reset()
	s = &checkSettings{output: "text", stdout: &bytes.Buffer{}}
	s.finishRecheck("a.kicad_mod", &checkOutcome{Unresolved: 1})
	assert.Empty(t, logs.String(), "a failing exit status is not a reporting error")
}
