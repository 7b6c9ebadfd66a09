package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromFlags(t *testing.T) {
	tests := []struct {
		name           string
		verbose, debug bool
		want           slog.Level
	}{
		{"quiet", false, false, slog.LevelWarn},
		{"verbose", true, false, slog.LevelInfo},
		{"debug", false, true, slog.LevelDebug},
		{"both", true, true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFromFlags(tt.verbose, tt.debug))
		})
	}
}

func TestForWorker(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelDebug).ForWorker(3)
	l.Debug("checking file", File("a.kicad_mod"), Error(errors.New("boom")))

	out := buf.String()
	assert.Contains(t, out, "worker=3")
	assert.Contains(t, out, "file=a.kicad_mod")
	assert.Contains(t, out, "error=boom")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
