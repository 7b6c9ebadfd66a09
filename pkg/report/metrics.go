package report

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// MetricsFile is the artifact the checkers append their metrics to.
const MetricsFile = "metrics.txt"

// Metrics collects "<key> <integer>" lines in the order they are added,
// together with the per-entity counts behind them.
type Metrics struct {
	mu       sync.Mutex
	lines    []string
	entities []entityCount
	totals   []entityCount
}

type entityCount struct {
	kind     types.Kind
	library  string
	entity   string
	errors   int
	warnings int
}

// NewMetrics returns an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Add records one metrics line.
func (m *Metrics) Add(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, fmt.Sprintf("%s %d", key, n))
}

// Footprint records the counts of one checked footprint.
func (m *Metrics) Footprint(library, name string, errorCount, warningCount int) {
	m.Add(name+".errors", errorCount)
	m.Add(name+".warnings", warningCount)
	m.entity(entityCount{types.KindFootprint, library, name, errorCount, warningCount})
}

// Symbol records the counts of one checked symbol.
func (m *Metrics) Symbol(library, name string, errorCount, warningCount int) {
	prefix := library + "." + name
	m.Add(prefix+".warnings", warningCount)
	m.Add(prefix+".errors", errorCount)
	m.entity(entityCount{types.KindSymbol, library, name, errorCount, warningCount})
}

// LibraryTotal records the totals of one checked symbol library.
func (m *Metrics) LibraryTotal(library string, errorCount, warningCount int) {
	m.Add(library+".total_errors", errorCount)
	m.Add(library+".total_warnings", warningCount)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals = append(m.totals, entityCount{types.KindSymbol, library, "", errorCount, warningCount})
}

func (m *Metrics) entity(c entityCount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities = append(m.entities, c)
}

// Merge appends everything other collected.
func (m *Metrics) Merge(other *Metrics) {
	if other == nil || other == m {
		return
	}
	other.mu.Lock()
	lines := append([]string(nil), other.lines...)
	entities := append([]entityCount(nil), other.entities...)
	totals := append([]entityCount(nil), other.totals...)
	other.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, lines...)
	m.entities = append(m.entities, entities...)
	m.totals = append(m.totals, totals...)
}

// Lines returns a copy of the collected lines.
func (m *Metrics) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// AppendTo appends the collected lines to the file at path.
func (m *Metrics) AppendTo(path string) error {
	lines := m.Lines()
	if len(lines) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open metrics file %s", path)
	}
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write metrics file %s", path)
	}
	return errors.Wrapf(f.Close(), "failed to close metrics file %s", path)
}
