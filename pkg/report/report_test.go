package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/klc-reviewer/pkg/reviewer"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func footprintResult() *reviewer.ReviewResult {
	return &reviewer.ReviewResult{
		Kind:    types.KindFootprint,
		Entity:  "SOIC-8_3.9x4.9mm_P1.27mm",
		Library: "Package_SO",
		Checked: []string{"F5.1", "F7.6", "G1.7"},
		Rules: []reviewer.RuleReport{
			{
				ID:     "F7.6",
				Title:  "Minimum drill hole size",
				URL:    "https://klc.kicad.org/footprint/f7/f7.6/",
				Level:  types.RuleLevel_ERROR,
				Errors: 1,
				Messages: []types.Message{{
					Severity: types.Message_ERROR,
					Text:     "Pad 1 drill too small",
					Extra:    []string{"0.15mm < 0.2mm"},
				}},
			},
		},
		Summary: reviewer.Summary{Errors: 1, Rules: 3},
	}
}

func TestPrinterReview(t *testing.T) {
	tests := []struct {
		name     string
		result   *reviewer.ReviewResult
		opts     RenderOptions
		expected string
	}{
		{
			name:   "violations",
			result: footprintResult(),
			expected: "Checking footprint 'SOIC-8_3.9x4.9mm_P1.27mm':\n" +
				"  Violating F7.6 - https://klc.kicad.org/footprint/f7/f7.6/\n" +
				"    Pad 1 drill too small\n",
		},
		{
			name:   "verbose",
			result: footprintResult(),
			opts:   RenderOptions{Verbosity: 1},
			expected: "Checking footprint 'SOIC-8_3.9x4.9mm_P1.27mm':\n" +
				"  Violating F7.6 - https://klc.kicad.org/footprint/f7/f7.6/\n" +
				"    Minimum drill hole size\n" +
				"    Pad 1 drill too small\n" +
				"      0.15mm < 0.2mm\n",
		},
		{
			name:   "announce rules",
			result: footprintResult(),
			opts:   RenderOptions{Verbosity: 2},
			expected: "Checking rule F5.1\n" +
				"Checking rule F7.6\n" +
				"Checking footprint 'SOIC-8_3.9x4.9mm_P1.27mm':\n" +
				"  Violating F7.6 - https://klc.kicad.org/footprint/f7/f7.6/\n" +
				"    Minimum drill hole size\n" +
				"    Pad 1 drill too small\n" +
				"      0.15mm < 0.2mm\n" +
				"Checking rule G1.7\n",
		},
		{
			name:     "clean symbol",
			result:   &reviewer.ReviewResult{Kind: types.KindSymbol, Entity: "LM358", Library: "Amplifier_Operational", Checked: []string{"S3.1"}},
			expected: "Checking symbol 'Amplifier_Operational:LM358' - No errors\n",
		},
		{
			name:   "clean and silent",
			result: &reviewer.ReviewResult{Kind: types.KindSymbol, Entity: "LM358", Library: "Amplifier_Operational"},
			opts:   RenderOptions{Silent: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			NewPrinter(&out, false).Review(tt.result, tt.opts)
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestPrinterUnitTest(t *testing.T) {
	tests := []struct {
		name     string
		ut       *reviewer.UnitTestResult
		expected string
	}{
		{"unparsed", &reviewer.UnitTestResult{Name: "broken"}, "Test 'broken' could not be parsed\n"},
		{"passed", &reviewer.UnitTestResult{Name: "Fail__F7.6__small", Parsed: true, Passed: true}, "Test 'Fail__F7.6__small' passed\n"},
		{"failed", &reviewer.UnitTestResult{Name: "Pass__F7.6__ok", Parsed: true}, "Test 'Pass__F7.6__ok' failed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			NewPrinter(&out, false).Review(&reviewer.ReviewResult{UnitTest: tt.ut}, RenderOptions{})
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestPrinterColor(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, true)
	p.Red(2, "bad %d", 1)
	p.Regular(0, "plain")

	assert.Equal(t, "  "+string(Red)+"bad 1"+string(Reset)+"\nplain\n", out.String())
}

func TestBufferedPrinterFlush(t *testing.T) {
	var (
		out bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := NewBufferedPrinter(false)
			p.Green(0, "worker %d", i)
			p.Yellow(2, "line two")
			assert.NoError(t, p.Flush(&out, &mu))
			assert.Empty(t, p.Buffered())
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 16)
	for i := 0; i < len(lines); i += 2 {
		assert.True(t, strings.HasPrefix(lines[i], "worker "), "line %d = %q", i, lines[i])
		assert.Equal(t, "  line two", lines[i+1])
	}
}

func TestErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	log := NewErrorLog(path)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, log.Write(types.ErrorRecord{Rule: "F7.6", Library: "Package_SO", Entity: "SOIC-8"}))
		}()
	}
	wg.Wait()
	require.NoError(t, log.Write())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec types.ErrorRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		assert.Equal(t, types.ErrorRecord{Rule: "F7.6", Library: "Package_SO", Entity: "SOIC-8"}, rec)
		count++
	}
	assert.Equal(t, 10, count)

	var nilLog *ErrorLog
	assert.NoError(t, nilLog.Write(types.ErrorRecord{Rule: "S3.1"}))
}

func TestMetricsLines(t *testing.T) {
	m := NewMetrics()
	m.Footprint("Package_SO", "SOIC-8", 2, 1)

	sym := NewMetrics()
	sym.Symbol("Device", "R", 0, 3)
	sym.LibraryTotal("Device", 0, 3)
	m.Merge(sym)
	m.Merge(nil)
	m.Merge(m)

	expected := []string{
		"SOIC-8.errors 2",
		"SOIC-8.warnings 1",
		"Device.R.warnings 3",
		"Device.R.errors 0",
		"Device.total_errors 0",
		"Device.total_warnings 3",
	}
	assert.Equal(t, expected, m.Lines())

	path := filepath.Join(t.TempDir(), MetricsFile)
	require.NoError(t, os.WriteFile(path, []byte("previous 1\n"), 0o644))
	require.NoError(t, m.AppendTo(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous 1\n"+strings.Join(expected, "\n")+"\n", string(data))
}

func TestGauges(t *testing.T) {
	m := NewMetrics()
	m.Symbol("Device", "R", 1, 0)
	m.Symbol("Device", "R", 0, 2)
	m.LibraryTotal("Device", 1, 2)

	registry := prometheus.NewRegistry()
	g := NewGauges(registry)
	g.Observe(m)

	assert.Equal(t, 1, testutil.CollectAndCount(g.EntityErrors))
	expected := `
# HELP klc_entity_warnings Number of KLC warnings of a footprint or symbol
# TYPE klc_entity_warnings gauge
klc_entity_warnings{entity="R",kind="symbol",library="Device"} 2
`
	assert.NoError(t, testutil.CollectAndCompare(g.EntityWarnings, strings.NewReader(expected)))
	assert.Equal(t, float64(1), testutil.ToFloat64(g.LibraryErrors.WithLabelValues("Device")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Footprint("Package_SO", "SOIC-8", 2, 0)

	path := filepath.Join(t.TempDir(), "klc.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `klc_entity_errors{entity="SOIC-8",kind="footprint",library="Package_SO"} 2`)
}
