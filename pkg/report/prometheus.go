package report

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Gauges exposes the collected counts as Prometheus gauges.
type Gauges struct {
	EntityErrors    *prometheus.GaugeVec
	EntityWarnings  *prometheus.GaugeVec
	LibraryErrors   *prometheus.GaugeVec
	LibraryWarnings *prometheus.GaugeVec
}

// NewGauges creates and registers the checker gauges.
func NewGauges(registry prometheus.Registerer) *Gauges {
	g := &Gauges{
		EntityErrors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "klc_entity_errors",
				Help: "Number of KLC errors of a footprint or symbol",
			},
			[]string{"kind", "library", "entity"},
		),
		EntityWarnings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "klc_entity_warnings",
				Help: "Number of KLC warnings of a footprint or symbol",
			},
			[]string{"kind", "library", "entity"},
		),
		LibraryErrors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "klc_library_errors",
				Help: "Total number of KLC errors of a symbol library",
			},
			[]string{"library"},
		),
		LibraryWarnings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "klc_library_warnings",
				Help: "Total number of KLC warnings of a symbol library",
			},
			[]string{"library"},
		),
	}
	registry.MustRegister(g.EntityErrors, g.EntityWarnings, g.LibraryErrors, g.LibraryWarnings)
	return g
}

// Observe sets the gauges from everything m collected. Later counts of the
// same entity replace earlier ones.
func (g *Gauges) Observe(m *Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.entities {
		g.EntityErrors.WithLabelValues(string(c.kind), c.library, c.entity).Set(float64(c.errors))
		g.EntityWarnings.WithLabelValues(string(c.kind), c.library, c.entity).Set(float64(c.warnings))
	}
	for _, c := range m.totals {
		g.LibraryErrors.WithLabelValues(c.library).Set(float64(c.errors))
		g.LibraryWarnings.WithLabelValues(c.library).Set(float64(c.warnings))
	}
}

// WriteTextfile writes the collected counts in the Prometheus text format,
// for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	registry := prometheus.NewRegistry()
	NewGauges(registry).Observe(m)
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return errors.Wrapf(err, "failed to write prometheus textfile %s", path)
	}
	return nil
}
