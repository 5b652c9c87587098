package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for document generation.
type Metrics struct {
	// Successful generations by form type
	Generated *prometheus.CounterVec

	// Failed generations by form type and stage ("render", "register")
	Failures *prometheus.CounterVec

	// Guide outcomes by form type: "drafted" or "degraded"
	Guides *prometheus.CounterVec

	// Full generation latency, guide drafting included
	GenerateLatency *prometheus.HistogramVec
}

// New registers the generation metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Generated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "praticai_documents_generated_total",
			Help: "Documents generated by form type",
		}, []string{"form_type"}),

		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "praticai_generation_failures_total",
			Help: "Document generation failures by form type and stage",
		}, []string{"form_type", "stage"}),

		Guides: f.NewCounterVec(prometheus.CounterOpts{
			Name: "praticai_guides_total",
			Help: "Guide drafting outcomes by form type",
		}, []string{"form_type", "outcome"}),

		GenerateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "praticai_generate_duration_seconds",
			Help:    "Duration of a generation request including PDF rendering and guide drafting",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"form_type"}),
	}
}

// IncrementGenerated records a generated document.
func (m *Metrics) IncrementGenerated(formType string) {
	if m != nil {
		m.Generated.WithLabelValues(formType).Inc()
	}
}

// IncrementFailure records a failed generation at stage.
func (m *Metrics) IncrementFailure(formType, stage string) {
	if m != nil {
		m.Failures.WithLabelValues(formType, stage).Inc()
	}
}

// IncrementGuide records a guide outcome.
func (m *Metrics) IncrementGuide(formType string, degraded bool) {
	if m == nil {
		return
	}
	outcome := "drafted"
	if degraded {
		outcome = "degraded"
	}
	m.Guides.WithLabelValues(formType, outcome).Inc()
}

// ObserveGenerateLatency records the total generation duration.
func (m *Metrics) ObserveGenerateLatency(formType string, d time.Duration) {
	if m != nil {
		m.GenerateLatency.WithLabelValues(formType).Observe(d.Seconds())
	}
}
