package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for artifact lookup and cleanup.
type Metrics struct {
	// Downloads by how the file was located: "registry", "scan", "not_found"
	Downloads *prometheus.CounterVec

	// Files removed by the cleanup sweeper
	Swept prometheus.Counter

	// Sweeper passes that failed to list the output directory
	SweepErrors prometheus.Counter
}

// New registers the artifact metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Downloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "praticai_downloads_total",
			Help: "Download requests by resolution path",
		}, []string{"resolution"}),

		Swept: f.NewCounter(prometheus.CounterOpts{
			Name: "praticai_artifacts_swept_total",
			Help: "Generated files deleted after the retention window",
		}),

		SweepErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "praticai_artifact_sweep_errors_total",
			Help: "Cleanup passes that could not list the output directory",
		}),
	}
}

// IncrementDownload records how a download request was resolved.
func (m *Metrics) IncrementDownload(resolution string) {
	if m != nil {
		m.Downloads.WithLabelValues(resolution).Inc()
	}
}

// AddSwept records deleted files.
func (m *Metrics) AddSwept(n int) {
	if m != nil {
		m.Swept.Add(float64(n))
	}
}

// IncrementSweepError records a failed cleanup pass.
func (m *Metrics) IncrementSweepError() {
	if m != nil {
		m.SweepErrors.Inc()
	}
}
