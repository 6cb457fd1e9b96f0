package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ReviewIntake/internal/domain"
	"ReviewIntake/internal/ports"
)

const namespace = "reviewintake"

// Metrics implements ports.Recorder on a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	// Submissions counts handled submissions by outcome
	Submissions *prometheus.CounterVec
	// Statuses counts stored reviews by publication status
	Statuses *prometheus.CounterVec
	// ModerationFallbacks counts moderation calls that fell back to defaults
	ModerationFallbacks *prometheus.CounterVec
}

var _ ports.Recorder = (*Metrics)(nil)

// New registers the intake collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Review submissions handled, by outcome",
			},
			[]string{"outcome"},
		),
		Statuses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_status_total",
				Help:      "Stored reviews by publication status",
			},
			[]string{"status"},
		),
		ModerationFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moderation_fallback_total",
				Help:      "Moderation results replaced by defaults, by reason",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.Submissions,
		m.Statuses,
		m.ModerationFallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// SubmissionHandled implements ports.Recorder.
func (m *Metrics) SubmissionHandled(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ReviewDecided implements ports.Recorder.
func (m *Metrics) ReviewDecided(status domain.Status) {
	m.Statuses.WithLabelValues(string(status)).Inc()
}

// ModerationDefaulted implements ports.Recorder.
func (m *Metrics) ModerationDefaulted(reason string) {
	m.ModerationFallbacks.WithLabelValues(reason).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
