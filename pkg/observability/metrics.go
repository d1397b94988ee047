// Package observability exposes the sequencer's Prometheus metrics, fed
// through the runner's lifecycle hooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/duvall/marquee/pkg/domain"
)

// Metrics holds the sequencer's instrument set.
type Metrics struct {
	SequencesStarted   *prometheus.CounterVec
	SequencesCompleted *prometheus.CounterVec
	SequencesSkipped   *prometheus.CounterVec
	SequenceDuration   *prometheus.HistogramVec
	QueueDepth         prometheus.Gauge
}

// NewMetrics creates and registers the instrument set. Pass
// prometheus.DefaultRegisterer outside tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SequencesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "sequences_started_total",
			Help:      "Sequence runs started, by family.",
		}, []string{"family"}),
		SequencesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "sequences_completed_total",
			Help:      "Sequence runs that played every phase, by family.",
		}, []string{"family"}),
		SequencesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marquee",
			Name:      "sequences_skipped_total",
			Help:      "Sequence runs cut short by a skip, by family.",
		}, []string{"family"}),
		SequenceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marquee",
			Name:      "sequence_duration_seconds",
			Help:      "Wall-clock duration of sequence runs, by family.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"family"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marquee",
			Name:      "cutin_queue_depth",
			Help:      "Cut-in payloads waiting in the queue.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.SequencesStarted,
			m.SequencesCompleted,
			m.SequencesSkipped,
			m.SequenceDuration,
			m.QueueDepth,
		)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the instruments. Join them with
// any user hooks via domain.JoinHooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequenceStart: func(_ context.Context, ev *domain.SequenceEvent) {
			m.SequencesStarted.WithLabelValues(ev.Family).Inc()
		},
		OnCleanup: func(_ context.Context, ev *domain.SequenceEvent) {
			if ev.Skipped {
				m.SequencesSkipped.WithLabelValues(ev.Family).Inc()
			} else {
				m.SequencesCompleted.WithLabelValues(ev.Family).Inc()
			}
			m.SequenceDuration.WithLabelValues(ev.Family).Observe(ev.Elapsed.Seconds())
		},
	}
}
