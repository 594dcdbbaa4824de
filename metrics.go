package di

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors updated by a container.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	disposals     prometheus.Counter
}

// NewMetrics creates the collectors and registers them in reg.
// If reg is nil, the collectors are created but not registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "di",
			Name:      "resolutions_total",
			Help:      "Number of resolutions, by lifetime and outcome.",
		}, []string{"lifetime", "outcome"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "di",
			Name:      "builds_total",
			Help:      "Number of objects built, by lifetime.",
		}, []string{"lifetime"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "di",
			Name:      "build_duration_seconds",
			Help:      "Time spent in Build functions.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		disposals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "di",
			Name:      "disposals_total",
			Help:      "Number of disposed containers.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.resolutions, m.builds, m.buildDuration, m.disposals} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeResolution(l Lifetime, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.resolutions.WithLabelValues(l.String(), outcome).Inc()
}

func (m *Metrics) observeBuild(l Lifetime, start time.Time) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(l.String()).Inc()
	m.buildDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeDisposal() {
	if m == nil {
		return
	}
	m.disposals.Inc()
}
