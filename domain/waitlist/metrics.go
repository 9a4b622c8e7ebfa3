package waitlist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type submissionMetrics struct {
	submissions *prometheus.CounterVec
}

func newSubmissionMetrics(reg prometheus.Registerer) *submissionMetrics {
	m := &submissionMetrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_submissions_total",
				Help: "Waitlist submissions by form source and outcome.",
			},
			[]string{"source", "outcome"},
		),
	}

	if reg == nil {
		return m
	}

	if err := reg.Register(m.submissions); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				m.submissions = existing
			}
		}
	}

	return m
}

func (m *submissionMetrics) observe(source Source, outcome string) {
	if !source.Valid() {
		source = "invalid"
	}
	m.submissions.WithLabelValues(string(source), outcome).Inc()
}
