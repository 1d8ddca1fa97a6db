// Package metrics holds the prometheus collectors for the form runtime.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avirbig/cohen-services-hub/internal/model"
)

// Form holds the form runtime collectors.
type Form struct {
	submissions        *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	rejections         *prometheus.CounterVec
	decodeFailures     prometheus.Counter
}

// NewForm creates the collectors and registers them with reg.
func NewForm(reg prometheus.Registerer) (*Form, error) {
	m := &Form{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_submissions_total",
				Help: "Total number of form submissions by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		submissionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "form_submission_duration_seconds",
				Help:    "Time spent waiting for the intake endpoint.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_attachment_rejections_total",
				Help: "Candidate files refused by the attachment store, by reason.",
			},
			[]string{"reason"},
		),
		decodeFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "form_preview_decode_failures_total",
				Help: "Attachments whose preview thumbnail could not be produced.",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.submissions, m.submissionDuration, m.rejections, m.decodeFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Discard returns collectors registered nowhere.
func Discard() *Form {
	m, _ := NewForm(prometheus.NewRegistry())
	return m
}

func (m *Form) ObserveSubmission(backend, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(backend, outcome).Inc()
	m.submissionDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

func (m *Form) ObserveRejection(reason model.RejectionReason) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(string(reason)).Inc()
}

func (m *Form) ObserveDecodeFailure() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}
