// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups every collector so tests can use a private registry.
type Metrics struct {
	Registry         *prometheus.Registry
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	Submissions      *prometheus.CounterVec
	Grades           *prometheus.CounterVec
	Enrollments      *prometheus.CounterVec
	ForumWrites      *prometheus.CounterVec
	ForumConflicts   prometheus.Counter
	IdentityWebhooks *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnhub_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_submissions_total",
			Help: "Assignment submissions by resulting status.",
		}, []string{"status"}),
		Grades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_grades_total",
			Help: "Grades awarded by grade.",
		}, []string{"grade"}),
		Enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_enrollments_total",
			Help: "Enrollment changes by action.",
		}, []string{"action"}),
		ForumWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_forum_writes_total",
			Help: "Forum mutations by operation.",
		}, []string{"op"}),
		ForumConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learnhub_forum_version_conflicts_total",
			Help: "Forum writes retried because another write won.",
		}),
		IdentityWebhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnhub_identity_webhooks_total",
			Help: "Identity provider webhook events by type and outcome.",
		}, []string{"type", "outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests, m.RequestDuration, m.Submissions, m.Grades,
		m.Enrollments, m.ForumWrites, m.ForumConflicts, m.IdentityWebhooks,
	)
	return m
}
