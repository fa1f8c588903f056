// Package metrics holds the Prometheus instruments shared by the services.
// Collectors register with the global registry at init, so the server only
// needs to mount promhttp.Handler().
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	IntrospectionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "introspection_failures_total",
			Help: "Catalog reads that failed and degraded to an empty result.",
		}, []string{"dialect", "stage"})

	StubDescriptorsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stub_descriptors_created_total",
			Help: "Descriptors created empty by create-if-absent resolution.",
		}, []string{"origin"})

	PhysicalDDLFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "physical_ddl_failures_total",
			Help: "DDL statements that failed against a target connection.",
		}, []string{"statement"})

	DagsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dags_generated_total",
			Help: "Rendered artifacts appended to the generation history.",
		})

	TemplateErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "template_errors_total",
			Help: "Templates rejected at parse or render time.",
		})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		IntrospectionFailuresTotal,
		StubDescriptorsCreatedTotal,
		PhysicalDDLFailuresTotal,
		DagsGeneratedTotal,
		TemplateErrorsTotal,
		HTTPRequestDuration,
	)
}
