package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all service metrics
const namespace = "ourevents"

// Registry is the Prometheus registry every metric of the service is registered on.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Domain metrics
var (
	// RegistrationsTotal counts registration transitions by action and outcome
	RegistrationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration state transitions by action (register, unregister) and result",
		},
		[]string{"action", "result"},
	)

	// ListingCacheRequests counts listing cache lookups by result (hit, miss, error)
	ListingCacheRequests = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_cache_requests_total",
			Help:      "Event listing cache lookups by result",
		},
		[]string{"result"},
	)
)
