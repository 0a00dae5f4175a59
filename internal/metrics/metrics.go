package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace for all Slanup metrics
const namespace = "slanup"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// AppInfo exposes application version information as labels (always set to 1)
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "backend"},
)

// EventsCreatedTotal counts events accepted into the directory by backend
var EventsCreatedTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_created_total",
		Help:      "Total number of events created",
	},
	[]string{"backend"},
)

// EventsListQueriesTotal counts discovery queries by which filters were active
var EventsListQueriesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_list_queries_total",
		Help:      "Total number of event list queries",
	},
	[]string{"filter"},
)

// GeocodingRequestsTotal counts geocoding lookups by operation and outcome
var GeocodingRequestsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocoding_requests_total",
		Help:      "Total number of geocoding requests",
	},
	[]string{"operation", "status"},
)

// Init records application version info after startup.
func Init(version, commit, backend string) {
	AppInfo.WithLabelValues(version, commit, backend).Set(1)
}

// Handler serves the registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
