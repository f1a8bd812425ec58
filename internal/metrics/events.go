package metrics

import "github.com/prometheus/client_golang/prometheus"

// Event pipeline Prometheus metrics.
var (
	EventsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "straindex",
			Name:      "events_ingested_total",
			Help:      "Total number of user events ingested",
		},
		[]string{"category", "status"},
	)

	EventClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "straindex",
			Name:      "event_classifications_total",
			Help:      "Event classification outcomes",
		},
		[]string{"source"}, // "llm" / "fallback" / "cache"
	)

	EventNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "straindex",
			Name:      "event_notifications_total",
			Help:      "In-process event bus notifications delivered",
		},
		[]string{"pattern"}, // "exact" / "category" / "wildcard"
	)

	EventsMirroredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "straindex",
			Name:      "events_mirrored_total",
			Help:      "Events mirrored into the vector store",
		},
		[]string{"status"},
	)
)

var eventMetricsRegistered bool

// RegisterEventMetrics registers event pipeline metrics. Must be called once from main.
func RegisterEventMetrics() {
	if eventMetricsRegistered {
		return
	}
	prometheus.MustRegister(EventsIngestedTotal)
	prometheus.MustRegister(EventClassificationsTotal)
	prometheus.MustRegister(EventNotificationsTotal)
	prometheus.MustRegister(EventsMirroredTotal)
	eventMetricsRegistered = true
}
