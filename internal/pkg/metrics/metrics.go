package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmslink_events_published_total",
		Help: "Integration events published to the broker, by event kind.",
	}, []string{"kind"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmslink_publish_failures_total",
		Help: "Publish attempts that surfaced a transport error, by event kind.",
	}, []string{"kind"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmslink_events_consumed_total",
		Help: "Deliveries acknowledged after successful handling, by queue.",
	}, []string{"queue"})

	HandlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wmslink_handler_failures_total",
		Help: "Deliveries rejected because decoding or handling failed, by queue.",
	}, []string{"queue"})
)
