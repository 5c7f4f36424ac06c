package application

import "github.com/prometheus/client_golang/prometheus"

var (
	pointsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orion_logger_points_stored_total",
			Help: "Measurement points appended to data files",
		},
	)
	pointsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orion_logger_points_failed_total",
			Help: "Measurement points that could not be stored",
		},
	)
	forwardFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orion_logger_forward_failures_total",
			Help: "Measurement points that could not be forwarded",
		},
		[]string{"forwarder"},
	)
)

func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		pointsStored,
		pointsFailed,
		forwardFailures,
	}
}
