package router

import "github.com/prometheus/client_golang/prometheus"

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orion_logger_requests_total",
		Help: "Requests handled by the logger server",
	},
	[]string{"command"},
)
