package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "openaccess",
	Name:      "gateway_requests_total",
	Help:      "Number of calls made to the Open Access API, by operation and outcome",
}, []string{"operation", "outcome"})
