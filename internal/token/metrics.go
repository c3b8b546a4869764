package token

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tokenRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "openaccess",
	Name:      "token_requests_total",
	Help:      "Number of access token requests sent to the Spotify Accounts service, by grant type and outcome",
}, []string{"grant_type", "outcome"})
