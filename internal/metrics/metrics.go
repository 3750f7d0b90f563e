package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_decisions_total",
			Help: "Total number of approval decisions by transaction type, outcome and result",
		},
		[]string{"type", "outcome", "result"},
	)

	DecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exchange_decision_duration_seconds",
			Help:    "Duration of the approval commit",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"type"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_notifications_total",
			Help: "Total number of published notifications",
		},
		[]string{"kind", "result"},
	)

	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exchange_ws_clients",
			Help: "Number of connected websocket clients",
		},
	)

	ChainChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_chain_checks_total",
			Help: "Total number of deposit hash lookups by resulting chain status",
		},
		[]string{"status"},
	)
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Result maps err to the result label value.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func Handler() http.Handler {
	return promhttp.Handler()
}
