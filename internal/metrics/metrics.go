package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerOperations counts deposit/withdraw attempts by outcome.
	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atmcore_ledger_operations_total",
		Help: "Ledger mutations by type and outcome.",
	}, []string{"type", "outcome"})

	// AuthAttempts counts login attempts. Failures are not broken down
	// further so the metric leaks nothing about why a login failed.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atmcore_auth_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// ActiveSessions tracks the size of the session registry.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "atmcore_active_sessions",
		Help: "Number of live authenticated sessions.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
