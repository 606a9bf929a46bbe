package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kitty",
	Subsystem: "api",
	Name:      "operations_total",
	Help:      "Mutating kitty operations by type and outcome.",
}, []string{"op", "outcome"})

func trackOp(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	opsCounter.WithLabelValues(op, outcome).Inc()
}
