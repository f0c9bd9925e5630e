package adapter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeHonored     = "honored"
	outcomePushedDown  = "pushed_down"
	outcomeUnsupported = "unsupported"
)

// Metrics may be shared by many adapters. A nil registerer leaves them unregistered.
type Metrics struct {
	produceCalls  *prometheus.CounterVec
	rowsScanned   *prometheus.CounterVec
	rowsProduced  *prometheus.CounterVec
	qualifiers    *prometheus.CounterVec
	produceErrors *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		produceCalls: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "timelyfdw",
			Name:      "produce_calls_total",
			Help:      "Total number of produce calls.",
		}, []string{"source"}),
		rowsScanned: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "timelyfdw",
			Name:      "rows_scanned_total",
			Help:      "Total number of rows read from sources, before filtering.",
		}, []string{"source"}),
		rowsProduced: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "timelyfdw",
			Name:      "rows_produced_total",
			Help:      "Total number of rows yielded to callers.",
		}, []string{"source"}),
		qualifiers: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "timelyfdw",
			Name:      "qualifiers_total",
			Help:      "Total number of qualifiers received, by outcome.",
		}, []string{"source", "outcome"}),
		produceErrors: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: "timelyfdw",
			Name:      "produce_errors_total",
			Help:      "Total number of failed produce calls and row streams, by error kind.",
		}, []string{"source", "kind"}),
	}
}
