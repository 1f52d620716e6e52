package metrics

// Contadores y gauges Prometheus del motor. Registry propio para no
// arrastrar los collectors por defecto a los tests.

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa la instrumentación del motor.
type Metrics struct {
	registry *prometheus.Registry

	Polls        prometheus.Counter
	Observations prometheus.Counter
	Triggers     *prometheus.CounterVec
	FetchErrors  *prometheus.CounterVec
	Results      *prometheus.CounterVec
	LiveGames    prometheus.Gauge
	Confidence   prometheus.Histogram
}

// New crea un set de métricas sobre un registry limpio.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Polls: factory.NewCounter(prometheus.CounterOpts{
			Name: "courtpulse_polls_total",
			Help: "Ciclos de polling completados.",
		}),
		Observations: factory.NewCounter(prometheus.CounterOpts{
			Name: "courtpulse_observations_total",
			Help: "Observaciones registradas en el log.",
		}),
		Triggers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "courtpulse_triggers_total",
			Help: "Señales disparadas, por lado.",
		}, []string{"side"}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "courtpulse_fetch_errors_total",
			Help: "Errores de fetch, por proveedor.",
		}, []string{"provider"}),
		Results: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "courtpulse_results_total",
			Help: "Partidos reconciliados, por desenlace.",
		}, []string{"outcome"}),
		LiveGames: factory.NewGauge(prometheus.GaugeOpts{
			Name: "courtpulse_live_games",
			Help: "Partidos en juego en el último ciclo.",
		}),
		Confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtpulse_trigger_confidence",
			Help:    "Distribución del score de confianza en triggers.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

// Handler devuelve el handler HTTP de /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
