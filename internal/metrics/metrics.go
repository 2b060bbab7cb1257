// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wizard"

// Metrics holds the server's collectors. It satisfies game.Observer.
type Metrics struct {
	OnlinePlayers    prometheus.Gauge
	MessagesReceived *prometheus.CounterVec
	TricksResolved   prometheus.Counter
	GamesFinished    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry. activeGames is sampled
// on every scrape.
func New(activeGames func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected players",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound websocket messages by type",
		}, []string{"type"}),
		TricksResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tricks_resolved_total",
			Help:      "Tricks resolved across all games",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached the final round",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.OnlinePlayers,
		m.MessagesReceived,
		m.TricksResolved,
		m.GamesFinished,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of open and running games",
		}, func() float64 {
			if activeGames == nil {
				return 0
			}
			return float64(activeGames())
		}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) IncOnlinePlayers() { m.OnlinePlayers.Inc() }

func (m *Metrics) DecOnlinePlayers() { m.OnlinePlayers.Dec() }

func (m *Metrics) IncMessagesReceived(msgType string) {
	m.MessagesReceived.WithLabelValues(msgType).Inc()
}

func (m *Metrics) TrickResolved() { m.TricksResolved.Inc() }

func (m *Metrics) GameFinished() { m.GamesFinished.Inc() }
