/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Seednode/chronomatch/games/matching"
)

const metricsNamespace = "chronomatch"

type gameMetrics struct {
	registry *prometheus.Registry

	gamesActive      prometheus.Gauge
	matchesCreated   prometheus.Counter
	submissions      *prometheus.CounterVec
	completions      prometheus.Counter
	socketMessages   *prometheus.CounterVec
	playersConnected prometheus.Gauge
}

// newMetrics registers every game metric on a fresh registry, so tests and
// servers never share counters.
func newMetrics() *gameMetrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &gameMetrics{
		registry: reg,
		gamesActive: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "games_active",
			Help:      "Number of games with a live hub",
		}),
		matchesCreated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "matches_created_total",
			Help:      "Total number of date/event matches formed by players",
		}),
		submissions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "submissions_total",
			Help:      "Total number of graded submissions by outcome",
		}, []string{"outcome"}),
		completions: auto.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "completions_total",
			Help:      "Total number of periods matched completely and correctly",
		}),
		socketMessages: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ws_messages_total",
			Help:      "Total number of websocket messages received by type",
		}, []string{"type"}),
		playersConnected: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "players_connected",
			Help:      "Number of open websocket connections",
		}),
	}
}

func (m *gameMetrics) submission(outcome matching.Outcome) {
	m.submissions.WithLabelValues(outcome.String()).Inc()
}

func serveMetrics(cfg *Config, m *gameMetrics) httprouter.Handle {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		securityHeaders(cfg, w)
		h.ServeHTTP(w, r)

		logf(cfg, "SERVE: Metrics to %s in %s",
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
