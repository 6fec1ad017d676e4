// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"
	"time"

	"github.com/distopia/bootstrap/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	runsTotalCounter        *prometheus.CounterVec
	stepsTotalCounter       *prometheus.CounterVec
	stepDurationMetric      *prometheus.HistogramVec
	dbProbeLatencyMetric    prometheus.Histogram
	webhookDeliveriesMetric *prometheus.CounterVec
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		runsTotalCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bootstrap_runs_total",
				Help: "Total number of completed bootstrap runs by terminal status.",
			},
			[]string{"status"},
		)

		stepsTotalCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bootstrap_steps_total",
				Help: "Total number of terminal step results by status.",
			},
			[]string{"status"},
		)

		stepDurationMetric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bootstrap_step_duration_seconds",
				Help:    "Duration of bootstrap steps in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"step"},
		)

		dbProbeLatencyMetric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bootstrap_db_probe_latency_seconds",
				Help:    "Latency of database readiness probe attempts in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		)

		webhookDeliveriesMetric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bootstrap_webhook_deliveries_total",
				Help: "Total number of terminal webhook delivery outcomes.",
			},
			[]string{"outcome"},
		)

		prometheus.MustRegister(
			runsTotalCounter,
			stepsTotalCounter,
			stepDurationMetric,
			dbProbeLatencyMetric,
			webhookDeliveriesMetric,
		)

		// Ensure counter vectors are visible at /metrics before first increment.
		for _, status := range []domain.RunStatus{
			domain.RunSucceeded,
			domain.RunDegraded,
			domain.RunAborted,
		} {
			runsTotalCounter.WithLabelValues(string(status))
		}

		for _, status := range []domain.StepStatus{
			domain.StepSucceeded,
			domain.StepFailed,
			domain.StepSkipped,
		} {
			stepsTotalCounter.WithLabelValues(string(status))
		}
	})
}

func IncRunStatus(status string) {
	Init()
	runsTotalCounter.WithLabelValues(status).Inc()
}

func IncStepStatus(status string) {
	Init()
	stepsTotalCounter.WithLabelValues(status).Inc()
}

func ObserveStepDuration(step string, d time.Duration) {
	Init()
	stepDurationMetric.WithLabelValues(step).Observe(d.Seconds())
}

func ObserveDBProbeLatency(d time.Duration) {
	Init()
	dbProbeLatencyMetric.Observe(d.Seconds())
}

func IncWebhookDelivery(outcome string) {
	Init()
	webhookDeliveriesMetric.WithLabelValues(outcome).Inc()
}
