package service

import (
	"proxyprobe/models"
	"proxyprobe/pkg/connpool"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics Prometheus 指标，同时作为 Observer 接收结果
type Metrics struct {
	registry *prometheus.Registry
	settled  *prometheus.CounterVec
	attempts *prometheus.CounterVec
}

// NewMetrics 在独立的注册表上创建指标
// prober 和 dial 可以为 nil
func NewMetrics(prober *Prober, dial *connpool.DialMetrics) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		settled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proxyprobe_candidates_settled_total",
			Help: "Candidates that reached a final outcome.",
		}, []string{"family", "outcome"}),
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proxyprobe_probe_attempts_total",
			Help: "Verification attempts made.",
		}, []string{"family"}),
	}

	if prober != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "proxyprobe_inflight",
			Help: "Candidates currently holding a concurrency slot.",
		}, func() float64 { return float64(prober.InFlight()) })
	}

	if dial != nil {
		dials := []struct {
			state string
			value func() int64
		}{
			{"opened", dial.Opened},
			{"closed", dial.Closed},
			{"failed", dial.Failed},
		}
		for _, d := range dials {
			value := d.value
			factory.NewCounterFunc(prometheus.CounterOpts{
				Name:        "proxyprobe_dials_total",
				Help:        "Outbound connections by state.",
				ConstLabels: prometheus.Labels{"state": d.state},
			}, func() float64 { return float64(value()) })
		}
	}

	return m
}

// Observe 实现 Observer
func (m *Metrics) Observe(outcome models.ProbeOutcome) {
	family := string(outcome.Candidate.Family)
	result := "dead"
	switch {
	case outcome.Live:
		result = "live"
	case outcome.Attempts == 0:
		result = "rejected"
	}
	m.settled.WithLabelValues(family, result).Inc()
	if outcome.Attempts > 0 {
		m.attempts.WithLabelValues(family).Add(float64(outcome.Attempts))
	}
}

// Registry 供 promhttp 使用的注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
