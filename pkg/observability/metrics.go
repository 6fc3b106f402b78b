package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

const (
	LabelNodeType = "node_type"
	LabelStatus   = "status"
	LabelOutcome  = "outcome"
)

// Run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeCanceled  = "canceled"
	OutcomeBusy      = "busy"
)

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	RunsInFlight prometheus.Gauge
	NodeRuns     *prometheus.CounterVec
	NodeDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowcanvas_runs_total",
			Help: "Workflow runs by outcome",
		}, []string{LabelOutcome}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowcanvas_run_duration_seconds",
			Help:    "Wall time of workflow runs",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		RunsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flowcanvas_runs_in_flight",
			Help: "Runs currently executing",
		}),
		NodeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowcanvas_node_executions_total",
			Help: "Finished node executions by node type and final status",
		}, []string{LabelNodeType, LabelStatus}),
		NodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowcanvas_node_duration_seconds",
			Help:    "Duration of node executions",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{LabelNodeType}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.RunDuration, m.RunsInFlight, m.NodeRuns, m.NodeDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			m.RunsInFlight.Inc()
		},
		OnNodeStatus: func(ctx context.Context, e *domain.NodeStatusEvent) {
			if e.Status != domain.StatusCompleted && e.Status != domain.StatusFailed {
				return
			}
			m.NodeRuns.WithLabelValues(e.NodeType, string(e.Status)).Inc()
			m.NodeDuration.WithLabelValues(e.NodeType).Observe(e.Duration.Seconds())
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			m.RunsInFlight.Dec()
			m.Runs.WithLabelValues(Outcome(e.Err)).Inc()
			m.RunDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Outcome classifies the error a run ended with.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeCompleted
	case errors.Is(err, domain.ErrCycleDetected):
		return OutcomeRejected
	case errors.Is(err, domain.ErrRunCanceled):
		return OutcomeCanceled
	case errors.Is(err, domain.ErrRunInProgress):
		return OutcomeBusy
	default:
		return OutcomeFailed
	}
}
