// Package prometheus adapts api.Metrics to Prometheus collectors.
//
// Grounded on
// _examples/Swind-go-task-runner/observability/prometheus/metrics_exporter.go:
// the same registerCollector generic helper (tolerating double
// registration against a shared registry), the same Namespace/Vec-per-signal
// layout, adapted from that package's runner/priority/reason label set to
// this scheduler's worker-id/priority/victim-thief label set.
package prometheus

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/chasework/scheduler/api"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	Namespace string
}

// MetricsExporter implements api.Metrics by forwarding every signal to a
// Prometheus collector.
type MetricsExporter struct {
	submittedTotal *prom.CounterVec
	completedTotal *prom.CounterVec
	stolenTotal    *prom.CounterVec
	panicTotal     *prom.CounterVec
	idleTotal      *prom.CounterVec
	queueDepth     *prom.GaugeVec
}

var _ api.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers the scheduler's Prometheus
// collectors against reg, defaulting to prom.DefaultRegisterer.
func NewMetricsExporter(reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "chasework_scheduler"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	submittedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_submitted_total",
		Help:      "Total number of tasks submitted, labeled by priority.",
	}, []string{"priority"})
	completedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_completed_total",
		Help:      "Total number of tasks completed, labeled by priority and worker.",
	}, []string{"priority", "worker"})
	stolenVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_stolen_total",
		Help:      "Total number of tasks moved from a victim worker's queue to a thief.",
	}, []string{"victim", "thief"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panics_total",
		Help:      "Total number of recovered task panics, labeled by worker.",
	}, []string{"worker"})
	idleVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "worker_idle_total",
		Help:      "Total number of idle cycles a worker spent with no local or stolen work.",
	}, []string{"worker"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "worker_queue_depth",
		Help:      "Most recently sampled queue depth for a worker.",
	}, []string{"worker"})

	var err error
	if submittedVec, err = registerCollector(reg, submittedVec); err != nil {
		return nil, err
	}
	if completedVec, err = registerCollector(reg, completedVec); err != nil {
		return nil, err
	}
	if stolenVec, err = registerCollector(reg, stolenVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if idleVec, err = registerCollector(reg, idleVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		submittedTotal: submittedVec,
		completedTotal: completedVec,
		stolenTotal:    stolenVec,
		panicTotal:     panicVec,
		idleTotal:      idleVec,
		queueDepth:     queueDepthVec,
	}, nil
}

func (m *MetricsExporter) RecordSubmitted(priority api.Priority) {
	m.submittedTotal.WithLabelValues(priority.String()).Inc()
}

func (m *MetricsExporter) RecordCompleted(priority api.Priority, workerID int) {
	m.completedTotal.WithLabelValues(priority.String(), workerLabel(workerID)).Inc()
}

func (m *MetricsExporter) RecordStolen(victimID, thiefID int) {
	m.stolenTotal.WithLabelValues(workerLabel(victimID), workerLabel(thiefID)).Inc()
}

func (m *MetricsExporter) RecordPanic(workerID int) {
	m.panicTotal.WithLabelValues(workerLabel(workerID)).Inc()
}

func (m *MetricsExporter) RecordIdle(workerID int) {
	m.idleTotal.WithLabelValues(workerLabel(workerID)).Inc()
}

func (m *MetricsExporter) RecordQueueDepth(workerID int, depth int) {
	m.queueDepth.WithLabelValues(workerLabel(workerID)).Set(float64(depth))
}

func workerLabel(id int) string {
	return fmt.Sprintf("%d", id)
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
