// Package facade exposes the work-stealing scheduler through api.Scheduler:
// round-robin submission across a fixed worker pool, bulk partitioning of
// indexed work, and a process-wide default instance.
//
// Grounded on schedule/bulk_schedule/worker_loop in
// _examples/original_source/system_scheduler/system_scheduler.cpp (chunk
// math for BulkSchedule, round-robin-with-skip for Schedule) and on the
// facade wiring style in
// _examples/momentics-hioload-ws/server/scheduler.go, which hands out an
// api.Scheduler built from an internal concurrency primitive rather than
// exposing the primitive directly.
package facade

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chasework/scheduler/api"
	"github.com/chasework/scheduler/internal/pool"
)

// Scheduler is the built-in work-stealing implementation of api.Scheduler.
type Scheduler struct {
	pool     *pool.Pool
	priority atomic.Uint32 // api.Priority, stored as uint32 for atomic access

	nextQueue atomic.Uint64

	logger  api.Logger
	metrics api.Metrics

	closeOnce sync.Once
}

var _ api.Scheduler = (*Scheduler)(nil)

// Config configures a Scheduler at construction. Zero value uses
// runtime.NumCPU() workers, NUMA pinning disabled, api.Low default
// priority (the zero api.Priority), no-op logging and metrics, and
// api.DefaultPanicHandler for task panics.
type Config struct {
	Workers         int
	DefaultPriority api.Priority
	PinEnabled      bool
	IdleBackoff     time.Duration

	Logger       api.Logger
	Metrics      api.Metrics
	PanicHandler api.PanicHandler
}

// New constructs and starts a Scheduler. It fails with
// ErrInvalidWorkerCount if cfg.Workers is explicitly negative, mirroring
// the original scheduler's fatal-at-construction treatment of a bad
// worker count.
func New(cfg Config) (*Scheduler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = api.NoOpLogger{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = api.NilMetrics{}
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	p, err := pool.New(pool.Options{
		Workers:      workers,
		PinEnabled:   cfg.PinEnabled,
		IdleBackoff:  cfg.IdleBackoff,
		Logger:       logger,
		Metrics:      metrics,
		PanicHandler: cfg.PanicHandler,
	})
	if err != nil {
		return nil, fmt.Errorf("facade: %w", err)
	}

	s := &Scheduler{
		pool:    p,
		logger:  logger,
		metrics: metrics,
	}
	s.priority.Store(uint32(cfg.DefaultPriority))
	return s, nil
}

// Schedule enqueues task at priority (or the scheduler's current default)
// on the next round-robin worker, skipping any worker whose queue has
// been deactivated. It never blocks.
func (s *Scheduler) Schedule(task api.Task, priority ...api.Priority) {
	if s.pool.Stopped() {
		s.logger.Debug("dropping submission after stop", api.F("err", api.ErrSchedulerStopped))
		return
	}

	p := s.resolvePriority(priority)
	s.metrics.RecordSubmitted(p)

	n := s.pool.NumWorkers()
	chosen := int(s.nextQueue.Add(1) % uint64(n))
	for i := 0; i < n; i++ {
		q := s.pool.Queue(chosen)
		if q.Active() {
			q.PushTask(task, p)
			return
		}
		chosen = (chosen + 1) % n
	}
	// Every queue reported inactive; push anyway rather than drop work,
	// since the active flag is advisory only (see internal/queue).
	s.pool.Queue(chosen).PushTask(task, p)
}

// BulkSchedule partitions [0, n) into max(active-threads*8, n) chunks
// (see bulkChunks; empty chunks are skipped) and schedules one closure per
// non-empty chunk that invokes task across that chunk's indices in order.
func (s *Scheduler) BulkSchedule(n int, task api.IndexedTask, priority ...api.Priority) {
	if n <= 0 {
		return
	}
	if s.pool.Stopped() {
		s.logger.Debug("dropping submission after stop", api.F("err", api.ErrSchedulerStopped))
		return
	}
	p := s.resolvePriority(priority)

	for _, c := range bulkChunks(n, int(s.GetActiveThreadCount())) {
		start, end := c.Start, c.End
		s.Schedule(func() {
			for i := start; i < end; i++ {
				task(i)
			}
		}, p)
	}
}

// GetPriority returns the scheduler's current default priority.
func (s *Scheduler) GetPriority() api.Priority { return api.Priority(s.priority.Load()) }

// SetPriority changes the default priority used when Schedule /
// BulkSchedule omit one.
func (s *Scheduler) SetPriority(p api.Priority) { s.priority.Store(uint32(p)) }

// GetActiveThreadCount returns a snapshot of live worker goroutines.
func (s *Scheduler) GetActiveThreadCount() uint32 { return s.pool.ActiveCount() }

// SetStopped requests cooperative shutdown. Idempotent.
func (s *Scheduler) SetStopped() { s.pool.Stop() }

// SetError logs an externally captured failure. It does not stop the
// scheduler.
func (s *Scheduler) SetError(err error) {
	if err == nil {
		return
	}
	s.logger.Error("scheduler error reported", api.F("err", err))
}

// Close stops the scheduler and blocks until every worker has joined.
// Idempotent.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.pool.Stop()
		s.pool.Wait()
	})
}

func (s *Scheduler) resolvePriority(priority []api.Priority) api.Priority {
	if len(priority) > 0 {
		return priority[0]
	}
	return s.GetPriority()
}
