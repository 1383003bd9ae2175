package pool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/chasework/scheduler/api"
	"github.com/chasework/scheduler/internal/affinity"
	"github.com/chasework/scheduler/internal/queue"
)

// queueDepthSampleInterval is how often the background sampler reports
// each worker's queue depth through Options.Metrics, when one other than
// api.NilMetrics is supplied.
const queueDepthSampleInterval = 50 * time.Millisecond

// defaultIdleBackoff is used when Options.IdleBackoff is unset.
const defaultIdleBackoff = 10 * time.Microsecond

// stopFlag is a shared, idempotent shutdown signal read by every worker's
// loop.
type stopFlag struct{ v atomic.Bool }

func (s *stopFlag) set()        { s.v.Store(true) }
func (s *stopFlag) isSet() bool { return s.v.Load() }

// Pool is a fixed-size set of workers, each with its own PriorityQueue,
// pinned one-per-NUMA-node in round robin and free to steal from any
// sibling.
type Pool struct {
	queues     []*queue.PriorityQueue
	stopped    *stopFlag
	wg         sync.WaitGroup
	active     atomic.Uint32
	pinEnabled bool

	nextQueue atomic.Uint32
}

// Options configures a Pool at construction.
type Options struct {
	// Workers is the fixed worker count. A negative value is rejected and
	// zero yields a single worker; facade.New substitutes runtime.NumCPU()
	// for zero before calling New, so facade owns that default.
	Workers int

	// PinEnabled requests NUMA/CPU pinning for every worker via
	// internal/affinity. Ignored (treated as disabled) on platforms
	// where pinning is a no-op.
	PinEnabled bool

	// IdleBackoff is how long a worker sleeps after a pass finds no work
	// anywhere, own queue or peers'. Defaults to defaultIdleBackoff if <= 0.
	IdleBackoff time.Duration

	Logger       api.Logger
	Metrics      api.Metrics
	PanicHandler api.PanicHandler
}

// New builds and starts a Pool with opts.Workers workers. An explicitly
// negative Workers count is rejected with ErrInvalidWorkerCount; a
// non-positive-but-unset count (the zero value) defaults to 1, since
// facade owns the runtime.NumCPU() default for unconfigured callers.
func New(opts Options) (*Pool, error) {
	if opts.Workers < 0 {
		return nil, api.ErrInvalidWorkerCount
	}

	logger := opts.Logger
	if logger == nil {
		logger = api.NoOpLogger{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = api.NilMetrics{}
	}
	panicHandler := opts.PanicHandler
	if panicHandler == nil {
		panicHandler = api.DefaultPanicHandler{}
	}

	n := opts.Workers
	if n == 0 {
		n = 1
	}
	idleBackoff := opts.IdleBackoff
	if idleBackoff <= 0 {
		idleBackoff = defaultIdleBackoff
	}

	p := &Pool{
		queues:     make([]*queue.PriorityQueue, n),
		stopped:    &stopFlag{},
		pinEnabled: opts.PinEnabled,
	}
	for i := range p.queues {
		p.queues[i] = queue.New()
	}
	p.active.Store(uint32(n))

	for i := 0; i < n; i++ {
		node := affinity.NodeForWorker(i)
		w := newWorker(i, node, p.queues[i], p.queues, p.stopped, idleBackoff, logger, metrics, panicHandler)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			defer p.active.Add(^uint32(0)) // decrement
			w.run(p.pinEnabled)
		}()
	}

	if _, isNil := metrics.(api.NilMetrics); !isNil {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.sampleQueueDepths(metrics)
		}()
	}

	return p, nil
}

// sampleQueueDepths periodically reports every worker's queue depth until
// the pool is stopped. Metrics.RecordQueueDepth is otherwise never called
// from the hot path, since sampling on every push/pop would defeat the
// point of a lock-free queue.
func (p *Pool) sampleQueueDepths(metrics api.Metrics) {
	ticker := time.NewTicker(queueDepthSampleInterval)
	defer ticker.Stop()
	for {
		<-ticker.C
		for i, q := range p.queues {
			metrics.RecordQueueDepth(i, int(q.Depth()))
		}
		if p.stopped.isSet() {
			return
		}
	}
}

// Queue returns worker i's PriorityQueue for direct submission by the
// facade's round-robin dispatcher.
func (p *Pool) Queue(i int) *queue.PriorityQueue { return p.queues[i%len(p.queues)] }

// NumWorkers returns the fixed worker count this Pool was created with.
func (p *Pool) NumWorkers() int { return len(p.queues) }

// ActiveCount returns a snapshot of how many worker goroutines have not
// yet exited.
func (p *Pool) ActiveCount() uint32 { return p.active.Load() }

// Stop requests cooperative shutdown: workers finish their current task,
// drain every queue, then exit. Idempotent.
func (p *Pool) Stop() { p.stopped.set() }

// Stopped reports whether Stop has been called. Callers that enqueue work
// from outside a worker (the facade's Schedule/BulkSchedule) must check
// this before pushing, since a worker that has already observed stop and
// drained every queue never polls again.
func (p *Pool) Stopped() bool { return p.stopped.isSet() }

// Wait blocks until every worker goroutine has exited. Call Stop first,
// or callers will block forever if queues never drain.
func (p *Pool) Wait() { p.wg.Wait() }
