package facade

import (
	"sync"
	"sync/atomic"
	"time"

	eapachequeue "github.com/eapache/queue"
	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/emirpasic/gods/utils"

	"github.com/chasework/scheduler/api"
)

// dispatchBand is the coarse 3-level priority an OS-native dispatch queue
// exposes. Grounded on the macOS shim in
// _examples/original_source/system_scheduler/system_scheduler.cpp
// (macos_system_scheduler::schedule), which maps onto
// DISPATCH_QUEUE_PRIORITY_{LOW,DEFAULT,HIGH} and folds CRITICAL into HIGH
// because libdispatch has no fourth band.
type dispatchBand int

const (
	dispatchLow dispatchBand = iota
	dispatchDefault
	dispatchHigh
	numDispatchBands
)

func bandFor(p api.Priority) dispatchBand {
	switch p {
	case api.Low:
		return dispatchLow
	case api.Normal:
		return dispatchDefault
	case api.High, api.Critical:
		return dispatchHigh
	default:
		return dispatchDefault
	}
}

type dispatchEntry struct {
	band dispatchBand
	task api.Task
}

func dispatchComparator(a, b interface{}) int {
	ea, eb := a.(*dispatchEntry), b.(*dispatchEntry)
	// gods' priorityqueue is a min-heap over the comparator; treating a
	// higher band as "smaller" makes it dequeue first.
	return utils.IntComparator(int(eb.band), int(ea.band))
}

// OSDispatchScheduler is a compatibility backdoor that bypasses the
// internal work-stealing pool entirely and forwards submissions to a
// bounded, band-limited concurrency pool meant to behave like an
// OS-native global dispatch queue: no per-worker affinity, no stealing,
// priority only coarsely honored.
//
// Pending entries live in an emirpasic/gods priority queue ordered by
// band; entries that can't immediately acquire their band's concurrency
// slot spill into an eapache/queue FIFO retry buffer that the dispatch
// loop re-drains on every tick.
type OSDispatchScheduler struct {
	mu    sync.Mutex
	ready *priorityqueue.Queue
	retry *eapachequeue.Queue

	sem [numDispatchBands]chan struct{}

	wake    chan struct{}
	closeCh chan struct{}
	wg      sync.WaitGroup

	defaultPriority atomic.Uint32
	inFlight        atomic.Uint32
	closeOnce       sync.Once

	logger api.Logger
}

var _ api.Scheduler = (*OSDispatchScheduler)(nil)

// DispatchLimits caps concurrently-running goroutines per band. Non-positive
// values fall back to fixed defaults: 2 for Low, 4 for Default, 8 for High.
type DispatchLimits struct {
	Low     int
	Default int
	High    int
}

// NewOSDispatchScheduler builds and starts an OSDispatchScheduler.
func NewOSDispatchScheduler(limits DispatchLimits, logger api.Logger) *OSDispatchScheduler {
	if logger == nil {
		logger = api.NoOpLogger{}
	}
	if limits.Low <= 0 {
		limits.Low = 2
	}
	if limits.Default <= 0 {
		limits.Default = 4
	}
	if limits.High <= 0 {
		limits.High = 8
	}

	s := &OSDispatchScheduler{
		ready:   priorityqueue.NewWith(dispatchComparator),
		retry:   eapachequeue.New(),
		wake:    make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		logger:  logger,
	}
	s.sem[dispatchLow] = make(chan struct{}, limits.Low)
	s.sem[dispatchDefault] = make(chan struct{}, limits.Default)
	s.sem[dispatchHigh] = make(chan struct{}, limits.High)
	s.defaultPriority.Store(uint32(api.Normal))

	s.wg.Add(1)
	go s.dispatchLoop()

	return s
}

// Schedule enqueues task for band-ordered dispatch. Never blocks.
func (s *OSDispatchScheduler) Schedule(task api.Task, priority ...api.Priority) {
	p := s.resolvePriority(priority)

	s.mu.Lock()
	s.ready.Enqueue(&dispatchEntry{band: bandFor(p), task: task})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// BulkSchedule chunks [0, n) exactly as Scheduler.BulkSchedule does, but
// routes every chunk through the dispatch bands instead of the
// work-stealing pool.
func (s *OSDispatchScheduler) BulkSchedule(n int, task api.IndexedTask, priority ...api.Priority) {
	if n <= 0 {
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

func (s *OSDispatchScheduler) GetPriority() api.Priority {
	return api.Priority(s.defaultPriority.Load())
}

func (s *OSDispatchScheduler) SetPriority(p api.Priority) { s.defaultPriority.Store(uint32(p)) }

// GetActiveThreadCount reports goroutines currently executing a
// dispatched task, which is the closest analog this shim has to a
// "thread count": it runs no fixed workers of its own.
func (s *OSDispatchScheduler) GetActiveThreadCount() uint32 { return s.inFlight.Load() }

func (s *OSDispatchScheduler) SetStopped() {
	s.closeOnce.Do(func() { close(s.closeCh) })
}

func (s *OSDispatchScheduler) SetError(err error) {
	if err != nil {
		s.logger.Error("dispatch scheduler error reported", api.F("err", err))
	}
}

// Close stops accepting new dispatch-loop ticks and waits for the loop
// goroutine to exit. In-flight task goroutines are not waited on, mirroring
// libdispatch's fire-and-forget semantics.
func (s *OSDispatchScheduler) Close() {
	s.SetStopped()
	s.wg.Wait()
}

func (s *OSDispatchScheduler) resolvePriority(priority []api.Priority) api.Priority {
	if len(priority) > 0 {
		return priority[0]
	}
	return s.GetPriority()
}

func (s *OSDispatchScheduler) dispatchLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		s.drainOnce()
		select {
		case <-s.closeCh:
			s.drainOnce()
			return
		case <-s.wake:
		case <-ticker.C:
		}
	}
}

// drainOnce requeues retry-buffered entries then tries to dispatch
// everything currently ready, spilling whatever can't get a band slot
// back into the retry buffer for the next tick.
func (s *OSDispatchScheduler) drainOnce() {
	s.mu.Lock()
	for s.retry.Length() > 0 {
		s.ready.Enqueue(s.retry.Remove())
	}

	var stillBlocked []*dispatchEntry
	for {
		v, ok := s.ready.Dequeue()
		if !ok {
			break
		}
		entry := v.(*dispatchEntry)
		select {
		case s.sem[entry.band] <- struct{}{}:
			s.runEntry(entry)
		default:
			stillBlocked = append(stillBlocked, entry)
		}
	}
	for _, e := range stillBlocked {
		s.retry.Add(e)
	}
	s.mu.Unlock()
}

func (s *OSDispatchScheduler) runEntry(entry *dispatchEntry) {
	s.inFlight.Add(1)
	go func() {
		defer func() {
			<-s.sem[entry.band]
			s.inFlight.Add(^uint32(0))
			if r := recover(); r != nil {
				s.logger.Warn("dispatched task panicked", api.F("band", entry.band), api.F("panic", r))
			}
		}()
		entry.task()
	}()
}
