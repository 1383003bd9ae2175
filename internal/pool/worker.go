// Package pool implements the fixed-size, NUMA-pinned worker pool that
// drains per-worker priority queues and steals from peers when its own is
// empty.
//
// Grounded on the worker run-loop in
// _examples/momentics-hioload-ws/internal/concurrency/executor.go (own
// queue, fall back to a peer source, backoff on exhaustion, recover task
// panics without killing the goroutine) generalized from its single
// global-channel fallback to randomized work-stealing across sibling
// queues, and on the worker_loop in
// _examples/original_source/system_scheduler/system_scheduler.hpp for the
// own-queue -> steal -> idle-backoff -> shutdown-recheck ordering.
package pool

import (
	"math/rand"
	"runtime"
	"time"

	"github.com/chasework/scheduler/api"
	"github.com/chasework/scheduler/internal/affinity"
	"github.com/chasework/scheduler/internal/queue"
)

// worker owns one queue.PriorityQueue and runs the steal loop against its
// siblings.
type worker struct {
	id          int
	numaNode    int
	queue       *queue.PriorityQueue
	peers       []*queue.PriorityQueue // all workers' queues, including its own
	stopped     *stopFlag
	idleBackoff time.Duration

	logger       api.Logger
	metrics      api.Metrics
	panicHandler api.PanicHandler

	rng *rand.Rand
}

func newWorker(id, numaNode int, q *queue.PriorityQueue, peers []*queue.PriorityQueue, stopped *stopFlag, idleBackoff time.Duration, logger api.Logger, metrics api.Metrics, panicHandler api.PanicHandler) *worker {
	return &worker{
		id:           id,
		numaNode:     numaNode,
		queue:        q,
		peers:        peers,
		stopped:      stopped,
		idleBackoff:  idleBackoff,
		logger:       logger,
		metrics:      metrics,
		panicHandler: panicHandler,
		rng:          rand.New(rand.NewSource(int64(id) + time.Now().UnixNano())),
	}
}

// run is the worker's main loop. It never returns until stopped is set and
// every queue (including peers') is observed empty.
func (w *worker) run(pinEnabled bool) {
	if pinEnabled {
		if err := affinity.Pin(w.numaNode, affinity.CPUForNode(w.numaNode)); err != nil {
			w.logger.Warn("worker pin failed", api.F("worker", w.id), api.F("node", w.numaNode), api.F("err", err))
		}
		defer affinity.Unpin()
	}

	for {
		if task, priority, ok := w.queue.PopTask(); ok {
			w.execute(task, priority)
			continue
		}

		if task, priority, victim, ok := w.stealFromPeers(); ok {
			w.metrics.RecordStolen(victim, w.id)
			w.execute(task, priority)
			continue
		}

		if w.stopped.isSet() && w.allQueuesEmpty() {
			return
		}

		w.metrics.RecordIdle(w.id)
		time.Sleep(w.idleBackoff)
	}
}

// stealFromPeers scans this worker's siblings in a random permutation so
// repeated contention doesn't settle on always-probing the same victim
// first.
func (w *worker) stealFromPeers() (api.Task, api.Priority, int, bool) {
	n := len(w.peers)
	if n <= 1 {
		return nil, 0, -1, false
	}
	order := w.rng.Perm(n)
	for _, idx := range order {
		if idx == w.id {
			continue
		}
		if task, priority, ok := w.peers[idx].StealTask(); ok {
			return task, priority, idx, true
		}
	}
	return nil, 0, -1, false
}

func (w *worker) allQueuesEmpty() bool {
	for _, p := range w.peers {
		if !p.Empty() {
			return false
		}
	}
	return true
}

func (w *worker) execute(task api.Task, priority api.Priority) {
	defer func() {
		if r := recover(); r != nil {
			w.metrics.RecordPanic(w.id)
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			w.panicHandler.HandlePanic(w.id, priority, r, buf[:n])
			return
		}
		w.metrics.RecordCompleted(priority, w.id)
	}()
	task()
}
