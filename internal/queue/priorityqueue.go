// Package queue bundles one Chase-Lev deque per priority class into a
// single per-worker work queue, scanned highest-priority-first.
//
// Grounded on the per-worker work_queue_t in
// _examples/original_source/system_scheduler/system_scheduler.hpp, which
// holds one lock_free_deque per priority level and always drains
// CRITICAL before HIGH before NORMAL before LOW; selection order only,
// no preemption once a task starts running.
package queue

import (
	"sync/atomic"

	"github.com/chasework/scheduler/api"
	"github.com/chasework/scheduler/internal/deque"
)

// PriorityQueue is one worker's work queue: four deques, one per
// api.Priority, scanned CRITICAL down to LOW.
type PriorityQueue struct {
	lanes  [api.NumPriorities]*deque.Deque
	active atomic.Bool
}

// New creates a PriorityQueue with all lanes active.
func New() *PriorityQueue {
	q := &PriorityQueue{}
	for i := range q.lanes {
		q.lanes[i] = deque.New(deque.DefaultCapacity)
	}
	q.active.Store(true)
	return q
}

// PushTask adds a task to its priority's lane. Owner-only.
func (q *PriorityQueue) PushTask(t api.Task, p api.Priority) {
	q.lanes[p].Push(t)
}

// PopTask removes the highest-priority task available, owner-only. Scans
// CRITICAL, HIGH, NORMAL, LOW in that order and returns the first hit
// along with the lane it came from.
func (q *PriorityQueue) PopTask() (api.Task, api.Priority, bool) {
	for i := int(api.NumPriorities) - 1; i >= 0; i-- {
		if t, ok := q.lanes[i].Pop(); ok {
			return t, api.Priority(i), true
		}
	}
	return nil, 0, false
}

// StealTask removes the highest-priority task available to a thief. Safe
// from any goroutine, including concurrently with the owner's PushTask /
// PopTask.
func (q *PriorityQueue) StealTask() (api.Task, api.Priority, bool) {
	for i := int(api.NumPriorities) - 1; i >= 0; i-- {
		if t, ok := q.lanes[i].Steal(); ok {
			return t, api.Priority(i), true
		}
	}
	return nil, 0, false
}

// Empty reports whether every lane is empty as of this call.
func (q *PriorityQueue) Empty() bool {
	for _, l := range q.lanes {
		if !l.Empty() {
			return false
		}
	}
	return true
}

// Depth returns the summed snapshot length across all lanes.
func (q *PriorityQueue) Depth() int64 {
	var n int64
	for _, l := range q.lanes {
		n += l.Len()
	}
	return n
}

// Active reports whether the queue is eligible for round-robin submission.
// Advisory only: it starts true and only an explicit SetActive(false)
// call turns it off; nothing else in this module ever does, matching the
// source work_queue_t's always-on active flag.
func (q *PriorityQueue) Active() bool { return q.active.Load() }

// SetActive sets the advisory active flag.
func (q *PriorityQueue) SetActive(v bool) { q.active.Store(v) }
