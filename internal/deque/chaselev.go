// Package deque implements the Chase-Lev lock-free work-stealing deque: a
// single-producer/multi-consumer double-ended queue where the owner pushes
// and pops from the bottom (LIFO) and any number of thieves steal from the
// top (FIFO).
//
// Grounded on the reference Chase-Lev deque in
// _examples/other_examples/Tahsin716-flock__chase_lev_deque.go and the
// HPX-derived lock_free_deque in
// _examples/original_source/system_scheduler/system_scheduler.hpp, adapted
// to Go's sequentially-consistent sync/atomic primitives rather than
// hand-placed acquire/release/seq_cst fences.
package deque

import (
	"sync"
	"sync/atomic"

	"github.com/chasework/scheduler/api"
)

// DefaultCapacity is the initial slot count for a new deque.
const DefaultCapacity = 1024

// buffer is the circular slot storage backing a Deque at one point in time.
// Its capacity never changes once published: growth always allocates a new
// buffer and swaps it in rather than resizing this one in place. Push still
// writes individual slots of the current buffer.
type buffer struct {
	capacity int64
	slots    []api.Task
}

func newBuffer(capacity int64) *buffer {
	return &buffer{capacity: capacity, slots: make([]api.Task, capacity)}
}

func (b *buffer) get(i int64) api.Task   { return b.slots[i%b.capacity] }
func (b *buffer) put(i int64, t api.Task) { b.slots[i%b.capacity] = t }

// Deque is a Chase-Lev work-stealing deque of api.Task. The zero value is
// not usable; construct with New.
type Deque struct {
	top    atomic.Int64
	bottom atomic.Int64
	buf    atomic.Pointer[buffer]

	// retired holds buffers swapped out by growth. Go's garbage collector
	// already keeps a buffer alive for as long as any goroutine holds a
	// reference to it (including a thief mid-Steal that loaded it before
	// the swap), so retaining this list is not required for memory safety.
	// It exists so growth is an observable, testable event and to leave a
	// paper trail of the explicit safe-reclamation discipline this deque
	// is modeled on, rather than naive deallocation.
	retiredMu sync.Mutex
	retired   []*buffer
}

// New creates a deque with the given initial capacity, rounded up to
// DefaultCapacity if non-positive.
func New(initialCapacity int64) *Deque {
	if initialCapacity <= 0 {
		initialCapacity = DefaultCapacity
	}
	d := &Deque{}
	d.buf.Store(newBuffer(initialCapacity))
	return d
}

// Push adds a task to the bottom. Owner-only: never call concurrently with
// another Push or Pop on the same deque.
func (d *Deque) Push(t api.Task) {
	b := d.bottom.Load()
	top := d.top.Load()
	buf := d.buf.Load()

	if b-top >= buf.capacity {
		buf = d.grow(buf, top, b)
	}

	buf.put(b, t)
	d.bottom.Store(b + 1)
}

// grow doubles the buffer, copying the live range [top, bottom), publishes
// it, and retires the old one.
func (d *Deque) grow(old *buffer, top, bottom int64) *buffer {
	next := newBuffer(old.capacity * 2)
	for i := top; i < bottom; i++ {
		next.put(i, old.get(i))
	}
	d.buf.Store(next)

	d.retiredMu.Lock()
	d.retired = append(d.retired, old)
	d.retiredMu.Unlock()

	return next
}

// Pop removes and returns the task at the bottom (LIFO). Owner-only.
//
// The decrement-then-reconcile sequence resolves the race where a thief is
// simultaneously trying to Steal the last remaining element: whichever of
// Pop's CAS or the thief's CAS on top wins keeps the task, the loser sees
// an empty deque.
func (d *Deque) Pop() (api.Task, bool) {
	b := d.bottom.Load() - 1
	d.bottom.Store(b)
	top := d.top.Load()

	if top > b {
		// Was already empty; restore bottom and report nothing.
		d.bottom.Store(b + 1)
		return nil, false
	}

	buf := d.buf.Load()
	t := buf.get(b)

	if top == b {
		// Last element: race against Steal for it.
		if !d.top.CompareAndSwap(top, top+1) {
			d.bottom.Store(b + 1)
			return nil, false
		}
		d.bottom.Store(b + 1)
		return t, true
	}

	return t, true
}

// Steal removes and returns the task at the top (FIFO). Safe to call from
// any number of goroutines, including the owner's own Pop running
// concurrently.
func (d *Deque) Steal() (api.Task, bool) {
	top := d.top.Load()
	bottom := d.bottom.Load()

	if top >= bottom {
		return nil, false
	}

	buf := d.buf.Load()
	t := buf.get(top)

	if !d.top.CompareAndSwap(top, top+1) {
		return nil, false
	}

	return t, true
}

// Len returns a snapshot element count. May be stale the instant it
// returns; never negative.
func (d *Deque) Len() int64 {
	b := d.bottom.Load()
	t := d.top.Load()
	if b < t {
		return 0
	}
	return b - t
}

// Empty reports whether Len() == 0 as of this call.
func (d *Deque) Empty() bool { return d.Len() == 0 }

// Cap returns the current buffer capacity.
func (d *Deque) Cap() int64 { return d.buf.Load().capacity }

// GrowthCount returns how many times this deque has doubled its buffer.
// Exposed for tests exercising the growth/retirement path.
func (d *Deque) GrowthCount() int {
	d.retiredMu.Lock()
	defer d.retiredMu.Unlock()
	return len(d.retired)
}
