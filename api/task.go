// Package api defines the public contract of the scheduler: the task and
// priority types callers submit, and the Scheduler interface implementations
// must satisfy.
package api

// Task is an opaque unit of work. It takes no arguments and returns nothing;
// once submitted it is owned exclusively by whichever deque slot it lands in
// until a worker pops or steals it.
type Task func()

// IndexedTask is the work function passed to BulkSchedule. It is invoked
// once per index in [0, n).
type IndexedTask func(index int)
