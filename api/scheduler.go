package api

// Scheduler is the contract every scheduler variant satisfies: the built-in
// work-stealing pool (facade.Scheduler) and the OS-dispatch compatibility
// shim (facade.OSDispatchScheduler). Modeled as a small closed interface
// rather than an open class hierarchy.
type Scheduler interface {
	// Schedule enqueues task at priority (or the scheduler's configured
	// default priority if none is given) and returns immediately. It never
	// blocks and produces no return value; submission after shutdown is a
	// silent no-op.
	Schedule(task Task, priority ...Priority)

	// BulkSchedule partitions [0, n) into near-equal chunks and schedules
	// one closure per chunk that invokes task in ascending index order.
	BulkSchedule(n int, task IndexedTask, priority ...Priority)

	// GetPriority returns the scheduler's current default priority.
	GetPriority() Priority

	// SetPriority changes the default priority used when Schedule /
	// BulkSchedule omit one.
	SetPriority(p Priority)

	// GetActiveThreadCount returns a snapshot of the number of active
	// worker threads backing this scheduler.
	GetActiveThreadCount() uint32

	// SetStopped requests cooperative shutdown. Workers finish their
	// current task, drain remaining queued work, then exit. Idempotent.
	SetStopped()

	// SetError reports an externally captured failure. It is logged; it
	// does not itself stop the scheduler.
	SetError(err error)

	// Close is the Go-idiomatic destructor: it calls SetStopped and blocks
	// until every worker has joined.
	Close()
}
