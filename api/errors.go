package api

import "errors"

// Errors returned or logged by scheduler implementations.
var (
	// ErrSchedulerStopped is logged (not returned; Schedule/BulkSchedule
	// have no error return) when a submission arrives after SetStopped has
	// taken effect. The submission is silently dropped either way.
	ErrSchedulerStopped = errors.New("scheduler is stopped")

	// ErrNoActiveQueue names the case where every worker queue has been
	// deactivated, which the built-in pool never does on its own.
	// facade.Scheduler.Schedule neither returns nor logs it: in that case
	// it pushes onto the originally chosen queue.
	ErrNoActiveQueue = errors.New("no active queue available")

	// ErrInvalidWorkerCount indicates a negative worker count was supplied
	// at construction.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)
