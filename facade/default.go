package facade

import (
	"runtime"
	"sync"

	"github.com/chasework/scheduler/api"
)

var (
	defaultMu       sync.Mutex
	defaultInstance api.Scheduler
)

// QuerySystemContext returns the process-wide default Scheduler, building
// one with runtime.NumCPU() workers on first use.
//
// Grounded on system_scheduler::query_system_context /
// get_system_scheduler in
// _examples/original_source/system_scheduler/system_scheduler.cpp: a
// mutex-guarded singleton that lazily constructs itself but can be
// preempted by an explicitly installed instance.
func QuerySystemContext() api.Scheduler {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultInstance == nil {
		// runtime.NumCPU() is always positive, so New cannot return
		// ErrInvalidWorkerCount here.
		s, _ := New(Config{Workers: runtime.NumCPU(), DefaultPriority: api.Normal})
		defaultInstance = s
	}
	return defaultInstance
}

// InstallSystemScheduler replaces the process-wide default Scheduler.
// Passing nil clears it, causing the next QuerySystemContext call to build
// a fresh default instance.
func InstallSystemScheduler(s api.Scheduler) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultInstance = s
}
