package pool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/chasework/scheduler/api"
)

func TestPoolExecutesAllSubmittedTasks(t *testing.T) {
	p, err := New(Options{Workers: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Stop()

	const n = 2000
	var done atomic.Int64
	for i := 0; i < n; i++ {
		p.Queue(i).PushTask(func() { done.Add(1) }, api.Normal)
	}

	deadline := time.Now().Add(2 * time.Second)
	for done.Load() < n && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := done.Load(); got != n {
		t.Fatalf("completed %d tasks, want %d", got, n)
	}

	p.Stop()
	p.Wait()
}

func TestPoolRecoversPanickingTasks(t *testing.T) {
	p, err := New(Options{Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var handled atomic.Bool
	p2, err := New(Options{
		Workers: 1,
		PanicHandler: panicHandlerFunc(func(workerID int, priority api.Priority, info any, stack []byte) {
			handled.Store(true)
		}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Stop()
	defer p2.Stop()

	p2.Queue(0).PushTask(func() { panic("boom") }, api.Critical)

	deadline := time.Now().Add(time.Second)
	for !handled.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !handled.Load() {
		t.Fatal("expected panic handler to be invoked")
	}

	p2.Stop()
	p2.Wait()
}

func TestPoolStopDrainsBeforeExit(t *testing.T) {
	p, err := New(Options{Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		p.Queue(0).PushTask(func() { ran.Add(1) }, api.Low)
	}
	p.Stop()
	p.Wait()
	if got := ran.Load(); got != 50 {
		t.Fatalf("ran %d of 50 queued tasks before exit", got)
	}
}

func TestPoolRejectsNegativeWorkerCount(t *testing.T) {
	if _, err := New(Options{Workers: -1}); err != api.ErrInvalidWorkerCount {
		t.Fatalf("New(Workers: -1) err = %v, want %v", err, api.ErrInvalidWorkerCount)
	}
}

type panicHandlerFunc func(workerID int, priority api.Priority, panicInfo any, stackTrace []byte)

func (f panicHandlerFunc) HandlePanic(workerID int, priority api.Priority, panicInfo any, stackTrace []byte) {
	f(workerID, priority, panicInfo, stackTrace)
}
