package facade

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/chasework/scheduler/api"
)

func TestSchedulerRunsSubmittedTasks(t *testing.T) {
	s, err := New(Config{Workers: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	const n = 5000
	var done atomic.Int64
	for i := 0; i < n; i++ {
		s.Schedule(func() { done.Add(1) })
	}

	waitFor(t, func() bool { return done.Load() == n })
}

func TestSchedulerBulkScheduleCoversAllIndices(t *testing.T) {
	s, err := New(Config{Workers: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	const n = 10000
	seen := make([]atomic.Bool, n)
	s.BulkSchedule(n, func(i int) { seen[i].Store(true) })

	waitFor(t, func() bool {
		for i := range seen {
			if !seen[i].Load() {
				return false
			}
		}
		return true
	})
}

func TestSchedulerDefaultPriorityRoundTrip(t *testing.T) {
	s, err := New(Config{Workers: 1, DefaultPriority: api.High})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if got := s.GetPriority(); got != api.High {
		t.Fatalf("GetPriority() = %v, want %v", got, api.High)
	}
	s.SetPriority(api.Critical)
	if got := s.GetPriority(); got != api.Critical {
		t.Fatalf("GetPriority() after SetPriority = %v, want %v", got, api.Critical)
	}
}

func TestSchedulerCloseIsIdempotent(t *testing.T) {
	s, err := New(Config{Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Close()
	s.Close()
}

func TestSchedulerRejectsNegativeWorkerCount(t *testing.T) {
	if _, err := New(Config{Workers: -1}); err == nil {
		t.Fatal("expected an error for a negative worker count")
	}
}

func TestSchedulerDropsSubmissionsAfterStop(t *testing.T) {
	s, err := New(Config{Workers: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.SetStopped()
	s.pool.Wait()

	var ran atomic.Bool
	s.Schedule(func() { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Fatal("expected submission after stop to be dropped")
	}
}

func TestDefaultSchedulerSingleton(t *testing.T) {
	InstallSystemScheduler(nil)
	a := QuerySystemContext()
	b := QuerySystemContext()
	if a != b {
		t.Fatal("expected QuerySystemContext to return the same instance")
	}
	if got := a.GetPriority(); got != api.Normal {
		t.Fatalf("default instance GetPriority() = %v, want %v", got, api.Normal)
	}
	a.Close()
	InstallSystemScheduler(nil)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatal("condition not met before deadline")
	}
}
