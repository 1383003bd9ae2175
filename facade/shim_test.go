package facade

import (
	"sync/atomic"
	"testing"

	"github.com/chasework/scheduler/api"
)

func TestOSDispatchSchedulerRunsTasks(t *testing.T) {
	s := NewOSDispatchScheduler(DispatchLimits{}, nil)
	defer s.Close()

	const n = 500
	var done atomic.Int64
	for i := 0; i < n; i++ {
		s.Schedule(func() { done.Add(1) }, api.Critical)
	}

	waitFor(t, func() bool { return done.Load() == n })
}

func TestOSDispatchSchedulerCollapsesCriticalIntoHigh(t *testing.T) {
	if bandFor(api.Critical) != bandFor(api.High) {
		t.Fatalf("expected CRITICAL and HIGH to map to the same dispatch band")
	}
	if bandFor(api.Low) == bandFor(api.Normal) {
		t.Fatalf("expected LOW and NORMAL to map to distinct dispatch bands")
	}
}

func TestOSDispatchSchedulerBulkSchedule(t *testing.T) {
	s := NewOSDispatchScheduler(DispatchLimits{}, nil)
	defer s.Close()

	const n = 2000
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
