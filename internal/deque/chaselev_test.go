package deque

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/chasework/scheduler/api"
)

func TestPushPopLIFO(t *testing.T) {
	d := New(8)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		d.Push(func() { order = append(order, i) })
	}
	for i := 4; i >= 0; i-- {
		task, ok := d.Pop()
		if !ok {
			t.Fatalf("expected task at i=%d", i)
		}
		task()
	}
	if _, ok := d.Pop(); ok {
		t.Fatal("expected empty deque")
	}
	want := []int{4, 3, 2, 1, 0}
	for i, v := range want {
		if order[i] != v {
			t.Fatalf("order[%d] = %d, want %d", i, order[i], v)
		}
	}
}

func TestStealFIFO(t *testing.T) {
	d := New(8)
	var got int
	for i := 0; i < 5; i++ {
		i := i
		d.Push(func() { got = i })
	}
	for want := 0; want < 5; want++ {
		task, ok := d.Steal()
		if !ok {
			t.Fatalf("expected stealable task at %d", want)
		}
		task()
		if got != want {
			t.Fatalf("stole task %d, want %d", got, want)
		}
	}
	if _, ok := d.Steal(); ok {
		t.Fatal("expected empty deque after stealing all")
	}
}

func TestGrowthPreservesContents(t *testing.T) {
	d := New(2)
	const n = 100
	for i := 0; i < n; i++ {
		i := i
		d.Push(func() { _ = i })
	}
	if d.GrowthCount() == 0 {
		t.Fatal("expected at least one growth")
	}
	count := 0
	for {
		if _, ok := d.Pop(); !ok {
			break
		}
		count++
	}
	if count != n {
		t.Fatalf("popped %d tasks, want %d", count, n)
	}
}

func TestConcurrentOwnerAndThieves(t *testing.T) {
	d := New(16)
	const total = 10000
	var produced, consumed atomic.Int64
	done := make(chan struct{})

	var wg sync.WaitGroup

	const thieves = 4
	for i := 0; i < thieves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if _, ok := d.Steal(); ok {
					consumed.Add(1)
				}
			}
		}()
	}

	// Owner produces, then drains anything thieves left behind.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			d.Push(api.Task(func() {}))
			produced.Add(1)
		}
		for consumed.Load() < total {
			if _, ok := d.Pop(); ok {
				consumed.Add(1)
			}
		}
		close(done)
	}()

	wg.Wait()
	if consumed.Load() != total {
		t.Fatalf("consumed %d, want %d", consumed.Load(), total)
	}
}
