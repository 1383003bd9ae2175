package queue

import (
	"testing"

	"github.com/chasework/scheduler/api"
)

func TestPopHonorsPriorityOrder(t *testing.T) {
	q := New()
	var ran []string
	q.PushTask(func() { ran = append(ran, "low") }, api.Low)
	q.PushTask(func() { ran = append(ran, "normal") }, api.Normal)
	q.PushTask(func() { ran = append(ran, "critical") }, api.Critical)
	q.PushTask(func() { ran = append(ran, "high") }, api.High)

	for i := 0; i < 4; i++ {
		task, _, ok := q.PopTask()
		if !ok {
			t.Fatalf("expected task %d", i)
		}
		task()
	}
	want := []string{"critical", "high", "normal", "low"}
	for i, v := range want {
		if ran[i] != v {
			t.Fatalf("ran[%d] = %s, want %s", i, ran[i], v)
		}
	}
}

func TestStealHonorsPriorityOrder(t *testing.T) {
	q := New()
	q.PushTask(func() {}, api.Normal)
	q.PushTask(func() {}, api.Critical)

	if _, priority, ok := q.StealTask(); !ok || priority != api.Critical {
		t.Fatalf("expected stealable critical task, got priority=%v ok=%v", priority, ok)
	}
	if q.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", q.Depth())
	}
}

func TestEmptyAndDepth(t *testing.T) {
	q := New()
	if !q.Empty() {
		t.Fatal("expected new queue to be empty")
	}
	q.PushTask(func() {}, api.Low)
	if q.Empty() {
		t.Fatal("expected non-empty queue after push")
	}
	if q.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", q.Depth())
	}
}

func TestActiveFlag(t *testing.T) {
	q := New()
	if !q.Active() {
		t.Fatal("expected new queue to be active")
	}
	q.SetActive(false)
	if q.Active() {
		t.Fatal("expected SetActive(false) to take effect")
	}
}
