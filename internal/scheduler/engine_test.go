package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineEmitsInDeadlineOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(Event{Key: "overlay", Deadline: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule overlay: %v", err)
	}
	if err := engine.Schedule(Event{Key: "toast", Deadline: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule toast: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.Key != "toast" || second.Key != "overlay" {
		t.Fatalf("unexpected order: first=%s second=%s", first.Key, second.Key)
	}
}

func TestEngineKeepsScheduleOrderForEqualDeadlines(t *testing.T) {
	engine := NewEngine(8)
	deadline := time.Now().Add(10 * time.Millisecond)
	for gen := uint64(1); gen <= 3; gen++ {
		if err := engine.Schedule(Event{Key: "toast", Generation: gen, Deadline: deadline}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	engine.Start()
	defer engine.Stop()

	for want := uint64(1); want <= 3; want++ {
		if got := waitEvent(t, engine.C(), time.Second); got.Generation != want {
			t.Fatalf("expected generation %d, got %d", want, got.Generation)
		}
	}
}

func TestEngineCancelRemovesKey(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	if err := engine.After(40*time.Millisecond, "toast", 1); err != nil {
		t.Fatalf("after: %v", err)
	}
	if err := engine.After(60*time.Millisecond, "overlay", 1); err != nil {
		t.Fatalf("after: %v", err)
	}
	if n := engine.Cancel("toast"); n != 1 {
		t.Fatalf("expected 1 cancelled, got %d", n)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", engine.Pending())
	}
	if got := waitEvent(t, engine.C(), time.Second); got.Key != "overlay" {
		t.Fatalf("expected overlay, got %s", got.Key)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	deadline := time.Now().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(Event{Key: "toast", Generation: uint64(i), Deadline: deadline}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidation(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Event{Key: "bad"}); !errors.Is(err, ErrInvalidDeadline) {
		t.Fatalf("expected ErrInvalidDeadline, got %v", err)
	}
	engine.Start()
	engine.Stop()
	if err := engine.After(time.Millisecond, "late", 1); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if _, open := <-engine.C(); open {
		t.Fatalf("expected closed channel after stop")
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}
