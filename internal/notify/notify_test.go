package notify

import (
	"testing"
	"time"
)

func messages(ns []Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}

func TestPublish_KeepsOrderAndExpiresAfterTTL(t *testing.T) {
	clock := NewManualClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	h := New(WithClock(clock))

	h.Publish("Task created successfully!", Success)
	clock.Advance(time.Second)
	h.Publish("Failed to delete task", Error)

	got := messages(h.Active())
	if len(got) != 2 || got[0] != "Task created successfully!" || got[1] != "Failed to delete task" {
		t.Fatalf("unexpected active set: %v", got)
	}

	clock.Advance(3 * time.Second)
	got = messages(h.Active())
	if len(got) != 1 || got[0] != "Failed to delete task" {
		t.Fatalf("first notification should have expired at 4s: %v", got)
	}

	clock.Advance(time.Second)
	if n := len(h.Active()); n != 0 {
		t.Fatalf("expected nothing active, got %d", n)
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no pending timers")
	}
}

func TestPublish_DoesNotDeduplicate(t *testing.T) {
	clock := NewManualClock(time.Now())
	h := New(WithClock(clock))
	a := h.Publish("Saved", Success)
	b := h.Publish("Saved", Success)
	if a == b {
		t.Fatalf("expected distinct ids")
	}
	if n := len(h.Active()); n != 2 {
		t.Fatalf("expected two identical notifications, got %d", n)
	}
}

func TestDismiss_RetractsEarlyAndStopsTimer(t *testing.T) {
	clock := NewManualClock(time.Now())
	h := New(WithClock(clock))
	id := h.Publish("Tag created", Success)
	h.Publish("List created", Success)

	if !h.Dismiss(id) {
		t.Fatalf("expected dismiss to succeed")
	}
	if h.Dismiss(id) {
		t.Fatalf("second dismiss should report false")
	}
	if got := messages(h.Active()); len(got) != 1 || got[0] != "List created" {
		t.Fatalf("unexpected active set: %v", got)
	}
	if clock.Pending() != 1 {
		t.Fatalf("dismissed timer should be stopped, pending=%d", clock.Pending())
	}
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	clock := NewManualClock(time.Now())
	h := New(WithClock(clock), WithTTL(2*time.Second))
	h.Publish("before", Info)

	var seen [][]string
	unsub := h.Subscribe(func(ns []Notification) {
		seen = append(seen, messages(ns))
	})
	if len(seen) != 1 || len(seen[0]) != 1 {
		t.Fatalf("subscribe should deliver current state immediately: %v", seen)
	}

	h.Publish("after", Error)
	clock.Advance(2 * time.Second)
	if len(seen) != 4 {
		t.Fatalf("expected 4 deliveries (initial, publish, 2 expiries), got %d: %v", len(seen), seen)
	}
	if len(seen[3]) != 0 {
		t.Fatalf("final snapshot should be empty: %v", seen[3])
	}

	unsub()
	h.Publish("ignored", Info)
	if len(seen) != 4 {
		t.Fatalf("unsubscribed callback still invoked")
	}
}

func TestBroadcast_DropsStaleSnapshot(t *testing.T) {
	clock := NewManualClock(time.Now())
	h := New(WithClock(clock), WithTTL(time.Second))

	var last []string
	h.Subscribe(func(ns []Notification) { last = messages(ns) })

	h.Publish("first", Info)
	h.mu.Lock()
	stale, version := h.changedLocked()
	h.mu.Unlock()

	// The timer retracts "first" and delivers the newer, empty snapshot
	// before the earlier one reaches subscribers.
	clock.Advance(time.Second)
	if len(last) != 0 {
		t.Fatalf("expected empty snapshot after expiry, got %v", last)
	}
	h.broadcast(stale, version)
	if len(last) != 0 {
		t.Fatalf("older snapshot replaced the current one: %v", last)
	}

	h.Publish("second", Info)
	if len(last) != 1 || last[0] != "second" {
		t.Fatalf("later changes must still be delivered: %v", last)
	}
}

func TestClose_DropsEverything(t *testing.T) {
	clock := NewManualClock(time.Now())
	h := New(WithClock(clock))
	h.Publish("x", Info)
	h.Close()
	if len(h.Active()) != 0 || clock.Pending() != 0 {
		t.Fatalf("close should drop notifications and timers")
	}
	if id := h.Publish("y", Info); id != 0 {
		t.Fatalf("publish after close should be ignored")
	}
}
