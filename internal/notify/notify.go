// Package notify is a small publish/subscribe mailbox for ephemeral user feedback.
//
// Notifications are kept in publication order, never de-duplicated, and retracted
// automatically after a fixed lifetime unless dismissed first.
package notify

import (
	"slices"
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays visible without user action.
const DefaultTTL = 4 * time.Second

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

type Notification struct {
	ID          uint64
	Message     string
	Severity    Severity
	PublishedAt time.Time
}

// Clock abstracts time so expiry can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is the wall clock.
func SystemClock() Clock { return realClock{} }

type Option func(*Hub)

func WithClock(c Clock) Option {
	return func(h *Hub) {
		if c != nil {
			h.clock = c
		}
	}
}

func WithTTL(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.ttl = d
		}
	}
}

// Hub is safe for concurrent use. Subscribers are invoked outside the state
// lock with a fresh snapshot after every change, in subscription order.
// Deliveries are serialized and a snapshot older than one already delivered
// is dropped, so the last snapshot a subscriber sees is always current.
// Subscribers must not call back into the hub synchronously.
type Hub struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	nextID  uint64
	version uint64
	active  []Notification
	timers  map[uint64]Timer
	closed  bool

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func([]Notification)

	deliverMu sync.Mutex
	delivered uint64
}

func New(opts ...Option) *Hub {
	h := &Hub{
		clock:  SystemClock(),
		ttl:    DefaultTTL,
		timers: map[uint64]Timer{},
		subs:   map[int]func([]Notification){},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Publish adds a notification and schedules its retraction. It returns the id.
func (h *Hub) Publish(message string, sev Severity) uint64 {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return 0
	}
	h.nextID++
	n := Notification{
		ID:          h.nextID,
		Message:     message,
		Severity:    sev,
		PublishedAt: h.clock.Now(),
	}
	h.active = append(h.active, n)
	id := n.ID
	h.timers[id] = h.clock.AfterFunc(h.ttl, func() { h.retract(id) })
	snap, version := h.changedLocked()
	h.mu.Unlock()

	h.broadcast(snap, version)
	return id
}

// Dismiss retracts a notification early. It reports whether it was still active.
func (h *Hub) Dismiss(id uint64) bool {
	return h.retract(id)
}

// Active returns the visible notifications, oldest first.
func (h *Hub) Active() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Subscribe registers fn and immediately delivers the current snapshot.
// The returned func unsubscribes.
func (h *Hub) Subscribe(fn func([]Notification)) func() {
	if fn == nil {
		return func() {}
	}
	h.subMu.Lock()
	h.nextSub++
	key := h.nextSub
	h.subs[key] = fn
	h.subMu.Unlock()

	h.deliverMu.Lock()
	fn(h.Active())
	h.deliverMu.Unlock()

	return func() {
		h.subMu.Lock()
		delete(h.subs, key)
		h.subMu.Unlock()
	}
}

// Close stops pending timers and drops all notifications. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	for id, t := range h.timers {
		t.Stop()
		delete(h.timers, id)
	}
	h.active = nil
	h.closed = true
	h.mu.Unlock()
}

func (h *Hub) retract(id uint64) bool {
	h.mu.Lock()
	idx := -1
	for i, n := range h.active {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		h.mu.Unlock()
		return false
	}
	h.active = append(h.active[:idx:idx], h.active[idx+1:]...)
	if t, ok := h.timers[id]; ok {
		t.Stop()
		delete(h.timers, id)
	}
	snap, version := h.changedLocked()
	h.mu.Unlock()

	h.broadcast(snap, version)
	return true
}

func (h *Hub) snapshotLocked() []Notification {
	out := make([]Notification, len(h.active))
	copy(out, h.active)
	return out
}

// changedLocked bumps the version and returns the snapshot that goes with it.
func (h *Hub) changedLocked() ([]Notification, uint64) {
	h.version++
	return h.snapshotLocked(), h.version
}

func (h *Hub) broadcast(snap []Notification, version uint64) {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	if version <= h.delivered {
		return
	}
	h.delivered = version

	h.subMu.Lock()
	keys := make([]int, 0, len(h.subs))
	for k := range h.subs {
		keys = append(keys, k)
	}
	fns := make([]func([]Notification), 0, len(keys))
	slices.Sort(keys)
	for _, k := range keys {
		fns = append(fns, h.subs[k])
	}
	h.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
