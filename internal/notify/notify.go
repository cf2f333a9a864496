// Package notify implements the process-wide queue of transient
// user-facing messages. A single Broadcaster instance is owned by the
// composition root and injected into every producer; there is no package
// singleton.
//
// Expiry is deadline-based against an injected clock rather than one OS
// timer per notification: Active prunes entries whose deadline has passed,
// so a cleared notification can never be revived or double-removed by a
// stale timer, and tests drive expiry deterministically with a mock clock.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"console.busfleet.org/internal/clock"
)

// Type classifies a notification for presentation.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Default auto-hide durations. Errors stay longer because they need more
// reading time.
const (
	DefaultDuration      = 4000 * time.Millisecond
	DefaultErrorDuration = 6000 * time.Millisecond
)

// Notification is one transient message in the queue.
type Notification struct {
	ID        string        `json:"id"`
	Type      Type          `json:"type"`
	Message   string        `json:"message"`
	AutoHide  bool          `json:"autoHide"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// expired reports whether the auto-hide deadline has passed.
func (n Notification) expired(now time.Time) bool {
	return n.AutoHide && now.Sub(n.CreatedAt) >= n.Duration
}

// Option customizes a notification at Show time.
type Option func(*Notification)

// WithDuration overrides the auto-hide duration.
func WithDuration(d time.Duration) Option {
	return func(n *Notification) {
		n.Duration = d
	}
}

// Sticky disables auto-hide; the notification stays until dismissed.
func Sticky() Option {
	return func(n *Notification) {
		n.AutoHide = false
	}
}

// Broadcaster owns the ordered notification list. Safe for concurrent use;
// writes are append-only and serialized by the mutex.
type Broadcaster struct {
	mu    sync.Mutex
	clock clock.Clock
	items []Notification
}

// New creates a Broadcaster using the given clock. A nil clock falls back
// to system time.
func New(c clock.Clock) *Broadcaster {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Broadcaster{clock: c}
}

// Show enqueues a notification and returns its unique id.
func (b *Broadcaster) Show(message string, typ Type, opts ...Option) string {
	n := Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		AutoHide:  true,
		Duration:  DefaultDuration,
		CreatedAt: b.clock.Now(),
	}
	if typ == TypeError {
		n.Duration = DefaultErrorDuration
	}
	for _, opt := range opts {
		opt(&n)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.prune()
	b.items = append(b.items, n)
	return n.ID
}

// Active returns the visible notifications in enqueue order, pruning any
// whose auto-hide deadline has passed.
func (b *Broadcaster) Active() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prune()
	return append([]Notification(nil), b.items...)
}

// Hide removes one notification by id. Hiding an unknown or already
// removed id is a no-op.
func (b *Broadcaster) Hide(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// ClearAll empties the queue immediately. With deadline-based expiry there
// are no per-entry timers left to cancel.
func (b *Broadcaster) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}

// prune drops expired entries. Caller must hold b.mu.
func (b *Broadcaster) prune() {
	now := b.clock.Now()
	kept := b.items[:0]
	for _, n := range b.items {
		if !n.expired(now) {
			kept = append(kept, n)
		}
	}
	b.items = kept
}
