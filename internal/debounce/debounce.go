// Package debounce buffers rapid free-text filter changes and commits a
// single update after a quiet period, so every keystroke updates the local
// buffer immediately while the expensive downstream work (URL rewrite,
// poll parameter refresh) happens once per burst.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period before a buffered value commits.
const DefaultWindow = 300 * time.Millisecond

// Committer debounces commits of a string value. Discrete controls bypass
// the window via CommitNow. Safe for concurrent use.
type Committer struct {
	mu      sync.Mutex
	window  time.Duration
	commit  func(string)
	timer   *time.Timer
	value   string
	pending bool
	seq     uint64
	stopped bool
}

// New creates a Committer that calls commit after window of inactivity.
// A non-positive window falls back to DefaultWindow.
func New(window time.Duration, commit func(string)) *Committer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Committer{window: window, commit: commit}
}

// Set stores value in the local buffer immediately and schedules a commit
// after the quiet window, cancelling any previously scheduled commit.
// Setting the empty value schedules a commit of the empty value, which the
// filter codec encodes as an absent key.
func (c *Committer) Set(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	c.value = value
	c.pending = true
	c.seq++
	seq := c.seq

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, func() {
		c.fire(seq)
	})
}

// fire commits the buffered value if no newer Set/CommitNow/Stop has
// superseded the scheduled timer.
func (c *Committer) fire(seq uint64) {
	c.mu.Lock()
	if c.stopped || !c.pending || seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.pending = false
	value := c.value
	commit := c.commit
	c.mu.Unlock()

	if commit != nil {
		commit(value)
	}
}

// CommitNow cancels any pending commit and commits value synchronously.
// Used by discrete controls (selects) that must not feel debounced.
func (c *Committer) CommitNow(value string) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.value = value
	commit := c.commit
	c.mu.Unlock()

	if commit != nil {
		commit(value)
	}
}

// Flush commits a pending value immediately instead of waiting out the
// window. A no-op when nothing is pending.
func (c *Committer) Flush() {
	c.mu.Lock()
	if c.stopped || !c.pending {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	value := c.value
	commit := c.commit
	c.mu.Unlock()

	if commit != nil {
		commit(value)
	}
}

// Sync re-aligns the local buffer with an externally-changed value (for
// example, browser history navigation rewriting the URL) without entering
// the debounce window or committing.
func (c *Committer) Sync(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.cancelLocked()
	c.value = value
}

// Value returns the current local buffer.
func (c *Committer) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Stop cancels any pending commit and rejects further use. Leaked timers
// would otherwise write state after the owning view is gone.
func (c *Committer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.stopped = true
}

func (c *Committer) cancelLocked() {
	c.pending = false
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
