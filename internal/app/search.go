package app

import (
	"sync"
	"time"

	"console.busfleet.org/internal/debounce"
)

// SearchBox holds the console's free-text search input. Keystrokes land
// in the debounce buffer immediately; the committed value, which feeds
// the shareable URL and the re-filter, updates once per typing burst.
type SearchBox struct {
	mu        sync.RWMutex
	committed string
	input     *debounce.Committer
}

func NewSearchBox(window time.Duration) *SearchBox {
	box := &SearchBox{}
	box.input = debounce.New(window, func(value string) {
		box.mu.Lock()
		box.committed = value
		box.mu.Unlock()
	})
	return box
}

// Type buffers a keystroke's worth of input.
func (s *SearchBox) Type(value string) {
	s.input.Set(value)
}

// Submit commits immediately, bypassing the quiet window. Used when the
// operator presses enter or leaves the field.
func (s *SearchBox) Submit(value string) {
	s.input.CommitNow(value)
}

// Sync re-aligns the buffer from an externally-restored URL without
// committing.
func (s *SearchBox) Sync(value string) {
	s.input.Sync(value)
	s.mu.Lock()
	s.committed = value
	s.mu.Unlock()
}

// Buffer returns the uncommitted input.
func (s *SearchBox) Buffer() string {
	return s.input.Value()
}

// Committed returns the last committed search term.
func (s *SearchBox) Committed() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

// Stop cancels any pending commit.
func (s *SearchBox) Stop() {
	s.input.Stop()
}
