package route

import (
	"context"
	"sync"
)

// History is an in-memory navigation surface. It records every applied
// navigation, newest last.
type History struct {
	mu      sync.Mutex
	entries []string
}

// NewHistory returns a History positioned at start, or empty if start is "".
func NewHistory(start string) *History {
	h := &History{}
	if start != "" {
		h.entries = append(h.entries, Clean(start))
	}
	return h
}

// Navigate appends target.
func (h *History) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	h.entries = append(h.entries, Clean(target))
	h.mu.Unlock()
	return nil
}

// Current returns the latest location, or "" before any navigation.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Entries returns a copy of the recorded locations.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
