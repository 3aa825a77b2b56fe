// Package history provides the bounded action history shared by all
// detectors of a session.
package history

import (
	"github.com/felixgeelhaar/suggest-go/domain/action"
)

// DefaultCapacity is the number of actions kept when no capacity is given.
const DefaultCapacity = 100

// History is a fixed-capacity ring of actions. Index 0 is the most recent
// action. Appending to a full history evicts the oldest entry.
//
// History is not safe for concurrent use; the engine serializes access.
type History struct {
	buf   []action.Action
	head  int // next write position
	count int
}

// New creates a history holding at most capacity actions. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		buf: make([]action.Action, capacity),
	}
}

// Append records a as the most recent action.
func (h *History) Append(a action.Action) {
	h.buf[h.head] = a
	h.head = (h.head + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// Len returns the number of stored actions.
func (h *History) Len() int {
	return h.count
}

// Cap returns the maximum number of stored actions.
func (h *History) Cap() int {
	return len(h.buf)
}

// Get returns the action i positions back from the most recent one.
func (h *History) Get(i int) (action.Action, bool) {
	if i < 0 || i >= h.count {
		return action.Action{}, false
	}
	idx := (h.head - 1 - i + len(h.buf)) % len(h.buf)
	return h.buf[idx], true
}

// Last returns the most recent action.
func (h *History) Last() (action.Action, bool) {
	return h.Get(0)
}

// Clear drops every stored action.
func (h *History) Clear() {
	clear(h.buf)
	h.head = 0
	h.count = 0
}

// Snapshot returns the stored actions from oldest to newest.
func (h *History) Snapshot() []action.Action {
	out := make([]action.Action, 0, h.count)
	for i := h.count - 1; i >= 0; i-- {
		a, _ := h.Get(i)
		out = append(out, a)
	}
	return out
}
