// Package tui provides a Bubble Tea terminal UI for the Mikdash engine.
package tui

// History is a fixed-size ring of submitted commands with a browsing
// cursor for Up/Down recall.
type History struct {
	ring   []string
	start  int // index of the oldest entry
	size   int
	cursor int // -1 = not navigating, otherwise 0 (oldest) .. size-1
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{ring: make([]string, max), cursor: -1}
}

// Len returns the number of stored commands.
func (h *History) Len() int { return h.size }

func (h *History) at(i int) string {
	return h.ring[(h.start+i)%len(h.ring)]
}

// Push records a command. Consecutive duplicates are skipped; when full the
// oldest command is overwritten.
func (h *History) Push(cmd string) {
	if len(h.ring) == 0 {
		return
	}
	if h.size > 0 && h.at(h.size-1) == cmd {
		return
	}
	if h.size < len(h.ring) {
		h.ring[(h.start+h.size)%len(h.ring)] = cmd
		h.size++
		return
	}
	h.ring[h.start] = cmd
	h.start = (h.start + 1) % len(h.ring)
}

// Prev steps to the next older command, stopping at the oldest.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if h.size == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = h.size - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.at(h.cursor), true
}

// Next steps to the next newer command. Returns ("", false) once past the
// newest, which puts the cursor back on fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.size {
		h.cursor = -1
		return "", false
	}
	return h.at(h.cursor), true
}

// ResetCursor leaves browsing mode.
func (h *History) ResetCursor() {
	h.cursor = -1
}
