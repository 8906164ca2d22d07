package design

// History is a linear undo history. The pointer is -1 when empty and otherwise
// indexes the current entry. Pushing while not at the tail drops every entry
// after the pointer first. With a limit, the oldest entries after the root are
// dropped, so undoing everything always returns to the root.
type History[T any] struct {
	entries []T
	pos     int
	limit   int
}

// NewHistory returns a history whose single entry is root.
func NewHistory[T any](root T, limit int) *History[T] {
	return &History[T]{entries: []T{root}, pos: 0, limit: limit}
}

func (h *History[T]) Push(v T) {
	if len(h.entries) == 0 {
		h.pos = -1
	}
	h.entries = append(h.entries[:h.pos+1:h.pos+1], v)
	h.pos = len(h.entries) - 1
	if h.limit > 0 && len(h.entries) > max(h.limit, 2) {
		drop := len(h.entries) - max(h.limit, 2)
		h.entries = append(h.entries[:1], h.entries[1+drop:]...)
		h.pos -= drop
	}
}

func (h *History[T]) CanUndo() bool { return len(h.entries) > 0 && h.pos > 0 }
func (h *History[T]) CanRedo() bool { return len(h.entries) > 0 && h.pos < len(h.entries)-1 }

// Undo moves back one entry and returns it. The root entry cannot be undone.
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		var zero T
		return zero, false
	}
	h.pos--
	return h.entries[h.pos], true
}

func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		var zero T
		return zero, false
	}
	h.pos++
	return h.entries[h.pos], true
}

func (h *History[T]) Current() (T, bool) {
	if len(h.entries) == 0 {
		var zero T
		return zero, false
	}
	return h.entries[h.pos], true
}

// Reset discards everything and makes root the only entry.
func (h *History[T]) Reset(root T) {
	h.entries = []T{root}
	h.pos = 0
}

func (h *History[T]) Len() int { return len(h.entries) }

// Pos is the pointer, -1 when empty.
func (h *History[T]) Pos() int {
	if len(h.entries) == 0 {
		return -1
	}
	return h.pos
}
