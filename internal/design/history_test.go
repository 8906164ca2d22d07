package design_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/design"
)

func TestHistory_UndoRedoTruncate(t *testing.T) {
	h := design.NewHistory(0, 0)
	assert.Equal(t, 0, h.Pos())
	assert.False(t, h.CanUndo())

	for i := 1; i <= 3; i++ {
		h.Push(i)
	}
	assert.Equal(t, 3, h.Pos())

	v, ok := h.Undo()
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	v, _ = h.Undo()
	assert.Equal(t, 1, v)
	assert.True(t, h.CanRedo())

	h.Push(9)
	assert.False(t, h.CanRedo(), "pushing after undo drops the redo tail")
	assert.Equal(t, 3, h.Len())
	cur, _ := h.Current()
	assert.Equal(t, 9, cur)

	h.Undo()
	h.Undo()
	_, ok = h.Undo()
	assert.False(t, ok, "root cannot be undone")
	assert.Equal(t, 0, h.Pos())
}

func TestHistory_Limit(t *testing.T) {
	h := design.NewHistory(0, 3)
	for i := 1; i <= 5; i++ {
		h.Push(i)
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Pos())
	v, _ := h.Undo()
	assert.Equal(t, 4, v)
	v, _ = h.Undo()
	assert.Equal(t, 0, v, "the root survives trimming")
	assert.False(t, h.CanUndo())
	v, _ = h.Redo()
	assert.Equal(t, 4, v)
}

func TestHistory_LimitKeepsRootAfterManyCommits(t *testing.T) {
	h := design.NewHistory(-1, 10)
	for i := 0; i < 250; i++ {
		h.Push(i)
	}
	assert.Equal(t, 10, h.Len())

	for h.CanUndo() {
		h.Undo()
	}
	root, _ := h.Current()
	assert.Equal(t, -1, root)
}

func TestHistory_EmptyAndReset(t *testing.T) {
	var h design.History[string]
	assert.Equal(t, -1, h.Pos())
	_, ok := h.Current()
	assert.False(t, ok)

	h.Push("a")
	assert.Equal(t, 0, h.Pos())
	h.Push("b")
	h.Reset("root")
	assert.Equal(t, 1, h.Len())
	cur, _ := h.Current()
	assert.Equal(t, "root", cur)
}

func TestHistory_SnapshotsAreNotAliased(t *testing.T) {
	h := design.NewHistory([]int{}, 0)
	h.Push([]int{1})
	h.Push([]int{1, 2})
	h.Undo()
	h.Push([]int{7})
	h.Undo()
	v, _ := h.Redo()
	assert.Equal(t, []int{7}, v)
	h.Undo()
	v, _ = h.Current()
	assert.Equal(t, []int{1}, v)
}
