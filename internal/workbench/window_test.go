package workbench

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/packdesk/internal/editor"
	"github.com/Faultbox/packdesk/internal/views"
)

func TestInsertDestroy(t *testing.T) {
	w := New(nil)
	assert.True(t, w.Idle())

	h1 := w.Insert(0, &editor.NotesView{Text: "a"})
	h2 := w.Insert(2, &editor.NotesView{Text: "b"})
	assert.NotEqual(t, h1, h2)
	assert.False(t, w.Idle())
	assert.Equal(t, []views.Slot{0, 2}, w.Slots())

	v, ok := w.View(2)
	require.True(t, ok)
	assert.Equal(t, "notes, 1 bytes", v.Summary())

	// Replacing a slot hands out a new handle.
	h3 := w.Insert(0, &editor.NotesView{Text: "c"})
	got, _ := w.Handle(0)
	assert.Equal(t, h3, got)

	w.Destroy(0)
	w.Destroy(0)
	_, ok = w.View(0)
	assert.False(t, ok)
	assert.Equal(t, []views.Slot{2}, w.Slots())

	w.ShowIdle()
	assert.True(t, w.Idle())
}

func TestFlags(t *testing.T) {
	w := New(nil)
	assert.True(t, w.Interactive())
	assert.True(t, w.ProfileSwitching())

	w.SetInteractive(false)
	w.SetProfileSwitching(false)
	w.SetActions(Actions{Save: true, MyModNew: true})

	assert.False(t, w.Interactive())
	assert.False(t, w.ProfileSwitching())
	assert.Equal(t, Actions{Save: true, MyModNew: true}, w.Actions())
}

func TestPrompters(t *testing.T) {
	dir := t.TempDir()

	path, ok := FixedDestination("out.pack").SaveDestination(dir, "unknown.pack")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "out.pack"), path)

	abs := filepath.Join(dir, "abs.pack")
	path, ok = FixedDestination(abs).SaveDestination("/elsewhere", "x")
	assert.True(t, ok)
	assert.Equal(t, abs, path)

	path, ok = FixedDestination("rel.pack").SaveDestination("", "x")
	assert.True(t, ok)
	assert.Equal(t, "rel.pack", path)

	_, ok = FixedDestination("").SaveDestination(dir, "x")
	assert.False(t, ok)
	_, ok = Cancel.SaveDestination(dir, "x")
	assert.False(t, ok)
}
