// Package workbench is the headless windowing layer: it owns the views shown
// in each slot and the window-level flags the session toggles. Callers refer
// to views by slot or Handle, never by pointer into widget state.
package workbench

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/editor"
	"github.com/Faultbox/packdesk/internal/views"
)

// Handle identifies an inserted view.
type Handle uint64

// Actions is the enablement state of document-level actions.
type Actions struct {
	NewDocument  bool
	Save         bool
	SaveAs       bool
	Compression  bool
	AssemblyKit  bool
	CheckScripts bool

	MyModNew       bool
	MyModDelete    bool
	MyModInstall   bool
	MyModUninstall bool
}

type slotEntry struct {
	handle Handle
	view   editor.View
}

// Window holds the view table. It is owned by the UI actor.
type Window struct {
	log  *zap.Logger
	next Handle

	slots map[views.Slot]slotEntry

	interactive      bool
	idle             bool
	profileSwitching bool
	actions          Actions
}

// New creates an empty, interactive window showing the idle state.
func New(log *zap.Logger) *Window {
	if log == nil {
		log = zap.NewNop()
	}
	return &Window{
		log:              log,
		slots:            make(map[views.Slot]slotEntry),
		interactive:      true,
		idle:             true,
		profileSwitching: true,
	}
}

// Insert shows v in slot, replacing whatever was there.
func (w *Window) Insert(slot views.Slot, v editor.View) Handle {
	w.next++
	w.slots[slot] = slotEntry{handle: w.next, view: v}
	w.idle = false
	w.log.Debug("view inserted", zap.Int("slot", int(slot)), zap.Stringer("path", v.Path()), zap.Uint64("handle", uint64(w.next)))
	return w.next
}

// Destroy drops the view in slot.
func (w *Window) Destroy(slot views.Slot) {
	if _, ok := w.slots[slot]; !ok {
		return
	}
	delete(w.slots, slot)
	w.log.Debug("view destroyed", zap.Int("slot", int(slot)))
}

// View returns the view shown in slot.
func (w *Window) View(slot views.Slot) (editor.View, bool) {
	e, ok := w.slots[slot]
	return e.view, ok
}

// Handle returns the handle of the view in slot.
func (w *Window) Handle(slot views.Slot) (Handle, bool) {
	e, ok := w.slots[slot]
	return e.handle, ok
}

// Slots returns the occupied slots in order.
func (w *Window) Slots() []views.Slot {
	slots := make([]views.Slot, 0, len(w.slots))
	for s := range w.slots {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}

func (w *Window) SetInteractive(on bool)      { w.interactive = on }
func (w *Window) Interactive() bool           { return w.interactive }
func (w *Window) ShowIdle()                   { w.idle = true }
func (w *Window) Idle() bool                  { return w.idle }
func (w *Window) SetProfileSwitching(on bool) { w.profileSwitching = on }
func (w *Window) ProfileSwitching() bool      { return w.profileSwitching }
func (w *Window) SetActions(a Actions)        { w.actions = a }
func (w *Window) Actions() Actions            { return w.actions }
