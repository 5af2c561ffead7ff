// Package views tracks which archive paths are materialized as open views in
// the editor area.
package views

import (
	"sort"

	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/pkg/archive"
)

// Slot is the ordinal of a view position in the editor area.
type Slot int

// Destroyer tears down the view occupying a slot.
type Destroyer func(Slot)

// Registry maps slots to the paths they display. At most one slot maps a
// given path. It is owned by the UI actor and not safe for concurrent use.
type Registry struct {
	slots   map[Slot]archive.Path
	destroy Destroyer
}

// NewRegistry creates an empty registry. destroy is called whenever a view
// is purged; it may be nil.
func NewRegistry(destroy Destroyer) *Registry {
	if destroy == nil {
		destroy = func(Slot) {}
	}
	return &Registry{slots: make(map[Slot]archive.Path), destroy: destroy}
}

// OpenView records that slot displays path. It fails with
// errs.AlreadyOpenElsewhere when another slot already shows path. On success
// whatever slot displayed before is destroyed.
func (r *Registry) OpenView(path archive.Path, slot Slot) error {
	for s, p := range r.slots {
		if s != slot && p.Equal(path) {
			return errs.WithPaths(errs.AlreadyOpenElsewhere, nil, path.String())
		}
	}

	if _, ok := r.slots[slot]; ok {
		r.destroy(slot)
		delete(r.slots, slot)
	}
	r.slots[slot] = path.Clone()
	return nil
}

// CloseView removes and destroys the view in slot. It reports whether no
// views remain.
func (r *Registry) CloseView(slot Slot) bool {
	if _, ok := r.slots[slot]; ok {
		r.destroy(slot)
		delete(r.slots, slot)
	}
	return len(r.slots) == 0
}

// CloseAll destroys every view.
func (r *Registry) CloseAll() {
	for _, slot := range r.Slots() {
		r.destroy(slot)
		delete(r.slots, slot)
	}
}

// FindSlotsByPath returns the slots displaying path, in slot order.
func (r *Registry) FindSlotsByPath(path archive.Path) []Slot {
	var result []Slot
	for _, slot := range r.Slots() {
		if r.slots[slot].Equal(path) {
			result = append(result, slot)
		}
	}
	return result
}

// PathAt returns the path displayed in slot.
func (r *Registry) PathAt(slot Slot) (archive.Path, bool) {
	p, ok := r.slots[slot]
	return p, ok
}

// OpenPaths returns the set of displayed paths.
func (r *Registry) OpenPaths() archive.Set {
	set := archive.NewSet()
	for _, p := range r.slots {
		set.Add(p)
	}
	return set
}

// Slots returns the occupied slots in order.
func (r *Registry) Slots() []Slot {
	slots := make([]Slot, 0, len(r.slots))
	for s := range r.slots {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}

// Len returns the number of open views.
func (r *Registry) Len() int {
	return len(r.slots)
}

// Rename points every view of from at to, so views follow their entry
// when its path changes. Views below a renamed folder follow as well.
func (r *Registry) Rename(from, to archive.Path) {
	if from.IsRoot() {
		return
	}
	for slot, p := range r.slots {
		if p.HasPrefix(from) {
			r.slots[slot] = to.Join(p[len(from):]...)
		}
	}
}
