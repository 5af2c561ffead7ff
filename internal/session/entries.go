package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/internal/tree"
	"github.com/Faultbox/packdesk/internal/uistate"
	"github.com/Faultbox/packdesk/internal/views"
	"github.com/Faultbox/packdesk/pkg/archive"
)

// TableFolder is the top-level folder holding db tables.
const TableFolder = "db"

// CreateEntry creates an empty entry of kind named name. Tables go to
// db/<table>/<name>; other kinds go below the single selected folder, with
// "/" in name creating nested folders. It returns the created path, or nil
// when nothing suitable is selected.
func (s *Session) CreateEntry(ctx context.Context, kind archive.Kind, name, table string) (archive.Path, error) {
	if name == "" {
		return nil, errs.New(errs.EmptyInput, "entry name")
	}

	var target archive.Path
	switch kind {
	case archive.KindTable:
		if table == "" {
			return nil, errs.New(errs.EmptyInput, "table name")
		}
		target = archive.Path{TableFolder, table, name}
	case archive.KindLoc, archive.KindText:
		target = s.selectedFolder()
		if target == nil {
			return nil, nil
		}
		segments := splitName(name)
		if len(segments) == 0 {
			return nil, errs.New(errs.EmptyInput, "entry name")
		}
		last := len(segments) - 1
		segments[last] = normalizeName(kind, segments[last])
		target = target.Join(segments...)
	default:
		return nil, fmt.Errorf("cannot create %s entries", kind)
	}

	resp, err := s.do(ctx, command.EntryExists{Path: target})
	if err != nil {
		return nil, err
	}
	if resp.(command.Exists).Value {
		return nil, errs.WithPaths(errs.FileAlreadyExists, nil, target.String())
	}

	if _, err := s.do(ctx, command.CreateEntry{Path: target, Kind: kind, Table: table}); err != nil {
		return nil, err
	}

	s.states.Put(target, uistate.Default())
	s.tree.Apply(tree.Add{Paths: []archive.Path{target}})
	s.tree.Apply(tree.Modify{Paths: []archive.Path{target}})
	s.log.Info("entry created", zap.Stringer("path", target), zap.Stringer("kind", kind))
	return target, nil
}

// selectedFolder returns the single selected folder (or root), or nil.
func (s *Session) selectedFolder() archive.Path {
	sel := s.tree.Selection()
	if len(sel) != 1 || sel[0].Kind == tree.ItemFile {
		return nil
	}
	if sel[0].Path.IsRoot() {
		return archive.Path{}
	}
	return sel[0].Path
}

// normalizeName adds the suffix an entry of kind must carry.
func normalizeName(kind archive.Kind, name string) string {
	switch kind {
	case archive.KindLoc:
		if !strings.HasSuffix(name, archive.LocSuffix) {
			return name + archive.LocSuffix
		}
	case archive.KindText:
		if !archive.IsTextName(name) {
			return name + archive.DefaultTextSuffix
		}
	}
	return name
}

func splitName(name string) []string {
	var segments []string
	for _, part := range strings.Split(name, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// OpenEntryView opens the single selected entry in slot. It does nothing
// while the tree is locked or unless exactly one item is selected. Selecting
// a folder, the root or an entry without an editor closes every view.
func (s *Session) OpenEntryView(ctx context.Context, slot views.Slot) error {
	if s.tree.Locked() {
		return nil
	}
	sel := s.tree.Selection()
	if len(sel) != 1 {
		return nil
	}

	item := sel[0]
	kind := archive.KindOf(item.Path)
	if item.Kind != tree.ItemFile || kind == archive.KindUnsupported {
		s.closeAll()
		s.win.ShowIdle()
		return nil
	}

	if err := s.checkFree(item.Path, slot); err != nil {
		return err
	}

	view, err := s.factory.Open(ctx, item.Path, s.active)
	if err != nil {
		s.log.Warn("view failed", zap.Stringer("path", item.Path), zap.Error(err))
		return err
	}
	if err := s.registry.OpenView(item.Path, slot); err != nil {
		return err
	}
	s.win.Insert(slot, view)

	if kind == archive.KindTable {
		s.tables[slot] = true
	}
	s.syncProfileSwitching()
	if !s.states.Has(item.Path) {
		s.states.Put(item.Path, uistate.Default())
	}
	return nil
}

// checkFree fails when path is shown in a slot other than slot.
func (s *Session) checkFree(path archive.Path, slot views.Slot) error {
	for _, other := range s.registry.FindSlotsByPath(path) {
		if other != slot {
			return errs.WithPaths(errs.AlreadyOpenElsewhere, nil, path.String())
		}
	}
	return nil
}

// OpenNotes opens the document notes in slot.
func (s *Session) OpenNotes(ctx context.Context, slot views.Slot) error {
	root := archive.Path{}
	if err := s.checkFree(root, slot); err != nil {
		return err
	}
	view, err := s.factory.Notes(ctx)
	if err != nil {
		return err
	}
	if err := s.registry.OpenView(root, slot); err != nil {
		return err
	}
	s.win.Insert(slot, view)
	s.syncProfileSwitching()
	return nil
}

// CloseView closes the view in slot.
func (s *Session) CloseView(slot views.Slot) {
	path, ok := s.registry.PathAt(slot)
	empty := s.registry.CloseView(slot)
	if ok && !s.persist {
		s.states.Remove(path)
	}
	if empty {
		s.win.ShowIdle()
	}
	s.syncProfileSwitching()
}

// SaveText writes text back to the entry shown in slot. The notes view
// writes the document notes.
func (s *Session) SaveText(ctx context.Context, slot views.Slot, text string) error {
	path, ok := s.registry.PathAt(slot)
	if !ok {
		return fmt.Errorf("no view in slot %d", slot)
	}
	if path.IsRoot() {
		return s.SaveNotes(ctx, text)
	}

	if _, err := s.do(ctx, command.EncodeTextEntry{Path: path, Text: text}); err != nil {
		return err
	}
	s.tree.Apply(tree.Modify{Paths: []archive.Path{path}})
	return nil
}

// SaveNotes replaces the document notes. Notes have no tree node of their
// own, so the root stays marked until the next save.
func (s *Session) SaveNotes(ctx context.Context, text string) error {
	if _, err := s.do(ctx, command.SetNotes{Text: text}); err != nil {
		return err
	}
	root := []archive.Path{{}}
	s.tree.Apply(tree.Modify{Paths: root})
	s.tree.Apply(tree.MarkAlwaysModified{Paths: root})
	return nil
}

// CheckScript checks the Lua script shown in slot. It is only available
// for .lua entries under profiles with script type information.
func (s *Session) CheckScript(ctx context.Context, slot views.Slot) ([]string, error) {
	path, ok := s.registry.PathAt(slot)
	if !ok {
		return nil, fmt.Errorf("no view in slot %d", slot)
	}
	if !s.active.HasScriptTypes || !strings.HasSuffix(path.Base(), ".lua") {
		return nil, errs.WithPaths(errs.ScriptCheck, fmt.Errorf("not available under %s", s.active.ID), path.String())
	}

	resp, err := s.do(ctx, command.CheckScript{Path: path})
	if err != nil {
		return nil, err
	}
	return resp.(command.ScriptReport).Lines, nil
}

// UIState returns the UI state of the view in slot.
func (s *Session) UIState(slot views.Slot) (uistate.State, bool) {
	path, ok := s.registry.PathAt(slot)
	if !ok {
		return uistate.Default(), false
	}
	return s.states.Get(path), true
}

// SetUIState records the UI state of the view in slot.
func (s *Session) SetUIState(slot views.Slot, st uistate.State) bool {
	path, ok := s.registry.PathAt(slot)
	if !ok {
		return false
	}
	s.states.Put(path, st)
	return true
}
