package session

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/internal/mymod"
	"github.com/Faultbox/packdesk/internal/tree"
)

// SwitchMode enters the MyMod context of the pack at packPath, derived from
// its parent folder and file name. An empty packPath returns to Normal.
func (s *Session) SwitchMode(packPath string) {
	if packPath == "" {
		s.mode = Mode{}
	} else {
		s.mode = Mode{
			ProfileFolder: filepath.Base(filepath.Dir(packPath)),
			ModName:       filepath.Base(packPath),
		}
	}
	s.updateActions()
}

// NewMyMod creates a MyMod named name for a profile: its folders on disk and
// a new empty pack saved into them. The session then edits it.
func (s *Session) NewMyMod(ctx context.Context, name, profileID string) error {
	if name == "" {
		return errs.New(errs.EmptyInput, "mymod name")
	}
	p, err := s.profiles.Lookup(profileID)
	if err != nil {
		return err
	}
	if !p.SupportsEditing {
		return errs.Newf(errs.PackFileIsNonEditable, "%s packs cannot be edited", p.ID)
	}
	// Fail before the open document is dropped.
	if err := s.mymods.Check(p.ID, name); err != nil {
		return err
	}

	s.closeAll()
	if err := s.SelectProfile(p.ID); err != nil {
		return err
	}

	packPath, err := s.mymods.Create(p.ID, name)
	if err != nil {
		return err
	}

	if _, err := s.do(ctx, command.NewDocument{}); err != nil {
		return err
	}
	fixed := func(string, string) (string, bool) { return packPath, true }
	_, saved, err := s.saveAs(ctx, fixed)
	if err != nil {
		return err
	}
	if err := s.refreshInfo(ctx); err != nil {
		return err
	}
	s.doc.Timestamp = saved.Timestamp

	s.tree.Apply(tree.Build{RootName: filepath.Base(packPath)})
	s.search = ""
	s.pruneStates()
	s.mode = Mode{ProfileFolder: p.ID, ModName: filepath.Base(packPath)}
	s.docActions = true
	s.menuDirty = true
	s.win.ShowIdle()
	s.updateActions()
	s.log.Info("mymod created", zap.String("path", packPath))
	return nil
}

// DeleteMyMod deletes the MyMod being edited and drops the document.
// Problems removing its assets folder are returned as warnings alongside a
// successful deletion.
func (s *Session) DeleteMyMod(ctx context.Context) (errs.Warnings, error) {
	if !s.mode.IsMyMod() {
		return nil, errs.New(errs.MyModDeleteWithoutMyModSelected, "")
	}

	deleted := s.mode
	warnings, err := s.mymods.Delete(deleted.ProfileFolder, deleted.ModName)
	if err != nil {
		return nil, err
	}

	s.mode = Mode{}
	if err := s.ResetDocument(ctx); err != nil {
		return warnings, err
	}
	s.menuDirty = true
	s.log.Info("mymod deleted", zap.Stringer("mymod", deleted), zap.Int("warnings", len(warnings)))
	return warnings, nil
}

// InstallMyMod copies the MyMod being edited into the active profile's data
// folder.
func (s *Session) InstallMyMod() error {
	if !s.mode.IsMyMod() {
		return errs.New(errs.MyModDeleteWithoutMyModSelected, "")
	}
	return s.mymods.Install(s.mode.ProfileFolder, s.mode.ModName, s.active.DataPath)
}

// UninstallMyMod removes the MyMod being edited from the active profile's
// data folder.
func (s *Session) UninstallMyMod() error {
	if !s.mode.IsMyMod() {
		return errs.New(errs.MyModDeleteWithoutMyModSelected, "")
	}
	return s.mymods.Uninstall(s.mode.ModName, s.active.DataPath)
}

// MyModMenu lists the MyMods of every editable profile.
func (s *Session) MyModMenu() []mymod.Entry {
	s.menuDirty = false
	return s.mymods.List(s.profiles.Editable())
}

// OpenMyMod opens a MyMod from the menu.
func (s *Session) OpenMyMod(ctx context.Context, e mymod.Entry) error {
	return s.OpenDocument(ctx, []string{e.Path}, e.Folder)
}
