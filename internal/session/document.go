package session

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/internal/mymod"
	"github.com/Faultbox/packdesk/internal/tree"
	"github.com/Faultbox/packdesk/pkg/pack"
)

// OpenDocument opens paths as the new document. When profileFolder is set
// and a single path is given, the document is opened as a MyMod of that
// folder's profile; otherwise the profile is inferred from the document
// version. Views and UI state of the previous document do not survive.
func (s *Session) OpenDocument(ctx context.Context, paths []string, profileFolder string) error {
	s.win.SetInteractive(false)
	defer s.win.SetInteractive(true)

	resp, err := s.do(ctx, command.OpenDocument{Paths: paths})
	if err != nil {
		return err
	}
	opened, ok := resp.(command.DocumentOpened)
	if !ok {
		return fmt.Errorf("unexpected %s response to OpenDocument", resp.Name())
	}
	s.doc = opened.Info

	if profileFolder != "" && len(paths) == 1 {
		s.active = s.profiles.ForFolder(profileFolder)
		s.mode = Mode{ProfileFolder: profileFolder, ModName: filepath.Base(paths[0])}
	} else {
		s.active = s.profiles.Infer(s.doc.Version, s.doc.Flags, s.active.ID)
		s.mode = Mode{}
	}

	s.closeAll()
	s.search = ""
	s.pruneStates()
	if err := s.rebuildTree(ctx, rootName(s.doc.Path)); err != nil {
		return err
	}
	s.win.ShowIdle()
	s.docActions = true
	s.updateActions()

	s.log.Info("document opened",
		zap.Strings("paths", paths),
		zap.Stringer("version", s.doc.Version),
		zap.String("profile", s.active.ID),
		zap.Stringer("mode", s.mode),
	)
	return nil
}

func rootName(path string) string {
	if path == "" {
		return UntitledName
	}
	return filepath.Base(path)
}

// NewDocument replaces the document with an empty one.
func (s *Session) NewDocument(ctx context.Context) error {
	s.closeAll()
	if _, err := s.do(ctx, command.NewDocument{}); err != nil {
		return err
	}
	if err := s.refreshInfo(ctx); err != nil {
		return err
	}

	s.tree.Apply(tree.Build{RootName: UntitledName})
	s.search = ""
	s.pruneStates()
	s.mode = Mode{}
	s.docActions = true
	s.win.ShowIdle()
	s.updateActions()
	s.log.Info("document created")
	return nil
}

// ResetDocument drops the document without opening another one, leaving
// document actions disabled.
func (s *Session) ResetDocument(ctx context.Context) error {
	s.closeAll()
	if _, err := s.do(ctx, command.ResetDocument{}); err != nil {
		return err
	}

	s.tree.Apply(tree.Clear{})
	s.doc = pack.Info{}
	s.search = ""
	s.pruneStates()
	s.docActions = false
	s.win.ShowIdle()
	s.updateActions()
	return nil
}

func (s *Session) refreshInfo(ctx context.Context) error {
	resp, err := s.do(ctx, command.DocumentInfo{})
	if err != nil {
		return err
	}
	info, ok := resp.(command.Info)
	if !ok {
		return fmt.Errorf("unexpected %s response to DocumentInfo", resp.Name())
	}
	s.doc = info.Info
	return nil
}

// SaveDocument saves the document. An in-place save of a document that was
// never written to disk falls back to save-as, as does asNew. A cancelled
// save-as returns ErrSaveCancelled and changes nothing.
func (s *Session) SaveDocument(ctx context.Context, asNew bool) error {
	if !asNew {
		resp, err := s.do(ctx, command.SaveDocument{})
		if err == nil {
			s.afterSave(resp.(command.Saved))
			return nil
		}
		if !errs.Is(err, errs.PackFileIsNotAFile) {
			return err
		}
		s.log.Debug("document is not a file yet, saving as")
	}

	dest, saved, err := s.saveAs(ctx, s.prompt.SaveDestination)
	if err != nil {
		return err
	}
	s.doc.Path = dest
	s.tree.Apply(tree.RenameRoot{Name: filepath.Base(dest)})
	s.mode = Mode{}
	s.afterSave(saved)
	s.updateActions()
	return nil
}

// saveAs runs the two-phase save-as exchange. choose is asked for the
// destination given a default folder and file name.
func (s *Session) saveAs(ctx context.Context, choose func(dir, name string) (string, bool)) (string, command.Saved, error) {
	resp, err := s.do(ctx, command.SaveDocumentAs{})
	if err != nil {
		return "", command.Saved{}, err
	}
	target := resp.(command.SaveTarget).Path

	dir := ""
	switch {
	case target != "":
		dir = filepath.Dir(target)
	case s.active.HasDataPath():
		dir = s.active.DataPath
	}

	dest, ok := choose(dir, rootName(target))
	if !ok {
		if _, err := s.ch.Finish(ctx, command.Cancel{}); err != nil {
			return "", command.Saved{}, err
		}
		return "", command.Saved{}, ErrSaveCancelled
	}

	final, err := s.ch.Finish(ctx, command.SavePath{Path: dest})
	if err != nil {
		return "", command.Saved{}, err
	}
	switch r := final.(type) {
	case command.Saved:
		return dest, r, nil
	case command.Error:
		return "", command.Saved{}, r.Err
	default:
		return "", command.Saved{}, fmt.Errorf("unexpected %s response to SavePath", final.Name())
	}
}

func (s *Session) afterSave(saved command.Saved) {
	s.tree.Apply(tree.Clean{})
	s.doc.Timestamp = saved.Timestamp
	s.pruneStates()
	s.log.Info("document saved", zap.String("path", s.doc.Path), zap.Int64("timestamp", saved.Timestamp))
}

// DataPacks lists the packs in the active profile's data folder, the game's
// own packs and installed mods alike.
func (s *Session) DataPacks() ([]mymod.Entry, error) {
	if !s.active.HasDataPath() {
		return nil, errs.Newf(errs.GamePathNotConfigured, "%s", s.active.ID)
	}
	return mymod.Packs(s.active.DataPath, s.active.ID), nil
}

// OpenDataPack opens a pack listed by DataPacks. It is opened as a plain
// document, never as a MyMod.
func (s *Session) OpenDataPack(ctx context.Context, e mymod.Entry) error {
	if err := s.OpenDocument(ctx, []string{e.Path}, ""); err != nil {
		return err
	}
	s.log.Info("data pack opened", zap.String("profile", e.Folder), zap.String("name", e.Name))
	return nil
}
