// Package session is the orchestrator of an editing session. It runs on the
// UI actor and coordinates the command channel to the document worker, the
// view registry, the per-path UI state cache, the browse tree and the
// window. Nothing here is safe for concurrent use.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/editor"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/internal/mymod"
	"github.com/Faultbox/packdesk/internal/profile"
	"github.com/Faultbox/packdesk/internal/tree"
	"github.com/Faultbox/packdesk/internal/uistate"
	"github.com/Faultbox/packdesk/internal/views"
	"github.com/Faultbox/packdesk/internal/workbench"
	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/pack"
)

// UntitledName labels the tree root of a document that was never saved.
const UntitledName = "unknown.pack"

// ErrSaveCancelled is returned when the save destination prompt was
// dismissed.
var ErrSaveCancelled = errs.New(errs.SaveCancelled, "no destination chosen")

// Channel is the UI side of the command channel.
type Channel interface {
	Call(ctx context.Context, cmd command.Command) (command.Response, error)
	Finish(ctx context.Context, d command.Data) (command.Response, error)
}

// Tree is the browse tree.
type Tree interface {
	Apply(op tree.Op)
	Selection() []tree.Item
	Locked() bool
	Search(pattern string) []archive.Path
}

// Window is the windowing layer hosting views.
type Window interface {
	Insert(slot views.Slot, v editor.View) workbench.Handle
	Destroy(slot views.Slot)
	SetInteractive(on bool)
	ShowIdle()
	SetProfileSwitching(on bool)
	SetActions(a workbench.Actions)
}

// Prompter asks where to save a document.
type Prompter interface {
	SaveDestination(defaultDir, name string) (string, bool)
}

// ViewFactory builds entry views.
type ViewFactory interface {
	Open(ctx context.Context, path archive.Path, prof *profile.Profile) (editor.View, error)
	Notes(ctx context.Context) (*editor.NotesView, error)
}

// Mode is the operational mode. The zero value is Normal; otherwise the
// session edits the MyMod ModName stored under ProfileFolder.
type Mode struct {
	ProfileFolder string
	ModName       string
}

// IsMyMod reports whether the mode is a MyMod context.
func (m Mode) IsMyMod() bool {
	return m.ModName != ""
}

func (m Mode) String() string {
	if !m.IsMyMod() {
		return "normal"
	}
	return "mymod " + m.ProfileFolder + "/" + m.ModName
}

// Options wires a Session to its collaborators.
type Options struct {
	Channel  Channel
	Tree     Tree
	Window   Window
	Prompter Prompter
	Factory  ViewFactory
	Profiles *profile.Registry
	MyMods   *mymod.Store
	Config   *config.Config
	// StateFile is where UI state is persisted when the configuration asks
	// for it. Empty disables loading and saving.
	StateFile string
	Log       *zap.Logger
}

// Session is one editing session.
type Session struct {
	ch       Channel
	tree     Tree
	win      Window
	prompt   Prompter
	factory  ViewFactory
	profiles *profile.Registry
	mymods   *mymod.Store
	log      *zap.Logger

	registry *views.Registry
	states   *uistate.Cache
	tables   map[views.Slot]bool

	persist   bool
	stateFile string

	active     *profile.Profile
	mode       Mode
	doc        pack.Info
	docActions bool
	search     string
	menuDirty  bool
}

// New creates a session. When persistence is configured the UI state saved
// by a previous session is loaded.
func New(o Options) (*Session, error) {
	cfg := o.Config
	if cfg == nil {
		cfg = config.Default()
	}
	profiles := o.Profiles
	if profiles == nil {
		profiles = profile.NewRegistry(cfg.Paths.Games)
	}
	mymods := o.MyMods
	if mymods == nil {
		mymods = mymod.NewStore(cfg.Paths.MyModsBasePath, o.Log)
	}
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}

	active, err := profiles.Lookup(cfg.UI.DefaultProfile)
	if err != nil {
		log.Warn("unknown default profile, using fallback", zap.Error(err))
		active = profiles.ForFolder(profile.Fallback)
	}

	s := &Session{
		ch:        o.Channel,
		tree:      o.Tree,
		win:       o.Window,
		prompt:    o.Prompter,
		factory:   o.Factory,
		profiles:  profiles,
		mymods:    mymods,
		log:       log,
		states:    uistate.NewCache(),
		tables:    make(map[views.Slot]bool),
		persist:   cfg.UI.RememberTableStatePermanently,
		stateFile: o.StateFile,
		active:    active,
		menuDirty: true,
	}
	s.registry = views.NewRegistry(func(slot views.Slot) {
		s.win.Destroy(slot)
		delete(s.tables, slot)
	})

	if s.persist && s.stateFile != "" {
		if err := s.states.Load(s.stateFile); err != nil {
			return nil, err
		}
	}
	s.updateActions()
	return s, nil
}

// Close persists UI state when configured to.
func (s *Session) Close() error {
	if !s.persist || s.stateFile == "" {
		return nil
	}
	return s.states.Save(s.stateFile)
}

// Profile returns the active profile.
func (s *Session) Profile() *profile.Profile { return s.active }

// Mode returns the operational mode.
func (s *Session) Mode() Mode { return s.mode }

// Document returns what is known about the open document.
func (s *Session) Document() pack.Info { return s.doc }

// States returns the per-path UI state cache.
func (s *Session) States() *uistate.Cache { return s.states }

// Views returns the view registry.
func (s *Session) Views() *views.Registry { return s.registry }

// do sends cmd and converts an Error response into its error.
func (s *Session) do(ctx context.Context, cmd command.Command) (command.Response, error) {
	resp, err := s.ch.Call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if e, ok := resp.(command.Error); ok {
		return nil, e.Err
	}
	return resp, nil
}

// SelectProfile changes the active profile. It is refused while a table
// view is open, since tables are decoded with the profile schema.
func (s *Session) SelectProfile(id string) error {
	if len(s.tables) > 0 {
		return errs.Newf(errs.ProfileLocked, "close table views before switching to %s", id)
	}
	p, err := s.profiles.Lookup(id)
	if err != nil {
		return err
	}
	s.active = p
	s.log.Info("profile selected", zap.String("profile", p.ID))
	s.updateActions()
	return nil
}

// Actions returns the enablement of document actions under the active
// profile and mode.
func (s *Session) Actions() workbench.Actions {
	editing := s.active.SupportsEditing
	return workbench.Actions{
		NewDocument:    editing,
		Save:           editing && s.docActions,
		SaveAs:         editing && s.docActions,
		Compression:    s.active.SupportsCompression && s.docActions,
		AssemblyKit:    s.active.HasAssemblyKit,
		CheckScripts:   s.active.HasScriptTypes && s.docActions,
		MyModNew:       s.mymods.Configured(),
		MyModDelete:    s.mode.IsMyMod(),
		MyModInstall:   s.mode.IsMyMod(),
		MyModUninstall: s.mode.IsMyMod(),
	}
}

func (s *Session) updateActions() {
	s.win.SetActions(s.Actions())
}

// closeAll tears down every view before the document is replaced.
func (s *Session) closeAll() {
	s.registry.CloseAll()
	s.syncProfileSwitching()
}

func (s *Session) syncProfileSwitching() {
	s.win.SetProfileSwitching(len(s.tables) == 0)
}

// pruneStates drops UI state of paths without a live view, unless it is
// kept for the whole session.
func (s *Session) pruneStates() {
	if s.persist {
		return
	}
	s.states.ClearExcept(s.registry.OpenPaths())
}

// rebuildTree lists the document entries and rebuilds the browse tree.
func (s *Session) rebuildTree(ctx context.Context, rootName string) error {
	resp, err := s.do(ctx, command.ListEntries{})
	if err != nil {
		return err
	}
	entries, ok := resp.(command.Entries)
	if !ok {
		return fmt.Errorf("unexpected %s response to ListEntries", resp.Name())
	}
	s.tree.Apply(tree.Build{RootName: rootName, Paths: entries.Paths})
	return nil
}

// SetSearch records the transient tree search and returns its matches.
func (s *Session) SetSearch(pattern string) []archive.Path {
	s.search = pattern
	return s.tree.Search(pattern)
}

// Search returns the transient tree search pattern.
func (s *Session) Search() string { return s.search }

// MenuNeedsRebuild reports whether the MyMod list changed since MyModMenu
// last ran.
func (s *Session) MenuNeedsRebuild() bool { return s.menuDirty }
