package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/internal/profile"
	"github.com/Faultbox/packdesk/internal/uistate"
	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/pack"
)

// expectedProfile is the per-version profile table, written out by hand.
func expectedProfile(version pack.Version, extended bool, current string) string {
	keepIfIn := func(def string, ids ...string) string {
		for _, id := range ids {
			if id == current {
				return current
			}
		}
		return def
	}
	switch version {
	case pack.PFH5:
		if extended {
			return "arena"
		}
		return keepIfIn("warhammer_2", "three_kingdoms", "warhammer_2")
	case pack.PFH4:
		return keepIfIn("rome_2", "warhammer", "thrones_of_britannia", "attila", "rome_2")
	case pack.PFH3:
		return "shogun_2"
	default:
		return keepIfIn("empire", "napoleon", "empire")
	}
}

func TestOpenDocumentInfersProfile(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		version  pack.Version
		extended bool
	}{
		{pack.PFH5, false},
		{pack.PFH5, true},
		{pack.PFH4, false},
		{pack.PFH3, false},
		{pack.PFH0, false},
	}

	h := newHarness(t, nil)
	ctx := context.Background()

	for _, c := range cases {
		name := c.version.String()
		if c.extended {
			name += "_ext"
		}
		path := writePack(t, filepath.Join(dir, name+".pack"), func(p *pack.PackFile) {
			p.SetVersion(c.version)
			if c.extended {
				p.SetFlags(pack.FlagExtendedHeader)
			}
		}, nil)

		for _, current := range profile.NewRegistry(nil).All() {
			t.Run(name+"/"+current.ID, func(t *testing.T) {
				require.NoError(t, h.s.SelectProfile(current.ID))
				require.NoError(t, h.s.OpenDocument(ctx, []string{path}, ""))
				assert.Equal(t, expectedProfile(c.version, c.extended, current.ID), h.s.Profile().ID)
				assert.False(t, h.s.Mode().IsMyMod())
			})
		}
	}
}

func TestOpenDocumentAsMyMod(t *testing.T) {
	base := t.TempDir()
	path := writePack(t, filepath.Join(base, "attila", "my_mod.pack"), func(p *pack.PackFile) {
		p.SetVersion(pack.PFH5)
	}, map[string][]byte{"text/a.txt": []byte("a")})

	h := newHarness(t, nil)
	ctx := context.Background()

	// The folder wins over the version tag.
	require.NoError(t, h.s.OpenDocument(ctx, []string{path}, "attila"))
	assert.Equal(t, Mode{ProfileFolder: "attila", ModName: "my_mod.pack"}, h.s.Mode())
	assert.Equal(t, "attila", h.s.Profile().ID)
	assert.True(t, h.win.Actions().MyModInstall)
	assert.Equal(t, "my_mod.pack", h.tree.Root().Name)

	// Several paths are never a MyMod.
	require.NoError(t, h.s.OpenDocument(ctx, []string{path, path}, "attila"))
	assert.False(t, h.s.Mode().IsMyMod())
	assert.Equal(t, "warhammer_2", h.s.Profile().ID)
}

func TestOpenDocumentFailure(t *testing.T) {
	h := newHarness(t, nil)
	err := h.s.OpenDocument(context.Background(), []string{filepath.Join(t.TempDir(), "missing.pack")}, "")
	assert.Equal(t, errs.OpenPackFileGeneric, errs.KindOf(err))
	assert.True(t, h.win.Interactive())
	assert.Nil(t, h.tree.Root())
}

func TestOpenReplacesViewsAndStates(t *testing.T) {
	dir := t.TempDir()
	a := writePack(t, filepath.Join(dir, "a.pack"), nil, map[string][]byte{
		"text/a.txt":  []byte("a"),
		"text/a2.txt": []byte("a2"),
	})
	b := writePack(t, filepath.Join(dir, "b.pack"), nil, map[string][]byte{"text/b.txt": []byte("b")})

	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.s.OpenDocument(ctx, []string{a}, ""))

	h.selectPath("text/a.txt")
	require.NoError(t, h.s.OpenEntryView(ctx, 0))
	h.selectPath("text/a2.txt")
	require.NoError(t, h.s.OpenEntryView(ctx, 1))
	st := uistate.Default()
	st.Filter.Text = "needle"
	require.True(t, h.s.SetUIState(0, st))

	require.NoError(t, h.s.OpenDocument(ctx, []string{b}, ""))
	assert.Zero(t, h.s.Views().Len())
	assert.Zero(t, h.s.States().Len())
	assert.Empty(t, h.win.Slots())
	assert.True(t, h.win.Idle())
	assert.Equal(t, "b.pack", h.tree.Root().Name)
	assert.Equal(t, []archive.Path{archive.Parse("text/b.txt")}, h.tree.Files())
}

func TestPersistedStatesSurviveReplacement(t *testing.T) {
	dir := t.TempDir()
	a := writePack(t, filepath.Join(dir, "a.pack"), nil, map[string][]byte{"text/a.txt": []byte("a")})
	stateFile := filepath.Join(dir, "state", config.TableStateFile)

	cfg := config.Default()
	cfg.UI.RememberTableStatePermanently = true
	h := newHarnessWith(t, cfg, stateFile)
	ctx := context.Background()

	require.NoError(t, h.s.OpenDocument(ctx, []string{a}, ""))
	h.selectPath("text/a.txt")
	require.NoError(t, h.s.OpenEntryView(ctx, 0))
	st := uistate.Default()
	st.Columns.SortColumn = 2
	h.s.SetUIState(0, st)

	h.s.CloseView(0)
	require.NoError(t, h.s.NewDocument(ctx))
	assert.Equal(t, st, h.s.States().Get(archive.Parse("text/a.txt")))
	require.NoError(t, h.s.Close())

	// A new session picks the state up again.
	h2 := newHarnessWith(t, cfg, stateFile)
	assert.Equal(t, st, h2.s.States().Get(archive.Parse("text/a.txt")))
}

func TestNewAndResetDocument(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.s.NewDocument(ctx))
	assert.Equal(t, UntitledName, h.tree.Root().Name)
	assert.Equal(t, pack.PFH5, h.s.Document().Version)
	assert.Equal(t, pack.TypeMod, h.s.Document().Type)
	assert.True(t, h.win.Actions().Save)

	require.NoError(t, h.s.ResetDocument(ctx))
	assert.Nil(t, h.tree.Root())
	assert.False(t, h.win.Actions().Save)
	assert.Equal(t, pack.Info{}, h.s.Document())
}

func TestSaveFallsBackToSaveAs(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.prompt.dest = filepath.Join(dir, "out.pack")

	require.NoError(t, h.s.NewDocument(ctx))
	h.tree.Select(nil)
	_, err := h.s.CreateEntry(ctx, archive.KindText, "readme", "")
	require.NoError(t, err)
	assert.True(t, h.tree.IsModified())

	h.ch.sent = nil
	require.NoError(t, h.s.SaveDocument(ctx, false))
	assert.Equal(t, []string{"SaveDocument", "SaveDocumentAs", "SavePath"}, h.ch.sent)
	assert.Equal(t, []string{""}, h.prompt.dirs)
	assert.Equal(t, []string{UntitledName}, h.prompt.names)

	assert.FileExists(t, h.prompt.dest)
	assert.Equal(t, h.prompt.dest, h.s.Document().Path)
	assert.NotZero(t, h.s.Document().Timestamp)
	assert.Equal(t, "out.pack", h.tree.Root().Name)
	assert.False(t, h.tree.IsModified())

	// Once on disk, a plain save stays in place.
	h.ch.sent = nil
	require.NoError(t, h.s.SaveDocument(ctx, false))
	assert.Equal(t, []string{"SaveDocument"}, h.ch.sent)
}

func TestNotesSurviveSaveAndReopen(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "n.pack")
	h := newHarness(t, nil)
	ctx := context.Background()
	h.prompt.dest = dest

	require.NoError(t, h.s.NewDocument(ctx))
	h.tree.Select(nil)
	_, err := h.s.CreateEntry(ctx, archive.KindText, "readme", "")
	require.NoError(t, err)
	require.NoError(t, h.s.SaveNotes(ctx, "hello"))
	require.NoError(t, h.s.SaveDocument(ctx, true))

	require.NoError(t, h.s.OpenDocument(ctx, []string{dest}, ""))
	assert.Equal(t, []archive.Path{archive.Parse("readme.txt")}, h.tree.Files())

	resp, err := h.ch.Call(ctx, command.GetNotes{})
	require.NoError(t, err)
	assert.Equal(t, command.Notes{Text: "hello"}, resp)
}

func TestSaveAsDefaultFolder(t *testing.T) {
	data := t.TempDir()
	h := newHarness(t, func(c *config.Config) { c.SetGamePath("warhammer_2", data) })
	ctx := context.Background()
	h.prompt.dest = filepath.Join(t.TempDir(), "x.pack")

	require.NoError(t, h.s.NewDocument(ctx))
	require.NoError(t, h.s.SaveDocument(ctx, true))
	assert.Equal(t, []string{data}, h.prompt.dirs)

	// An existing file suggests its own folder.
	require.NoError(t, h.s.SaveDocument(ctx, true))
	assert.Equal(t, filepath.Dir(h.prompt.dest), h.prompt.dirs[1])
	assert.Equal(t, "x.pack", h.prompt.names[1])
}

func TestSaveAsCancelChangesNothing(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.s.NewDocument(ctx))
	h.tree.Select(nil)
	created, err := h.s.CreateEntry(ctx, archive.KindText, "a", "")
	require.NoError(t, err)
	before := h.s.States().Paths()

	h.ch.sent = nil
	err = h.s.SaveDocument(ctx, true)
	assert.ErrorIs(t, err, ErrSaveCancelled)
	assert.True(t, errs.Is(err, errs.SaveCancelled))
	assert.Equal(t, []string{"SaveDocumentAs", "Cancel"}, h.ch.sent)

	assert.True(t, h.tree.IsModified())
	assert.Equal(t, before, h.s.States().Paths())
	assert.True(t, h.s.States().Has(created))
	assert.Empty(t, h.s.Document().Path)

	// The worker was released and answers the next command.
	_, err = h.s.CreateEntry(ctx, archive.KindText, "b", "")
	assert.NoError(t, err)
}

func TestSavePrunesStates(t *testing.T) {
	dir := t.TempDir()
	path := writePack(t, filepath.Join(dir, "a.pack"), nil, map[string][]byte{"text/open.txt": []byte("x")})
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.s.OpenDocument(ctx, []string{path}, ""))
	h.selectPath("text")
	created, err := h.s.CreateEntry(ctx, archive.KindText, "new", "")
	require.NoError(t, err)
	h.selectPath("text/open.txt")
	require.NoError(t, h.s.OpenEntryView(ctx, 0))
	require.Equal(t, 2, h.s.States().Len())

	require.NoError(t, h.s.SaveDocument(ctx, false))
	assert.False(t, h.s.States().Has(created))
	assert.Equal(t, []archive.Path{archive.Parse("text/open.txt")}, h.s.States().Paths())
}

func TestSaveAsNonEditable(t *testing.T) {
	dir := t.TempDir()
	path := writePack(t, filepath.Join(dir, "data.pack"), func(p *pack.PackFile) {
		p.SetType(pack.TypeRelease)
	}, nil)
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.s.OpenDocument(ctx, []string{path}, ""))
	err := h.s.SaveDocument(ctx, true)
	assert.Equal(t, errs.PackFileIsNonEditable, errs.KindOf(err))
	assert.Empty(t, h.prompt.dirs)
}

func TestSaveAsFailure(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.prompt.dest = filepath.Join(t.TempDir(), "missing", "dir", "x.pack")

	require.NoError(t, h.s.NewDocument(ctx))
	// Make the destination folder a file so the save cannot create it.
	require.NoError(t, os.WriteFile(filepath.Dir(filepath.Dir(h.prompt.dest)), nil, 0644))

	err := h.s.SaveDocument(ctx, true)
	assert.Equal(t, errs.SavePackFileGeneric, errs.KindOf(err))
	assert.Empty(t, h.s.Document().Path)
}

func TestOpenDataPack(t *testing.T) {
	data := t.TempDir()
	h := newHarness(t, func(c *config.Config) { c.SetGamePath("warhammer_2", data) })
	ctx := context.Background()

	writePack(t, filepath.Join(data, "data.pack"), nil, map[string][]byte{"db/units_tables/data": nil})
	modPath := writePack(t, filepath.Join(data, "my_mod.pack"), nil, map[string][]byte{"script/mod.lua": []byte("local x = 1\n")})
	require.NoError(t, os.WriteFile(filepath.Join(data, "manifest.txt"), nil, 0644))

	packs, err := h.s.DataPacks()
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "data.pack", packs[0].Name)
	assert.Equal(t, "my_mod.pack", packs[1].Name)
	assert.Equal(t, "warhammer_2", packs[1].Folder)

	require.NoError(t, h.s.OpenDataPack(ctx, packs[1]))
	assert.Equal(t, modPath, h.s.Document().Path)
	assert.False(t, h.s.Mode().IsMyMod())
	assert.Equal(t, []archive.Path{archive.Parse("script/mod.lua")}, h.tree.Files())

	require.NoError(t, h.s.SelectProfile("attila"))
	_, err = h.s.DataPacks()
	assert.Equal(t, errs.GamePathNotConfigured, errs.KindOf(err))
}
