package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/packdesk/pkg/archive"
)

func paths(ss ...string) []archive.Path {
	out := make([]archive.Path, len(ss))
	for i, s := range ss {
		out[i] = archive.Parse(s)
	}
	return out
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuildSortsFoldersFirst(t *testing.T) {
	tr := New()
	tr.Apply(Build{RootName: "mod.pack", Paths: paths(
		"zeta.txt",
		"db/units_tables/data",
		"Alpha.lua",
		"text/readme.txt",
	)})

	root := tr.Root()
	require.NotNil(t, root)
	assert.Equal(t, "mod.pack", root.Name)
	assert.Equal(t, []string{"db", "text", "Alpha.lua", "zeta.txt"}, names(root.Children))

	n, ok := tr.Find(archive.Parse("db/units_tables"))
	require.True(t, ok)
	assert.True(t, n.IsDir)
	assert.Equal(t, paths("Alpha.lua", "db/units_tables/data", "text/readme.txt", "zeta.txt"), tr.Files())
}

func TestAddCreatesFolders(t *testing.T) {
	tr := New()
	tr.Apply(Build{RootName: "mod.pack"})
	tr.Apply(Add{Paths: paths("script/campaign/mod.lua")})
	tr.Apply(Add{Paths: paths("script/campaign/mod.lua")})

	n, ok := tr.Find(archive.Parse("script/campaign"))
	require.True(t, ok)
	assert.True(t, n.IsDir)
	require.Len(t, n.Children, 1)
	assert.False(t, n.Children[0].IsDir)
}

func TestModifyMarksAncestors(t *testing.T) {
	tr := New()
	tr.Apply(Build{RootName: "mod.pack", Paths: paths("text/a.txt", "b.txt")})
	assert.False(t, tr.IsModified())

	tr.Apply(Modify{Paths: paths("text/a.txt")})
	for _, p := range []string{"text/a.txt", "text", ""} {
		n, ok := tr.Find(archive.Parse(p))
		require.True(t, ok, p)
		assert.True(t, n.Modified, p)
	}
	b, _ := tr.Find(archive.Parse("b.txt"))
	assert.False(t, b.Modified)
	assert.True(t, tr.IsModified())

	tr.Apply(Clean{})
	assert.False(t, tr.IsModified())
}

func TestAlwaysModifiedUntilClean(t *testing.T) {
	tr := New()
	tr.Apply(Build{RootName: "mod.pack"})
	tr.Apply(MarkAlwaysModified{Paths: []archive.Path{nil}})
	assert.True(t, tr.IsModified())

	tr.Apply(Clean{})
	assert.False(t, tr.IsModified())
}

func TestClearAndRename(t *testing.T) {
	tr := New()
	tr.Apply(Build{RootName: "a.pack", Paths: paths("x.txt")})
	tr.Apply(RenameRoot{Name: "b.pack"})
	assert.Equal(t, "b.pack", tr.Root().Name)

	tr.Select(archive.Parse("x.txt"))
	tr.Apply(Clear{})
	assert.Nil(t, tr.Root())
	assert.Empty(t, tr.Files())
	assert.Empty(t, tr.Selection())

	// Renaming an empty tree is harmless.
	tr.Apply(RenameRoot{Name: "c.pack"})
	assert.Nil(t, tr.Root())
}

func TestSelection(t *testing.T) {
	tr := New()
	tr.Apply(Build{RootName: "mod.pack", Paths: paths("text/a.txt")})

	tr.Select(nil, archive.Parse("text"), archive.Parse("text/a.txt"), archive.Parse("missing"))
	assert.Equal(t, []Item{
		{Path: nil, Kind: ItemRoot},
		{Path: archive.Parse("text"), Kind: ItemFolder},
		{Path: archive.Parse("text/a.txt"), Kind: ItemFile},
	}, tr.Selection())

	tr.Select()
	assert.Empty(t, tr.Selection())
}

func TestLock(t *testing.T) {
	tr := New()
	assert.False(t, tr.Locked())
	tr.SetLocked(true)
	assert.True(t, tr.Locked())
}

func TestSearch(t *testing.T) {
	tr := New()
	tr.Apply(Build{RootName: "mod.pack", Paths: paths(
		"script/campaign/mod.lua",
		"script/battle/ai.lua",
		"text/readme.txt",
		"db/units_tables/data",
	)})

	tests := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"db/units_tables/data", "script/battle/ai.lua", "script/campaign/mod.lua", "text/readme.txt"}},
		{"*.lua", []string{"script/battle/ai.lua", "script/campaign/mod.lua"}},
		{"text/*", []string{"text/readme.txt"}},
		{"*.png", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			var got []string
			for _, p := range tr.Search(tt.pattern) {
				got = append(got, p.Key())
			}
			assert.Equal(t, tt.want, got)
		})
	}

	fuzzy := tr.Search("readme")
	require.NotEmpty(t, fuzzy)
	assert.Equal(t, "text/readme.txt", fuzzy[0].Key())
	assert.Empty(t, tr.Search("qqqq"))
}
