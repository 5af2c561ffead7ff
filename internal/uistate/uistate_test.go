package uistate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/packdesk/pkg/archive"
)

func sampleState(text string) State {
	s := Default()
	s.Filter = FilterState{Text: text, Column: 2, CaseSensitive: true}
	s.Search = SearchState{Text: "spear", ReplaceText: "pike", Column: 1}
	s.Columns.SortColumn = 3
	s.Columns.SortDescending = true
	s.Columns.VisualOrder = []ColumnMove{{From: 0, To: 4}}
	s.Columns.HiddenColumns = []int{5, 6}
	return s
}

func TestGetDefault(t *testing.T) {
	c := NewCache()
	got := c.Get(archive.Parse("db/units_tables/a"))
	assert.Equal(t, Default(), got)
	assert.Equal(t, -1, got.Columns.SortColumn)
	assert.False(t, c.Has(archive.Parse("db/units_tables/a")))
}

func TestPutRemove(t *testing.T) {
	c := NewCache()
	p := archive.Parse("db/units_tables/a")

	c.Put(p, sampleState("one"))
	c.Put(p, sampleState("two"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "two", c.Get(p).Filter.Text)

	c.Remove(p)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Default(), c.Get(p))
}

func TestClearExcept(t *testing.T) {
	c := NewCache()
	a := archive.Parse("db/a/x")
	b := archive.Parse("db/b/y")
	d := archive.Parse("text/z.txt")
	for _, p := range []archive.Path{a, b, d} {
		c.Put(p, sampleState(p.String()))
	}

	c.ClearExcept(archive.NewSet(b))
	assert.Equal(t, []archive.Path{b}, c.Paths())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state", "table_state.yaml")

	c := NewCache()
	c.Put(archive.Parse("db/units_tables/my_units"), sampleState("emp"))
	c.Put(archive.Parse("text/readme.txt"), Default())
	require.NoError(t, c.Save(file))

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `db\units_tables\my_units`)

	loaded := NewCache()
	loaded.Put(archive.Parse("stale"), Default())
	require.NoError(t, loaded.Load(file))

	assert.Equal(t, c.Paths(), loaded.Paths())
	assert.Equal(t, sampleState("emp"), loaded.Get(archive.Parse("db/units_tables/my_units")))
	assert.False(t, loaded.Has(archive.Parse("stale")))
}

func TestSaveRefusesDelimiter(t *testing.T) {
	file := filepath.Join(t.TempDir(), "table_state.yaml")

	c := NewCache()
	c.Put(archive.Path{"db", `weird\name`}, Default())

	err := c.Save(file)
	assert.ErrorIs(t, err, ErrDelimiterInPath)
	_, statErr := os.Stat(file)
	assert.True(t, os.IsNotExist(statErr), "nothing must be written")
}

func TestLoadMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()

	c := NewCache()
	c.Put(archive.Parse("a"), Default())
	require.NoError(t, c.Load(filepath.Join(dir, "missing.yaml")))
	assert.Equal(t, 0, c.Len())

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- not\n- a map\n"), 0644))
	assert.Error(t, c.Load(bad))
}
