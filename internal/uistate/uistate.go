// Package uistate keeps per-path editor UI state (filters, searches, column
// layout) and persists it between sessions.
package uistate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/packdesk/pkg/archive"
)

// KeyDelimiter joins path segments in persisted keys.
const KeyDelimiter = `\`

// ErrDelimiterInPath is returned by Save when a segment contains
// KeyDelimiter and could not be restored by Load.
var ErrDelimiterInPath = errors.New("path segment contains the state key delimiter")

// State is the UI state of one table-like view.
type State struct {
	Filter  FilterState  `yaml:"filter"`
	Search  SearchState  `yaml:"search"`
	Columns ColumnsState `yaml:"columns"`
}

// FilterState is the last filter applied to a view.
type FilterState struct {
	Text          string `yaml:"text"`
	Column        int    `yaml:"column"`
	CaseSensitive bool   `yaml:"case_sensitive"`
}

// SearchState is the last search/replace performed in a view.
type SearchState struct {
	Text          string `yaml:"text"`
	ReplaceText   string `yaml:"replace_text"`
	Column        int    `yaml:"column"`
	CaseSensitive bool   `yaml:"case_sensitive"`
}

// ColumnsState is the column layout of a view. SortColumn is -1 when the
// view is unsorted.
type ColumnsState struct {
	SortColumn     int          `yaml:"sort_column"`
	SortDescending bool         `yaml:"sort_descending"`
	VisualOrder    []ColumnMove `yaml:"visual_order,omitempty"`
	HiddenColumns  []int        `yaml:"hidden_columns,omitempty"`
}

// ColumnMove records a column dragged from one visual index to another.
type ColumnMove struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Default returns the state of a view nobody has touched.
func Default() State {
	return State{Columns: ColumnsState{SortColumn: -1}}
}

// Cache maps paths to their UI state. It is owned by the UI actor and not
// safe for concurrent use.
type Cache struct {
	states map[string]entry
}

type entry struct {
	path  archive.Path
	state State
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{states: make(map[string]entry)}
}

// Get returns the state of path, or Default when none is stored.
func (c *Cache) Get(path archive.Path) State {
	if e, ok := c.states[path.Key()]; ok {
		return e.state
	}
	return Default()
}

// Has reports whether state is stored for path.
func (c *Cache) Has(path archive.Path) bool {
	_, ok := c.states[path.Key()]
	return ok
}

// Put stores the state of path, replacing any previous value.
func (c *Cache) Put(path archive.Path, s State) {
	c.states[path.Key()] = entry{path: path.Clone(), state: s}
}

// Remove forgets the state of path.
func (c *Cache) Remove(path archive.Path) {
	delete(c.states, path.Key())
}

// ClearExcept forgets every state whose path is not in keep.
func (c *Cache) ClearExcept(keep archive.Set) {
	for key, e := range c.states {
		if !keep.Contains(e.path) {
			delete(c.states, key)
		}
	}
}

// Clear forgets everything.
func (c *Cache) Clear() {
	c.states = make(map[string]entry)
}

// Len returns the number of stored states.
func (c *Cache) Len() int {
	return len(c.states)
}

// Paths returns the stored paths, sorted by key.
func (c *Cache) Paths() []archive.Path {
	keys := make([]string, 0, len(c.states))
	for key := range c.states {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	paths := make([]archive.Path, 0, len(keys))
	for _, key := range keys {
		paths = append(paths, c.states[key].path.Clone())
	}
	return paths
}

// Save writes the cache as YAML keyed by the KeyDelimiter-joined path. It
// refuses to write anything when a segment contains the delimiter.
func (c *Cache) Save(file string) error {
	doc := make(map[string]State, len(c.states))
	for _, e := range c.states {
		for _, segment := range e.path {
			if strings.Contains(segment, KeyDelimiter) {
				return fmt.Errorf("%w: %q", ErrDelimiterInPath, e.path.String())
			}
		}
		doc[strings.Join(e.path, KeyDelimiter)] = e.state
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding ui state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return os.WriteFile(file, data, 0644)
}

// Load replaces the cache with the contents of file. A missing file leaves
// the cache empty.
func (c *Cache) Load(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.Clear()
			return nil
		}
		return fmt.Errorf("reading ui state: %w", err)
	}

	doc := map[string]State{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding ui state %s: %w", file, err)
	}

	c.Clear()
	for key, state := range doc {
		var path archive.Path
		if key != "" {
			path = strings.Split(key, KeyDelimiter)
		}
		c.Put(path, state)
	}
	return nil
}
