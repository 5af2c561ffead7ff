// Package tree is the browse-tree model of the open document: a folder
// hierarchy built from flat entry paths, with modified markers, selection and
// a lock used while bulk operations run.
package tree

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/Faultbox/packdesk/pkg/archive"
)

// Node is one folder or file in the tree. The root node has an empty Path.
type Node struct {
	Name           string
	Path           archive.Path
	IsDir          bool
	Children       []*Node
	Modified       bool
	AlwaysModified bool
}

// ItemKind tells what a selected item is.
type ItemKind int

const (
	ItemRoot ItemKind = iota
	ItemFolder
	ItemFile
)

// Item is one selected tree item.
type Item struct {
	Path archive.Path
	Kind ItemKind
}

// Op is a structural operation applied to the tree.
type Op interface {
	isOp()
}

// Build replaces the whole tree with one built from Paths under a root
// named RootName.
type Build struct {
	RootName string
	Paths    []archive.Path
}

// Add inserts files, creating missing folders.
type Add struct {
	Paths []archive.Path
}

// Modify marks paths and all their ancestors as modified.
type Modify struct {
	Paths []archive.Path
}

// MarkAlwaysModified pins the modified marker on paths until the next Clean.
type MarkAlwaysModified struct {
	Paths []archive.Path
}

// Clear empties the tree.
type Clear struct{}

// Clean drops every modified marker, after a save.
type Clean struct{}

// RenameRoot changes the root label, after a save-as.
type RenameRoot struct {
	Name string
}

func (Build) isOp()              {}
func (Add) isOp()                {}
func (Modify) isOp()             {}
func (MarkAlwaysModified) isOp() {}
func (Clear) isOp()              {}
func (Clean) isOp()              {}
func (RenameRoot) isOp()         {}

// Tree holds the browse tree. It is owned by the UI actor.
type Tree struct {
	root      *Node
	nodes     map[string]*Node
	selection []archive.Path
	locked    bool
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// Apply runs op against the tree.
func (t *Tree) Apply(op Op) {
	switch o := op.(type) {
	case Build:
		t.build(o.RootName, o.Paths)
	case Add:
		if t.root == nil {
			t.build("", nil)
		}
		for _, p := range o.Paths {
			t.insert(p)
		}
	case Modify:
		for _, p := range o.Paths {
			t.walkUp(p, func(n *Node) { n.Modified = true })
		}
	case MarkAlwaysModified:
		for _, p := range o.Paths {
			if n, ok := t.nodes[p.Key()]; ok {
				n.AlwaysModified = true
			}
		}
	case Clear:
		t.root = nil
		t.nodes = make(map[string]*Node)
		t.selection = nil
	case Clean:
		for _, n := range t.nodes {
			n.Modified = false
			n.AlwaysModified = false
		}
	case RenameRoot:
		if t.root != nil {
			t.root.Name = o.Name
		}
	}
}

func (t *Tree) build(rootName string, paths []archive.Path) {
	t.root = &Node{Name: rootName, IsDir: true}
	t.nodes = map[string]*Node{"": t.root}
	t.selection = nil

	sorted := make([]archive.Path, len(paths))
	copy(sorted, paths)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })
	for _, p := range sorted {
		t.insert(p)
	}
}

// insert adds a file node for p and any missing parent folders.
func (t *Tree) insert(p archive.Path) {
	if p.IsRoot() {
		return
	}
	if _, ok := t.nodes[p.Key()]; ok {
		return
	}

	parent := t.root
	for i := range p {
		current := p[:i+1]
		if existing, ok := t.nodes[current.Key()]; ok {
			parent = existing
			continue
		}
		node := &Node{
			Name:  p[i],
			Path:  current.Clone(),
			IsDir: i < len(p)-1,
		}
		parent.Children = append(parent.Children, node)
		sortChildren(parent)
		t.nodes[current.Key()] = node
		parent = node
	}
}

// sortChildren orders folders first, then names case-insensitively.
func sortChildren(node *Node) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir != node.Children[j].IsDir {
			return node.Children[i].IsDir
		}
		return strings.ToLower(node.Children[i].Name) < strings.ToLower(node.Children[j].Name)
	})
}

// walkUp calls fn on the node at p and each of its ancestors up to the root.
func (t *Tree) walkUp(p archive.Path, fn func(*Node)) {
	if _, ok := t.nodes[p.Key()]; !ok {
		return
	}
	for i := len(p); i >= 0; i-- {
		if n, ok := t.nodes[p[:i].Key()]; ok {
			fn(n)
		}
	}
}

// Root returns the root node, or nil when the tree is empty.
func (t *Tree) Root() *Node {
	return t.root
}

// Find returns the node at p.
func (t *Tree) Find(p archive.Path) (*Node, bool) {
	n, ok := t.nodes[p.Key()]
	return n, ok
}

// Files returns every file path in the tree, sorted.
func (t *Tree) Files() []archive.Path {
	var files []archive.Path
	for _, n := range t.nodes {
		if !n.IsDir {
			files = append(files, n.Path.Clone())
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Key() < files[j].Key() })
	return files
}

// IsModified reports whether the document shown by the tree has unsaved
// changes.
func (t *Tree) IsModified() bool {
	return t.root != nil && (t.root.Modified || t.root.AlwaysModified)
}

// Select replaces the selection. Paths not in the tree are ignored.
func (t *Tree) Select(paths ...archive.Path) {
	t.selection = t.selection[:0]
	for _, p := range paths {
		if _, ok := t.nodes[p.Key()]; ok {
			t.selection = append(t.selection, p.Clone())
		}
	}
}

// Selection returns the selected items.
func (t *Tree) Selection() []Item {
	items := make([]Item, 0, len(t.selection))
	for _, p := range t.selection {
		n := t.nodes[p.Key()]
		kind := ItemFile
		switch {
		case n == t.root:
			kind = ItemRoot
		case n.IsDir:
			kind = ItemFolder
		}
		items = append(items, Item{Path: p.Clone(), Kind: kind})
	}
	return items
}

// Locked reports whether a bulk operation holds the tree.
func (t *Tree) Locked() bool {
	return t.locked
}

// SetLocked sets the bulk-operation lock.
func (t *Tree) SetLocked(locked bool) {
	t.locked = locked
}

// Search returns the files matching pattern. Patterns with wildcards are
// globbed against the file name and the full path; anything else is fuzzy
// matched, best match first.
func (t *Tree) Search(pattern string) []archive.Path {
	files := t.Files()
	if pattern == "" {
		return files
	}

	if strings.ContainsAny(pattern, "*?") {
		search := strings.ToLower(pattern)
		var result []archive.Path
		for _, p := range files {
			full := strings.ToLower(p.Key())
			if matched, _ := filepath.Match(search, strings.ToLower(p.Base())); matched {
				result = append(result, p)
				continue
			}
			if matched, _ := filepath.Match(search, full); matched {
				result = append(result, p)
			}
		}
		return result
	}

	keys := make([]string, len(files))
	for i, p := range files {
		keys[i] = p.Key()
	}
	matches := fuzzy.Find(pattern, keys)
	result := make([]archive.Path, 0, len(matches))
	for _, m := range matches {
		result = append(result, files[m.Index])
	}
	return result
}
