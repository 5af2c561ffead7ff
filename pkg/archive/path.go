// Package archive defines the path and entry-kind vocabulary shared by every
// component that addresses entries inside a PackFile.
package archive

import (
	"slices"
	"strings"
)

// Separator joins path segments in the string form of a Path.
const Separator = "/"

// Path is an ordered, case-sensitive sequence of segments identifying one
// entry (or folder) inside the open document. The zero value is the root.
type Path []string

// Parse splits a "/"-separated string into a Path, dropping empty segments
// and normalizing backslashes.
func Parse(s string) Path {
	s = strings.ReplaceAll(s, "\\", Separator)
	parts := strings.Split(s, Separator)
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			p = append(p, part)
		}
	}
	return p
}

// Key returns the canonical string form of the path, usable as a map key.
func (p Path) Key() string {
	return strings.Join(p, Separator)
}

// String implements fmt.Stringer.
func (p Path) String() string {
	return p.Key()
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Clone returns a copy that does not share storage with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return slices.Clone(p)
}

// Base returns the last segment, or "" for the root.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1].Clone()
}

// Join returns a new path with the given segments appended.
func (p Path) Join(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// HasPrefix reports whether prefix is an ancestor of (or equal to) p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return slices.Equal(p[:len(prefix)], prefix)
}

// Set is an unordered collection of paths keyed by Path.Key.
type Set map[string]Path

// NewSet builds a Set from the given paths.
func NewSet(paths ...Path) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts p.
func (s Set) Add(p Path) {
	s[p.Key()] = p.Clone()
}

// Contains reports whether p is in the set.
func (s Set) Contains(p Path) bool {
	_, ok := s[p.Key()]
	return ok
}
