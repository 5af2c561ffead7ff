// Package profile is the registry of per-game behavioral variants.
//
// Profiles are keyed by a stable id. Everything the session layer needs to
// know about a game (which header version it writes, which editors and
// actions it supports) is carried as data on the Profile, so callers never
// switch on game names.
package profile

import (
	"os"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/pkg/pack"
)

// Fallback is the profile used for unknown MyMod folders.
const Fallback = "empire"

// Profile describes one supported game.
type Profile struct {
	ID          string
	DisplayName string
	Version     pack.Version

	// VersionDefault marks the profile chosen for its version when the
	// current profile does not match the opened document.
	VersionDefault bool
	// RequiresExtendedHeader marks the profile chosen whenever a document
	// of its version carries the extended-header flag.
	RequiresExtendedHeader bool

	SupportsEditing     bool
	HasAssemblyKit      bool
	SupportsCompression bool
	HasScriptTypes      bool
	HasSchema           bool

	// DataPath is the game's data folder, from configuration.
	DataPath string
}

// HasDataPath reports whether the data folder is configured and exists.
func (p *Profile) HasDataPath() bool {
	if p.DataPath == "" {
		return false
	}
	info, err := os.Stat(p.DataPath)
	return err == nil && info.IsDir()
}

var builtin = []Profile{
	{ID: "three_kingdoms", DisplayName: "Three Kingdoms", Version: pack.PFH5,
		SupportsEditing: true, HasAssemblyKit: true, SupportsCompression: true, HasScriptTypes: true, HasSchema: true},
	{ID: "warhammer_2", DisplayName: "Warhammer 2", Version: pack.PFH5, VersionDefault: true,
		SupportsEditing: true, HasAssemblyKit: true, SupportsCompression: true, HasScriptTypes: true, HasSchema: true},
	{ID: "arena", DisplayName: "Arena", Version: pack.PFH5, RequiresExtendedHeader: true},
	{ID: "warhammer", DisplayName: "Warhammer", Version: pack.PFH4,
		SupportsEditing: true, HasAssemblyKit: true, HasScriptTypes: true, HasSchema: true},
	{ID: "thrones_of_britannia", DisplayName: "Thrones of Britannia", Version: pack.PFH4,
		SupportsEditing: true, HasAssemblyKit: true, HasSchema: true},
	{ID: "attila", DisplayName: "Attila", Version: pack.PFH4,
		SupportsEditing: true, HasAssemblyKit: true, HasSchema: true},
	{ID: "rome_2", DisplayName: "Rome 2", Version: pack.PFH4, VersionDefault: true,
		SupportsEditing: true, HasAssemblyKit: true, HasSchema: true},
	{ID: "shogun_2", DisplayName: "Shogun 2", Version: pack.PFH3, VersionDefault: true,
		SupportsEditing: true, HasSchema: true},
	{ID: "napoleon", DisplayName: "Napoleon", Version: pack.PFH0,
		SupportsEditing: true, HasSchema: true},
	{ID: "empire", DisplayName: "Empire", Version: pack.PFH0, VersionDefault: true,
		SupportsEditing: true, HasSchema: true},
}

// Registry holds the known profiles in display order.
type Registry struct {
	profiles []*Profile
	byID     map[string]*Profile
}

// NewRegistry builds the registry of built-in profiles. dataPaths maps
// profile ids to configured game data folders.
func NewRegistry(dataPaths map[string]string) *Registry {
	r := &Registry{byID: make(map[string]*Profile, len(builtin))}
	for _, p := range builtin {
		p := p
		p.DataPath = dataPaths[p.ID]
		r.profiles = append(r.profiles, &p)
		r.byID[p.ID] = &p
	}
	return r
}

// Lookup returns the profile with the given id. Unknown ids fail with
// errs.UnknownProfile and, when one is close enough, a suggestion.
func (r *Registry) Lookup(id string) (*Profile, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	if suggestion := r.suggest(id); suggestion != "" {
		return nil, errs.Newf(errs.UnknownProfile, "%q (did you mean %q?)", id, suggestion)
	}
	return nil, errs.Newf(errs.UnknownProfile, "%q", id)
}

func (r *Registry) suggest(id string) string {
	best, bestDist := "", len(id)/2+1
	for _, p := range r.profiles {
		if d := levenshtein.ComputeDistance(id, p.ID); d < bestDist {
			best, bestDist = p.ID, d
		}
	}
	return best
}

// ForFolder returns the profile owning a MyMod folder name, falling back to
// Fallback when the folder does not name a profile.
func (r *Registry) ForFolder(name string) *Profile {
	if p, ok := r.byID[name]; ok {
		return p
	}
	return r.byID[Fallback]
}

// Infer picks the profile for a freshly opened document. An extended-header
// document selects the profile requiring it; otherwise the current profile is
// kept when it writes the document's version, and the version default is used
// when it does not.
func (r *Registry) Infer(version pack.Version, flags pack.Flags, current string) *Profile {
	var fallback *Profile
	var keep *Profile
	for _, p := range r.profiles {
		if p.Version != version {
			continue
		}
		if p.RequiresExtendedHeader {
			if flags.Has(pack.FlagExtendedHeader) {
				return p
			}
			continue
		}
		if p.ID == current {
			keep = p
		}
		if p.VersionDefault {
			fallback = p
		}
	}
	if keep != nil {
		return keep
	}
	if fallback != nil {
		return fallback
	}
	return r.byID[Fallback]
}

// All returns every profile in display order.
func (r *Registry) All() []*Profile {
	return r.profiles
}

// Editable returns the ids of profiles that support editing, sorted.
func (r *Registry) Editable() []string {
	var ids []string
	for _, p := range r.profiles {
		if p.SupportsEditing {
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
