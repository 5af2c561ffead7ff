package archive

import "strings"

// Kind classifies an entry by how it is edited.
type Kind int

const (
	KindUnsupported Kind = iota
	KindTable
	KindLoc
	KindText
	KindRigidModel
	KindImage
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindLoc:
		return "loc"
	case KindText:
		return "text"
	case KindRigidModel:
		return "rigid_model"
	case KindImage:
		return "image"
	default:
		return "unsupported"
	}
}

// ParseKind maps a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range []Kind{KindTable, KindLoc, KindText, KindRigidModel, KindImage} {
		if k.String() == s {
			return k, true
		}
	}
	return KindUnsupported, false
}

// LocSuffix is appended to new loc entries that lack it.
const LocSuffix = ".loc"

// DefaultTextSuffix is appended to new text entries with no known suffix.
const DefaultTextSuffix = ".txt"

// TextSuffixes lists the suffixes recognized as plain-text entries.
// Order matters only for readability; matching is by HasSuffix.
var TextSuffixes = []string{
	".lua",
	".xml",
	".xml.shader",
	".xml.material",
	".variantmeshdefinition",
	".environment",
	".lighting",
	".wsmodel",
	".csv",
	".tsv",
	".inl",
	".battle_speech_camera",
	".bob",
	".cindyscene",
	".cindyscenemanager",
	".txt",
}

var imageSuffixes = []string{".png", ".jpg", ".jpeg", ".bmp", ".tga", ".webp"}

const rigidModelSuffix = ".rigid_model_v2"

// KindOf returns the editing kind of the entry at p.
func KindOf(p Path) Kind {
	if len(p) == 0 {
		return KindUnsupported
	}
	if len(p) == 3 && p[0] == "db" {
		return KindTable
	}

	name := strings.ToLower(p.Base())
	switch {
	case strings.HasSuffix(name, LocSuffix):
		return KindLoc
	case strings.HasSuffix(name, rigidModelSuffix):
		return KindRigidModel
	case hasAnySuffix(name, imageSuffixes):
		return KindImage
	case hasAnySuffix(name, TextSuffixes):
		return KindText
	default:
		return KindUnsupported
	}
}

// IsTextName reports whether name ends in one of TextSuffixes.
func IsTextName(name string) bool {
	return hasAnySuffix(name, TextSuffixes)
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
