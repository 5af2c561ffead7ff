package pack

import "strings"

// Version is the header magic of a PackFile.
type Version int

const (
	PFH0 Version = iota
	PFH3
	PFH4
	PFH5
)

var versionNames = map[Version]string{
	PFH0: "PFH0",
	PFH3: "PFH3",
	PFH4: "PFH4",
	PFH5: "PFH5",
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return "unknown"
}

// ParseVersion parses a header magic such as "PFH5".
func ParseVersion(s string) (Version, bool) {
	for v, name := range versionNames {
		if strings.EqualFold(name, s) {
			return v, true
		}
	}
	return 0, false
}

// FileType is the pack type stored in the header.
type FileType uint32

const (
	TypeBoot FileType = iota
	TypeRelease
	TypePatch
	TypeMod
	TypeMovie
)

func (t FileType) String() string {
	switch t {
	case TypeBoot:
		return "boot"
	case TypeRelease:
		return "release"
	case TypePatch:
		return "patch"
	case TypeMod:
		return "mod"
	case TypeMovie:
		return "movie"
	default:
		return "other"
	}
}

// ParseFileType parses the name returned by FileType.String.
func ParseFileType(s string) (FileType, bool) {
	for t := TypeBoot; t <= TypeMovie; t++ {
		if t.String() == strings.ToLower(s) {
			return t, true
		}
	}
	return 0, false
}

// Flags is the header bitmask.
type Flags uint32

const (
	FlagEncryptedData       Flags = 0x10
	FlagIndexWithTimestamps Flags = 0x40
	FlagEncryptedIndex      Flags = 0x80
	FlagExtendedHeader      Flags = 0x100
)

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

func (fl Flags) String() string {
	var names []string
	if fl.Has(FlagEncryptedData) {
		names = append(names, "encrypted-data")
	}
	if fl.Has(FlagIndexWithTimestamps) {
		names = append(names, "index-timestamps")
	}
	if fl.Has(FlagEncryptedIndex) {
		names = append(names, "encrypted-index")
	}
	if fl.Has(FlagExtendedHeader) {
		names = append(names, "extended-header")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// CompressionState summarizes entry compression across the document.
type CompressionState int

const (
	CompressionDisabled CompressionState = iota
	CompressionPartial
	CompressionEnabled
)

func (c CompressionState) String() string {
	switch c {
	case CompressionEnabled:
		return "enabled"
	case CompressionPartial:
		return "partial"
	default:
		return "disabled"
	}
}

// Info is the header summary shown after a document is opened.
type Info struct {
	Path        string
	Version     Version
	Type        FileType
	Flags       Flags
	Compression CompressionState
	Timestamp   int64
	EntryCount  int
}
