// Package errs defines the domain error kinds shared by the worker and the
// session layer.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a domain error.
type Kind int

const (
	Unknown Kind = iota

	// Document
	OpenPackFileGeneric
	SavePackFileGeneric
	PackFileIsNotAFile
	PackFileIsNonEditable
	SaveCancelled

	// Entries
	FileAlreadyInPackFile
	FileAlreadyExists
	PackedFileNotFound
	AlreadyOpenElsewhere
	EmptyInput
	ScriptCheck

	// Decoding
	LocDecode
	DBTableDecode
	TextDecode
	RigidModelDecode
	ImageDecode

	// Profiles
	ProfileLocked
	UnknownProfile
	GamePathNotConfigured

	// MyMods
	MyModPathNotConfigured
	MyModDeleteWithoutMyModSelected
	MyModPackFileDoesntExist
	MyModPackFileDeletedFolderNotFound
	MyModInstallFolderDoesntExists
	MyModNotInstalled
	MyModInvalidName

	// IO
	IOCreateAssetFolder
	IOCreateNestedAssetFolder
	IOGenericDelete
	IOGenericCopy
)

var kindNames = map[Kind]string{
	Unknown:                            "unknown",
	OpenPackFileGeneric:                "open packfile",
	SavePackFileGeneric:                "save packfile",
	PackFileIsNotAFile:                 "packfile is not a file",
	PackFileIsNonEditable:              "packfile is not editable",
	SaveCancelled:                      "save cancelled",
	FileAlreadyInPackFile:              "file already in packfile",
	FileAlreadyExists:                  "file already exists",
	PackedFileNotFound:                 "packed file not found",
	AlreadyOpenElsewhere:               "already open in another view",
	EmptyInput:                         "empty input",
	ScriptCheck:                        "script check",
	LocDecode:                          "loc decode",
	DBTableDecode:                      "db table decode",
	TextDecode:                         "text decode",
	RigidModelDecode:                   "rigid model decode",
	ImageDecode:                        "image decode",
	ProfileLocked:                      "profile locked",
	UnknownProfile:                     "unknown profile",
	GamePathNotConfigured:              "game path not configured",
	MyModPathNotConfigured:             "mymod path not configured",
	MyModDeleteWithoutMyModSelected:    "no mymod selected",
	MyModPackFileDoesntExist:           "mymod packfile does not exist",
	MyModPackFileDeletedFolderNotFound: "mymod assets folder not found",
	MyModInstallFolderDoesntExists:     "install folder does not exist",
	MyModNotInstalled:                  "mymod not installed",
	MyModInvalidName:                   "invalid mymod name",
	IOCreateAssetFolder:                "create assets folder",
	IOCreateNestedAssetFolder:          "create nested assets folder",
	IOGenericDelete:                    "delete",
	IOGenericCopy:                      "copy",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a domain error with its kind, optional detail and affected paths.
type Error struct {
	Kind   Kind
	Detail string
	Paths  []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Paths) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Paths, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an error of kind k.
func New(k Kind, detail string) *Error {
	return &Error{Kind: k, Detail: detail}
}

// Newf returns an error of kind k with a formatted detail.
func Newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of kind k caused by err.
func Wrap(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// WithPaths returns an error of kind k naming the affected paths.
func WithPaths(k Kind, err error, paths ...string) *Error {
	return &Error{Kind: k, Err: err, Paths: paths}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return errors.Is(err, &Error{Kind: k})
}

// Warnings collects non-fatal problems reported alongside a success.
type Warnings []error

func (w Warnings) Error() string {
	msgs := make([]string, len(w))
	for i, err := range w {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual warnings to errors.Is and errors.As.
func (w Warnings) Unwrap() []error {
	return w
}

// Err returns w as an error, or nil when empty.
func (w Warnings) Err() error {
	if len(w) == 0 {
		return nil
	}
	return w
}
