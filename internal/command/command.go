// Package command implements the typed request/response channel between the
// UI actor and the Document Worker.
package command

import (
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/pack"
)

// Command is a request sent to the worker.
type Command interface {
	Name() string
}

// Response is the worker's answer to exactly one Command.
type Response interface {
	Name() string
}

// Data is the second-phase message of a two-phase command.
type Data interface {
	Name() string
}

// Commands.
type (
	NewDocument    struct{}
	OpenDocument   struct{ Paths []string }
	SaveDocument   struct{}
	SaveDocumentAs struct{}
	ResetDocument  struct{}
	DocumentInfo   struct{}
	ListEntries    struct{}
	EntryExists    struct{ Path archive.Path }
	CreateEntry    struct {
		Path  archive.Path
		Kind  archive.Kind
		Table string
	}
	DecodeEntry     struct{ Path archive.Path }
	EncodeTextEntry struct {
		Path archive.Path
		Text string
	}
	GetNotes    struct{}
	SetNotes    struct{ Text string }
	CheckScript struct{ Path archive.Path }
)

func (NewDocument) Name() string     { return "NewDocument" }
func (OpenDocument) Name() string    { return "OpenDocument" }
func (SaveDocument) Name() string    { return "SaveDocument" }
func (SaveDocumentAs) Name() string  { return "SaveDocumentAs" }
func (ResetDocument) Name() string   { return "ResetDocument" }
func (DocumentInfo) Name() string    { return "DocumentInfo" }
func (ListEntries) Name() string     { return "ListEntries" }
func (EntryExists) Name() string     { return "EntryExists" }
func (CreateEntry) Name() string     { return "CreateEntry" }
func (DecodeEntry) Name() string     { return "DecodeEntry" }
func (EncodeTextEntry) Name() string { return "EncodeTextEntry" }
func (GetNotes) Name() string        { return "GetNotes" }
func (SetNotes) Name() string        { return "SetNotes" }
func (CheckScript) Name() string     { return "CheckScript" }

// Second-phase data.
type (
	SavePath struct{ Path string }
	Cancel   struct{}
)

func (SavePath) Name() string { return "SavePath" }
func (Cancel) Name() string   { return "Cancel" }

// Responses.
type (
	Success         struct{}
	DocumentCreated struct{}
	DocumentOpened  struct{ Info pack.Info }
	Info            struct{ Info pack.Info }
	Saved           struct{ Timestamp int64 }
	SaveTarget      struct{ Path string }
	Exists          struct{ Value bool }
	Entries         struct{ Paths []archive.Path }
	EntryData       struct {
		Path archive.Path
		Data []byte
	}
	Notes        struct{ Text string }
	ScriptReport struct{ Lines []string }
	Error        struct{ Err error }
)

func (Success) Name() string         { return "Success" }
func (DocumentCreated) Name() string { return "DocumentCreated" }
func (DocumentOpened) Name() string  { return "DocumentOpened" }
func (Info) Name() string            { return "Info" }
func (Saved) Name() string           { return "Saved" }
func (SaveTarget) Name() string      { return "SaveTarget" }
func (Exists) Name() string          { return "Exists" }
func (Entries) Name() string         { return "Entries" }
func (EntryData) Name() string       { return "EntryData" }
func (Notes) Name() string           { return "Notes" }
func (ScriptReport) Name() string    { return "ScriptReport" }
func (Error) Name() string           { return "Error" }

// Kind returns the domain error kind carried by the response.
func (e Error) Kind() errs.Kind {
	return errs.KindOf(e.Err)
}
