package command

import (
	"slices"

	"github.com/Faultbox/packdesk/internal/errs"
)

// legality lists the responses a command may produce. Error responses are
// legal only with one of the listed kinds.
type legality struct {
	responses []string
	errors    []errs.Kind
}

// saveAsFinal is the table key for the response that follows SendData.
const saveAsFinal = "SaveDocumentAs/data"

var legal = map[string]legality{
	"NewDocument":     {responses: []string{"DocumentCreated"}},
	"OpenDocument":    {responses: []string{"DocumentOpened"}, errors: []errs.Kind{errs.OpenPackFileGeneric}},
	"SaveDocument":    {responses: []string{"Saved"}, errors: []errs.Kind{errs.PackFileIsNotAFile, errs.SavePackFileGeneric}},
	"SaveDocumentAs":  {responses: []string{"SaveTarget"}, errors: []errs.Kind{errs.PackFileIsNonEditable}},
	saveAsFinal:       {responses: []string{"Saved", "Success"}, errors: []errs.Kind{errs.SavePackFileGeneric}},
	"ResetDocument":   {responses: []string{"Success"}},
	"DocumentInfo":    {responses: []string{"Info"}},
	"ListEntries":     {responses: []string{"Entries"}},
	"EntryExists":     {responses: []string{"Exists"}},
	"CreateEntry":     {responses: []string{"Success"}, errors: []errs.Kind{errs.FileAlreadyInPackFile}},
	"DecodeEntry":     {responses: []string{"EntryData"}, errors: []errs.Kind{errs.PackedFileNotFound}},
	"EncodeTextEntry": {responses: []string{"Success"}, errors: []errs.Kind{errs.PackedFileNotFound, errs.TextDecode}},
	"GetNotes":        {responses: []string{"Notes"}},
	"SetNotes":        {responses: []string{"Success"}},
	"CheckScript":     {responses: []string{"ScriptReport"}, errors: []errs.Kind{errs.PackedFileNotFound, errs.ScriptCheck}},
}

// Legal reports whether resp is an allowed answer to the command named key.
func Legal(key string, resp Response) bool {
	l, ok := legal[key]
	if !ok {
		return false
	}
	if e, ok := resp.(Error); ok {
		return slices.Contains(l.errors, e.Kind())
	}
	return slices.Contains(l.responses, resp.Name())
}

// legalNames describes the allowed answers for diagnostics.
func legalNames(key string) []string {
	l := legal[key]
	names := slices.Clone(l.responses)
	for _, k := range l.errors {
		names = append(names, "Error("+k.String()+")")
	}
	return names
}
