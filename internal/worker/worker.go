// Package worker runs the Document Worker: the single goroutine that owns the
// open PackFile and answers commands from the UI actor.
package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/formats"
	"github.com/Faultbox/packdesk/pkg/pack"
	"github.com/Faultbox/packdesk/pkg/textenc"
)

// Worker owns the document. Only Run's goroutine touches it.
type Worker struct {
	end *command.Endpoint
	doc *pack.PackFile
	log *zap.Logger
}

// New creates a worker holding an empty document.
func New(end *command.Endpoint, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{end: end, doc: pack.New(), log: log}
}

// Start runs a new worker in its own goroutine. The returned channel yields
// Run's result once the worker stops.
func Start(ctx context.Context, end *command.Endpoint, log *zap.Logger) <-chan error {
	w := New(end, log)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	return done
}

// Run answers commands until ctx is done or the channel is closed.
func (w *Worker) Run(ctx context.Context) error {
	for {
		cmd, seq, err := w.end.Next(ctx)
		if err != nil {
			if errors.Is(err, command.ErrClosed) {
				return nil
			}
			return err
		}

		log := w.log.With(zap.Uint64("seq", seq), zap.String("command", cmd.Name()))
		log.Debug("handling command")

		var resp command.Response
		if _, ok := cmd.(command.SaveDocumentAs); ok {
			resp, err = w.saveAs(ctx)
			if err != nil {
				return ignoreClosed(err)
			}
		} else {
			resp = w.handle(cmd)
		}

		if e, ok := resp.(command.Error); ok {
			log.Info("command failed", zap.Error(e.Err))
		}
		if err := w.end.Reply(ctx, resp); err != nil {
			return ignoreClosed(err)
		}
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, command.ErrClosed) {
		return nil
	}
	return err
}

func fail(k errs.Kind, err error) command.Error {
	return command.Error{Err: errs.Wrap(k, err)}
}

func (w *Worker) handle(cmd command.Command) command.Response {
	switch c := cmd.(type) {
	case command.NewDocument:
		w.doc = pack.New()
		return command.DocumentCreated{}

	case command.OpenDocument:
		doc, err := pack.Open(c.Paths...)
		if err != nil {
			return fail(errs.OpenPackFileGeneric, err)
		}
		w.doc = doc
		return command.DocumentOpened{Info: doc.Info()}

	case command.SaveDocument:
		if err := w.doc.Save(); err != nil {
			if errors.Is(err, pack.ErrNotAFile) {
				return fail(errs.PackFileIsNotAFile, err)
			}
			return fail(errs.SavePackFileGeneric, err)
		}
		return command.Saved{Timestamp: w.doc.Info().Timestamp}

	case command.ResetDocument:
		w.doc = pack.New()
		return command.Success{}

	case command.DocumentInfo:
		return command.Info{Info: w.doc.Info()}

	case command.ListEntries:
		return command.Entries{Paths: w.doc.Entries()}

	case command.EntryExists:
		return command.Exists{Value: w.doc.Contains(c.Path)}

	case command.CreateEntry:
		return w.createEntry(c)

	case command.DecodeEntry:
		data, err := w.doc.Read(c.Path)
		if err != nil {
			return fail(errs.PackedFileNotFound, err)
		}
		return command.EntryData{Path: c.Path, Data: data}

	case command.EncodeTextEntry:
		return w.encodeText(c)

	case command.GetNotes:
		return command.Notes{Text: w.doc.Notes()}

	case command.SetNotes:
		w.doc.SetNotes(c.Text)
		return command.Success{}

	case command.CheckScript:
		data, err := w.doc.Read(c.Path)
		if err != nil {
			return fail(errs.PackedFileNotFound, err)
		}
		src, _, err := textenc.Decode(data)
		if err != nil {
			return fail(errs.ScriptCheck, err)
		}
		return command.ScriptReport{Lines: CheckLua(c.Path.String(), src)}
	}

	w.log.Error("unknown command", zap.String("command", cmd.Name()))
	return command.Error{Err: errs.Newf(errs.Unknown, "unknown command %s", cmd.Name())}
}

// saveAs runs the two-phase save-as exchange. The returned error is a
// channel failure; domain failures are returned as responses.
func (w *Worker) saveAs(ctx context.Context) (command.Response, error) {
	if !w.doc.Editable() {
		return fail(errs.PackFileIsNonEditable, fmt.Errorf("%s packs cannot be saved as new files", w.doc.Info().Type)), nil
	}

	if err := w.end.Reply(ctx, command.SaveTarget{Path: w.doc.Path()}); err != nil {
		return nil, err
	}

	data, err := w.end.AwaitData(ctx)
	if err != nil {
		return nil, err
	}

	switch d := data.(type) {
	case command.SavePath:
		if err := w.doc.SaveAs(d.Path); err != nil {
			return fail(errs.SavePackFileGeneric, err), nil
		}
		return command.Saved{Timestamp: w.doc.Info().Timestamp}, nil
	default:
		return command.Success{}, nil
	}
}

func (w *Worker) createEntry(c command.CreateEntry) command.Response {
	if w.doc.Contains(c.Path) {
		return command.Error{Err: errs.WithPaths(errs.FileAlreadyInPackFile, nil, c.Path.String())}
	}

	data, err := initialData(c.Kind)
	if err != nil {
		return fail(errs.Unknown, err)
	}
	if err := w.doc.Add(c.Path, data); err != nil {
		return command.Error{Err: errs.WithPaths(errs.FileAlreadyInPackFile, err, c.Path.String())}
	}
	return command.Success{}
}

// initialData is the content of a freshly created entry of kind k.
func initialData(k archive.Kind) ([]byte, error) {
	switch k {
	case archive.KindTable:
		return (&formats.DBTable{Version: 1}).Encode()
	case archive.KindLoc:
		return (&formats.Loc{}).Encode()
	default:
		return []byte{}, nil
	}
}

func (w *Worker) encodeText(c command.EncodeTextEntry) command.Response {
	old, err := w.doc.Read(c.Path)
	if err != nil {
		return fail(errs.PackedFileNotFound, err)
	}

	enc := textenc.UTF8
	if len(old) > 0 {
		if _, detected, err := textenc.Decode(old); err == nil {
			enc = detected
		}
	}

	data, err := textenc.Encode(c.Text, enc)
	if err != nil {
		return fail(errs.TextDecode, err)
	}
	if err := w.doc.Replace(c.Path, data); err != nil {
		return fail(errs.PackedFileNotFound, err)
	}
	return command.Success{}
}
