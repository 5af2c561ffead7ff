// Package editor builds the type-specific views for document entries. Every
// view is decoded from bytes fetched through the command channel; a view that
// fails to decode is never returned half-built.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Faultbox/packdesk/internal/command"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/internal/profile"
	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/formats"
	"github.com/Faultbox/packdesk/pkg/textenc"
)

// ErrUnsupported is returned for entries no editor can show.
var ErrUnsupported = errors.New("no editor for this entry")

// ErrNoSchema is returned when a table is opened under a profile without a
// table schema.
var ErrNoSchema = errors.New("profile has no table schema")

// Source is the UI side of the command channel.
type Source interface {
	Call(ctx context.Context, cmd command.Command) (command.Response, error)
}

// Factory constructs views.
type Factory struct {
	src Source
	log *zap.Logger
}

// NewFactory creates a factory fetching entry data from src.
func NewFactory(src Source, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{src: src, log: log}
}

// Open builds the view for path under the active profile. Decode failures
// carry the decode kind of the attempted view and the entry path.
func (f *Factory) Open(ctx context.Context, path archive.Path, prof *profile.Profile) (View, error) {
	kind := archive.KindOf(path)
	decodeKind, ok := decodeKinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}

	if kind == archive.KindTable && (prof == nil || !prof.HasSchema) {
		return nil, errs.WithPaths(decodeKind, ErrNoSchema, path.String())
	}

	data, err := f.fetch(ctx, path)
	if err != nil {
		if !isDomain(err) {
			return nil, err
		}
		return nil, errs.WithPaths(decodeKind, err, path.String())
	}

	view, err := decode(kind, path, data)
	if err != nil {
		f.log.Debug("decode failed", zap.Stringer("path", path), zap.Stringer("kind", kind), zap.Error(err))
		return nil, errs.WithPaths(decodeKind, err, path.String())
	}
	return view, nil
}

// Notes builds the view of the document notes.
func (f *Factory) Notes(ctx context.Context) (*NotesView, error) {
	resp, err := f.src.Call(ctx, command.GetNotes{})
	if err != nil {
		return nil, err
	}
	notes, ok := resp.(command.Notes)
	if !ok {
		return nil, fmt.Errorf("unexpected %s response", resp.Name())
	}
	return &NotesView{Text: notes.Text}, nil
}

var decodeKinds = map[archive.Kind]errs.Kind{
	archive.KindTable:      errs.DBTableDecode,
	archive.KindLoc:        errs.LocDecode,
	archive.KindText:       errs.TextDecode,
	archive.KindRigidModel: errs.RigidModelDecode,
	archive.KindImage:      errs.ImageDecode,
}

// isDomain reports whether err came back from the worker as an Error
// response rather than from the channel itself.
func isDomain(err error) bool {
	var e *errs.Error
	return errors.As(err, &e)
}

func (f *Factory) fetch(ctx context.Context, path archive.Path) ([]byte, error) {
	resp, err := f.src.Call(ctx, command.DecodeEntry{Path: path})
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case command.EntryData:
		return r.Data, nil
	case command.Error:
		return nil, r.Err
	default:
		return nil, fmt.Errorf("unexpected %s response", resp.Name())
	}
}

func decode(kind archive.Kind, path archive.Path, data []byte) (View, error) {
	switch kind {
	case archive.KindTable:
		table, err := formats.ParseDBTable(data)
		if err != nil {
			return nil, err
		}
		return &TableView{path: path.Clone(), Table: table, Name: path[1]}, nil

	case archive.KindLoc:
		loc, err := formats.ParseLoc(data)
		if err != nil {
			return nil, err
		}
		return &LocView{path: path.Clone(), Loc: loc}, nil

	case archive.KindText:
		text, enc, err := textenc.Decode(data)
		if err != nil {
			return nil, err
		}
		return &TextView{path: path.Clone(), Text: text, Encoding: enc}, nil

	case archive.KindRigidModel:
		model, err := formats.ParseRigidModel(data)
		if err != nil {
			return nil, err
		}
		return &RigidModelView{path: path.Clone(), Model: model}, nil

	case archive.KindImage:
		img, format, err := decodeImage(path.Base(), data)
		if err != nil {
			return nil, err
		}
		return &ImageView{path: path.Clone(), Image: img, Format: format}, nil
	}
	return nil, ErrUnsupported
}

// decodeImage decodes an image entry. TGA has no registered decoder and is
// handled by name.
func decodeImage(name string, data []byte) (image.Image, string, error) {
	if strings.HasSuffix(strings.ToLower(name), ".tga") {
		img, err := formats.DecodeTGA(data)
		return img, "tga", err
	}
	return image.Decode(bytes.NewReader(data))
}
