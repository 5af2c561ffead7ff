package editor

import (
	"fmt"
	"image"

	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/formats"
	"github.com/Faultbox/packdesk/pkg/textenc"
)

// View is a decoded entry ready to be shown in a slot.
type View interface {
	// Path is the entry the view shows. The notes view shows the root.
	Path() archive.Path
	Kind() archive.Kind
	// Summary is a one-line description for headless front ends.
	Summary() string
}

// TableView shows a db table.
type TableView struct {
	path  archive.Path
	Name  string
	Table *formats.DBTable
}

func (v *TableView) Path() archive.Path { return v.path }
func (v *TableView) Kind() archive.Kind { return archive.KindTable }
func (v *TableView) Summary() string {
	return fmt.Sprintf("table %s v%d, %d rows", v.Name, v.Table.Version, v.Table.RowCount)
}

// LocView shows a localization table.
type LocView struct {
	path archive.Path
	Loc  *formats.Loc
}

func (v *LocView) Path() archive.Path { return v.path }
func (v *LocView) Kind() archive.Kind { return archive.KindLoc }
func (v *LocView) Summary() string {
	return fmt.Sprintf("loc, %d rows", len(v.Loc.Rows))
}

// TextView shows a text entry. Encoding is kept so saving writes the same
// byte form back.
type TextView struct {
	path     archive.Path
	Text     string
	Encoding textenc.Encoding
}

func (v *TextView) Path() archive.Path { return v.path }
func (v *TextView) Kind() archive.Kind { return archive.KindText }
func (v *TextView) Summary() string {
	return fmt.Sprintf("text %s, %d bytes", v.Encoding, len(v.Text))
}

// NotesView shows the document notes.
type NotesView struct {
	Text string
}

func (v *NotesView) Path() archive.Path { return nil }
func (v *NotesView) Kind() archive.Kind { return archive.KindText }
func (v *NotesView) Summary() string {
	return fmt.Sprintf("notes, %d bytes", len(v.Text))
}

// RigidModelView shows a rigid model header.
type RigidModelView struct {
	path  archive.Path
	Model *formats.RigidModel
}

func (v *RigidModelView) Path() archive.Path { return v.path }
func (v *RigidModelView) Kind() archive.Kind { return archive.KindRigidModel }
func (v *RigidModelView) Summary() string {
	return fmt.Sprintf("rigid model v%d, %d lods, skeleton %q", v.Model.Version, v.Model.LODCount, v.Model.Skeleton)
}

// ImageView shows a decoded image.
type ImageView struct {
	path   archive.Path
	Image  image.Image
	Format string
}

func (v *ImageView) Path() archive.Path { return v.path }
func (v *ImageView) Kind() archive.Kind { return archive.KindImage }
func (v *ImageView) Summary() string {
	b := v.Image.Bounds()
	return fmt.Sprintf("image %s %dx%d", v.Format, b.Dx(), b.Dy())
}
