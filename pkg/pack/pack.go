// Package pack provides reading and writing of PackFile containers.
//
// A PackFile is a header, a zlib-compressed index and a data area. The index
// lists every entry by its "/"-joined archive path together with its stored
// size, raw size, data offset and flags. Entry data is zlib-compressed when
// compression is enabled for the document.
package pack

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/textenc"
)

// Errors returned by PackFile operations.
var (
	ErrNotAFile     = errors.New("packfile has no file on disk yet")
	ErrExists       = errors.New("entry already exists")
	ErrNotFound     = errors.New("entry not found")
	ErrEncrypted    = errors.New("encrypted packfiles are not supported")
	ErrInvalidMagic = errors.New("invalid packfile magic")
)

const headerSize = 32

// Entry flags stored in the index.
const (
	entryCompressed uint8 = 1 << 0
	entryNotes      uint8 = 1 << 2
)

// notesName is the index name of the notes record. The entryNotes flag, not
// the name, tells it apart from an entry of the same name.
const notesName = "notes"

// Header is the fixed-size header at the start of every PackFile.
type Header struct {
	Magic        [4]byte
	Type         uint32
	Flags        uint32
	FileCount    uint32
	IndexSize    uint32
	IndexRawSize uint32
	Timestamp    int64
}

// Entry is one file stored in the document.
type Entry struct {
	Path       archive.Path
	Data       []byte
	Compressed bool
}

// PackFile is an in-memory PackFile document.
type PackFile struct {
	path        string
	version     Version
	fileType    FileType
	flags       Flags
	timestamp   int64
	compression bool
	notes       string
	entries     map[string]*Entry

	now func() time.Time
}

// New creates an empty, unsaved mod PackFile for the newest version.
func New() *PackFile {
	return &PackFile{
		version:  PFH5,
		fileType: TypeMod,
		entries:  make(map[string]*Entry),
		now:      time.Now,
	}
}

// Open reads one or more PackFiles from disk. When several paths are given
// their entries are merged into one document (later paths win) which has no
// file of its own; the header of the first file is kept.
func Open(paths ...string) (*PackFile, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no packfile paths given")
	}

	merged := New()
	for i, path := range paths {
		p, err := openOne(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		if i == 0 {
			merged.version = p.version
			merged.fileType = p.fileType
			merged.flags = p.flags
			merged.timestamp = p.timestamp
			merged.compression = p.compression
			merged.notes = p.notes
		}
		for key, entry := range p.entries {
			merged.entries[key] = entry
		}
	}

	if len(paths) == 1 {
		merged.path = paths[0]
	}
	return merged, nil
}

func openOne(path string) (*PackFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var header Header
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	version, ok := ParseVersion(textenc.FixedString(header.Magic[:]))
	if !ok {
		return nil, ErrInvalidMagic
	}

	flags := Flags(header.Flags)
	if flags.Has(FlagEncryptedIndex) || flags.Has(FlagEncryptedData) {
		return nil, ErrEncrypted
	}

	p := New()
	p.version = version
	p.fileType = FileType(header.Type)
	p.flags = flags
	p.timestamp = header.Timestamp

	compressedIndex := make([]byte, header.IndexSize)
	if _, err := io.ReadFull(file, compressedIndex); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	index, err := inflate(compressedIndex, header.IndexRawSize)
	if err != nil {
		return nil, fmt.Errorf("decompressing index: %w", err)
	}

	dataStart := int64(headerSize) + int64(header.IndexSize)
	compressedCount := 0
	offset := 0
	for i := uint32(0); i < header.FileCount; i++ {
		nameEnd := bytes.IndexByte(index[offset:], 0)
		if nameEnd < 0 {
			return nil, fmt.Errorf("index truncated at entry %d", i)
		}
		name := string(index[offset : offset+nameEnd])
		offset += nameEnd + 1

		if offset+13 > len(index) {
			return nil, fmt.Errorf("index truncated at entry %d", i)
		}
		storedSize := binary.LittleEndian.Uint32(index[offset:])
		rawSize := binary.LittleEndian.Uint32(index[offset+4:])
		dataOffset := binary.LittleEndian.Uint32(index[offset+8:])
		entryFlags := index[offset+12]
		offset += 13

		stored := make([]byte, storedSize)
		if _, err := file.ReadAt(stored, dataStart+int64(dataOffset)); err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		data := stored
		if entryFlags&entryCompressed != 0 {
			compressedCount++
			data, err = inflate(stored, rawSize)
			if err != nil {
				return nil, fmt.Errorf("decompressing %s: %w", name, err)
			}
		}

		if entryFlags&entryNotes != 0 {
			p.notes = string(data)
			continue
		}

		entryPath := archive.Parse(name)
		p.entries[entryPath.Key()] = &Entry{
			Path:       entryPath,
			Data:       data,
			Compressed: entryFlags&entryCompressed != 0,
		}
	}

	p.compression = compressedCount > 0
	return p, nil
}

func inflate(data []byte, rawSize uint32) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	result := make([]byte, rawSize)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := zlib.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Path returns the file backing the document, or "" if it was never saved.
func (p *PackFile) Path() string {
	return p.path
}

// IsFile reports whether the document is backed by an existing file.
func (p *PackFile) IsFile() bool {
	if p.path == "" {
		return false
	}
	info, err := os.Stat(p.path)
	return err == nil && info.Mode().IsRegular()
}

// Editable reports whether the document may be saved under a new name.
// Only mod and movie packs are user content.
func (p *PackFile) Editable() bool {
	return p.fileType == TypeMod || p.fileType == TypeMovie
}

// Save writes the document to its own file.
func (p *PackFile) Save() error {
	if p.path == "" {
		return ErrNotAFile
	}
	return p.SaveAs(p.path)
}

// SaveAs writes the document to path and makes path its backing file.
func (p *PackFile) SaveAs(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	timestamp := p.now().Unix()
	data, err := p.encode(timestamp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	p.path = path
	p.timestamp = timestamp
	for _, entry := range p.entries {
		entry.Compressed = p.compression
	}
	return nil
}

func (p *PackFile) encode(timestamp int64) ([]byte, error) {
	type record struct {
		name  string
		data  []byte
		flags uint8
	}

	var records []record
	for _, entryPath := range p.Entries() {
		records = append(records, record{name: entryPath.Key(), data: p.entries[entryPath.Key()].Data})
	}
	if p.notes != "" {
		records = append(records, record{name: notesName, data: []byte(p.notes), flags: entryNotes})
	}

	var index, body bytes.Buffer
	for _, r := range records {
		stored := r.data
		if p.compression {
			compressed, err := deflate(r.data)
			if err != nil {
				return nil, fmt.Errorf("compressing %s: %w", r.name, err)
			}
			stored = compressed
			r.flags |= entryCompressed
		}

		index.WriteString(r.name)
		index.WriteByte(0)
		var fields [13]byte
		binary.LittleEndian.PutUint32(fields[0:], uint32(len(stored)))
		binary.LittleEndian.PutUint32(fields[4:], uint32(len(r.data)))
		binary.LittleEndian.PutUint32(fields[8:], uint32(body.Len()))
		fields[12] = r.flags
		index.Write(fields[:])
		body.Write(stored)
	}

	compressedIndex, err := deflate(index.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compressing index: %w", err)
	}

	header := Header{
		Type:         uint32(p.fileType),
		Flags:        uint32(p.flags),
		FileCount:    uint32(len(records)),
		IndexSize:    uint32(len(compressedIndex)),
		IndexRawSize: uint32(index.Len()),
		Timestamp:    timestamp,
	}
	copy(header.Magic[:], textenc.PutFixedString(p.version.String(), len(header.Magic)))

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	out.Write(compressedIndex)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// Entries returns every entry path, sorted by key.
func (p *PackFile) Entries() []archive.Path {
	keys := make([]string, 0, len(p.entries))
	for key := range p.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]archive.Path, 0, len(keys))
	for _, key := range keys {
		result = append(result, p.entries[key].Path.Clone())
	}
	return result
}

// Len returns the number of entries.
func (p *PackFile) Len() int {
	return len(p.entries)
}

// Contains checks if an entry exists. Folders are not entries.
func (p *PackFile) Contains(path archive.Path) bool {
	_, ok := p.entries[path.Key()]
	return ok
}

// Read returns the data of an entry.
func (p *PackFile) Read(path archive.Path) ([]byte, error) {
	entry, ok := p.entries[path.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return entry.Data, nil
}

// Add inserts a new entry, failing if the path is taken.
func (p *PackFile) Add(path archive.Path, data []byte) error {
	if p.Contains(path) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	p.entries[path.Key()] = &Entry{Path: path.Clone(), Data: data, Compressed: p.compression}
	return nil
}

// Replace overwrites the data of an existing entry.
func (p *PackFile) Replace(path archive.Path, data []byte) error {
	entry, ok := p.entries[path.Key()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	entry.Data = data
	return nil
}

// Remove deletes an entry.
func (p *PackFile) Remove(path archive.Path) error {
	if !p.Contains(path) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	delete(p.entries, path.Key())
	return nil
}

// Notes returns the free-form notes attached to the document.
func (p *PackFile) Notes() string {
	return p.notes
}

// SetNotes replaces the document notes.
func (p *PackFile) SetNotes(notes string) {
	p.notes = notes
}

// SetType changes the pack type.
func (p *PackFile) SetType(t FileType) {
	p.fileType = t
}

// SetFlags replaces the header flags.
func (p *PackFile) SetFlags(f Flags) {
	p.flags = f
}

// SetVersion changes the header version.
func (p *PackFile) SetVersion(v Version) {
	p.version = v
}

// SetCompression toggles compression of entry data on the next save.
func (p *PackFile) SetCompression(enabled bool) {
	p.compression = enabled
	for _, entry := range p.entries {
		entry.Compressed = enabled
	}
}

// Compression reports how many entries are stored compressed.
func (p *PackFile) Compression() CompressionState {
	compressed := 0
	for _, entry := range p.entries {
		if entry.Compressed {
			compressed++
		}
	}
	switch {
	case compressed == 0:
		return CompressionDisabled
	case compressed == len(p.entries):
		return CompressionEnabled
	default:
		return CompressionPartial
	}
}

// Info summarizes the header for display.
func (p *PackFile) Info() Info {
	return Info{
		Path:        p.path,
		Version:     p.version,
		Type:        p.fileType,
		Flags:       p.flags,
		Compression: p.Compression(),
		Timestamp:   p.timestamp,
		EntryCount:  len(p.entries),
	}
}
