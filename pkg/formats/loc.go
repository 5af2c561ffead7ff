package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/packdesk/pkg/textenc"
)

// Loc format errors.
var (
	ErrInvalidLocMagic       = errors.New("invalid loc magic: expected BOM + 'LOC'")
	ErrUnsupportedLocVersion = errors.New("unsupported loc version")
	ErrTruncatedLocData      = errors.New("truncated loc data")
)

var locMagic = []byte{0xFF, 0xFE, 'L', 'O', 'C', 0x00}

// LocVersion is the only loc version written by the games we support.
const LocVersion uint32 = 1

// Loc is a localization table: ordered key/text rows.
type Loc struct {
	Rows []LocRow
}

// LocRow is one localized string.
type LocRow struct {
	Key     string
	Text    string
	Tooltip bool
}

// ParseLoc parses a loc entry from raw bytes.
func ParseLoc(data []byte) (*Loc, error) {
	if len(data) < len(locMagic)+8 {
		return nil, ErrTruncatedLocData
	}
	if !bytes.Equal(data[:len(locMagic)], locMagic) {
		return nil, ErrInvalidLocMagic
	}

	r := bytes.NewReader(data[len(locMagic):])

	var version, count uint32
	binary.Read(r, binary.LittleEndian, &version)
	binary.Read(r, binary.LittleEndian, &count)
	if version != LocVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedLocVersion, version)
	}

	loc := &Loc{Rows: make([]LocRow, 0, min(count, 4096))}
	for i := uint32(0); i < count; i++ {
		key, err := readSizedUTF16(r)
		if err != nil {
			return nil, fmt.Errorf("row %d key: %w", i, err)
		}
		text, err := readSizedUTF16(r)
		if err != nil {
			return nil, fmt.Errorf("row %d text: %w", i, err)
		}
		tooltip, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d tooltip", ErrTruncatedLocData, i)
		}
		loc.Rows = append(loc.Rows, LocRow{Key: key, Text: text, Tooltip: tooltip != 0})
	}

	return loc, nil
}

// Encode serializes the loc table.
func (l *Loc) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(locMagic)
	binary.Write(&buf, binary.LittleEndian, LocVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(len(l.Rows)))

	for i, row := range l.Rows {
		if err := writeSizedUTF16(&buf, row.Key); err != nil {
			return nil, fmt.Errorf("row %d key: %w", i, err)
		}
		if err := writeSizedUTF16(&buf, row.Text); err != nil {
			return nil, fmt.Errorf("row %d text: %w", i, err)
		}
		tooltip := byte(0)
		if row.Tooltip {
			tooltip = 1
		}
		buf.WriteByte(tooltip)
	}

	return buf.Bytes(), nil
}

// readSizedUTF16 reads a u16 character count followed by UTF-16LE text.
func readSizedUTF16(r *bytes.Reader) (string, error) {
	var chars uint16
	if err := binary.Read(r, binary.LittleEndian, &chars); err != nil {
		return "", ErrTruncatedLocData
	}
	raw := make([]byte, int(chars)*2)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", ErrTruncatedLocData
	}
	return textenc.DecodeUTF16(raw)
}

func writeSizedUTF16(buf *bytes.Buffer, s string) error {
	raw, err := textenc.EncodeUTF16(s)
	if err != nil {
		return err
	}
	if len(raw)/2 > 0xFFFF {
		return fmt.Errorf("string too long: %d characters", len(raw)/2)
	}
	binary.Write(buf, binary.LittleEndian, uint16(len(raw)/2))
	buf.Write(raw)
	return nil
}
