package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DB table format errors.
var (
	ErrInvalidTableHeader = errors.New("invalid db table header")
	ErrTruncatedTableData = errors.New("truncated db table data")
)

// Header markers, stored little-endian.
var (
	tableGUIDMarker    = []byte{0xFD, 0xFE, 0xFC, 0xFF}
	tableVersionMarker = []byte{0xFC, 0xFD, 0xFE, 0xFF}
)

// DBTable is a db table entry. Rows are kept as raw bytes: decoding them
// needs the game schema, which the table editor applies on top.
type DBTable struct {
	GUID     string // Optional, empty when absent
	Version  uint32 // 0 when the version marker is absent
	RowCount uint32
	Rows     []byte
}

// ParseDBTable parses the header of a db table entry.
func ParseDBTable(data []byte) (*DBTable, error) {
	r := bytes.NewReader(data)
	table := &DBTable{}

	if bytes.HasPrefix(data, tableGUIDMarker) {
		r.Seek(int64(len(tableGUIDMarker)), io.SeekStart)
		guid, err := readSizedUTF16(r)
		if err != nil {
			return nil, fmt.Errorf("%w: guid", ErrTruncatedTableData)
		}
		table.GUID = guid
	}

	rest := data[len(data)-r.Len():]
	if bytes.HasPrefix(rest, tableVersionMarker) {
		r.Seek(int64(len(tableVersionMarker)), io.SeekCurrent)
		if err := binary.Read(r, binary.LittleEndian, &table.Version); err != nil {
			return nil, fmt.Errorf("%w: version", ErrTruncatedTableData)
		}
	}

	marker, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: marker", ErrTruncatedTableData)
	}
	if marker != 0x01 {
		return nil, fmt.Errorf("%w: marker 0x%02X", ErrInvalidTableHeader, marker)
	}
	if err := binary.Read(r, binary.LittleEndian, &table.RowCount); err != nil {
		return nil, fmt.Errorf("%w: row count", ErrTruncatedTableData)
	}

	table.Rows = data[len(data)-r.Len():]
	if table.RowCount == 0 && len(table.Rows) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in empty table", ErrInvalidTableHeader, len(table.Rows))
	}
	return table, nil
}

// Encode serializes the table header followed by its raw rows.
func (t *DBTable) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if t.GUID != "" {
		buf.Write(tableGUIDMarker)
		if err := writeSizedUTF16(&buf, t.GUID); err != nil {
			return nil, fmt.Errorf("guid: %w", err)
		}
	}
	if t.Version > 0 {
		buf.Write(tableVersionMarker)
		binary.Write(&buf, binary.LittleEndian, t.Version)
	}
	buf.WriteByte(0x01)
	binary.Write(&buf, binary.LittleEndian, t.RowCount)
	buf.Write(t.Rows)
	return buf.Bytes(), nil
}
