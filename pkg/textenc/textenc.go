// Package textenc converts text entries between their stored byte form and
// UTF-8 strings. Game data mixes UTF-8, UTF-16LE (with BOM) and legacy
// single-byte Latin-1 text, so decoding detects the encoding and encoding
// writes the entry back the way it was read.
package textenc

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding identifies the byte form of a text entry.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF8BOM
	UTF16LE
	Latin1
)

// String returns a short name for the encoding.
func (e Encoding) String() string {
	switch e {
	case UTF8BOM:
		return "utf-8-bom"
	case UTF16LE:
		return "utf-16le"
	case Latin1:
		return "iso-8859-1"
	default:
		return "utf-8"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Decode converts stored bytes to a UTF-8 string and reports which encoding
// was detected.
func Decode(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), UTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		result, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", UTF16LE, fmt.Errorf("decoding utf-16le: %w", err)
		}
		return string(result), UTF16LE, nil
	case utf8.Valid(data):
		return string(data), UTF8, nil
	}

	decoder := charmap.ISO8859_1.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", Latin1, fmt.Errorf("decoding iso-8859-1: %w", err)
	}
	return string(result), Latin1, nil
}

// Encode converts a UTF-8 string to the stored byte form of enc.
func Encode(s string, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8:
		return []byte(s), nil
	case UTF8BOM:
		return append(bytes.Clone(bomUTF8), s...), nil
	case UTF16LE:
		encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		result, _, err := transform.Bytes(encoder, []byte(s))
		if err != nil {
			return nil, fmt.Errorf("encoding utf-16le: %w", err)
		}
		return result, nil
	case Latin1:
		encoder := charmap.ISO8859_1.NewEncoder()
		result, _, err := transform.Bytes(encoder, []byte(s))
		if err != nil {
			return nil, fmt.Errorf("encoding iso-8859-1: %w", err)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unknown encoding %d", enc)
	}
}

// DecodeUTF16 decodes BOM-less UTF-16LE bytes, as used by sized strings in
// binary entries.
func DecodeUTF16(data []byte) (string, error) {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("decoding utf-16le: %w", err)
	}
	return string(result), nil
}

// EncodeUTF16 encodes s as BOM-less UTF-16LE.
func EncodeUTF16(s string) ([]byte, error) {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	result, _, err := transform.Bytes(encoder, []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding utf-16le: %w", err)
	}
	return result, nil
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

// FixedString reads a null-terminated string from a fixed-size field.
func FixedString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data)
}

// PutFixedString writes s into a fixed-size field, padding with null bytes.
// Strings longer than size are truncated.
func PutFixedString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, s)
	return result
}
