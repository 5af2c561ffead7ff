package formats

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Faultbox/packdesk/pkg/textenc"
)

// Rigid model format errors.
var (
	ErrInvalidRigidModelMagic       = errors.New("invalid rigid model magic: expected 'RMV2'")
	ErrUnsupportedRigidModelVersion = errors.New("unsupported rigid model version")
	ErrTruncatedRigidModelData      = errors.New("truncated rigid model data")
	ErrInvalidLODCount              = errors.New("invalid rigid model lod count")
)

const (
	rigidModelHeaderSize = 4 + 4 + 4 + 128
	// MaxLODs bounds the lod count of a sane model.
	MaxLODs = 16
)

// RigidModel is the header of a rigid_model_v2 entry. Geometry is kept raw.
type RigidModel struct {
	Version  uint32
	LODCount uint32
	Skeleton string
	Body     []byte
}

// ParseRigidModel validates and parses a rigid model header.
func ParseRigidModel(data []byte) (*RigidModel, error) {
	if len(data) < rigidModelHeaderSize {
		return nil, ErrTruncatedRigidModelData
	}
	if string(data[:4]) != "RMV2" {
		return nil, ErrInvalidRigidModelMagic
	}

	m := &RigidModel{
		Version:  binary.LittleEndian.Uint32(data[4:8]),
		LODCount: binary.LittleEndian.Uint32(data[8:12]),
		Skeleton: textenc.FixedString(data[12:140]),
		Body:     data[rigidModelHeaderSize:],
	}

	if m.Version < 5 || m.Version > 8 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRigidModelVersion, m.Version)
	}
	if m.LODCount == 0 || m.LODCount > MaxLODs {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLODCount, m.LODCount)
	}

	return m, nil
}

// Encode serializes the model header followed by its raw body.
func (m *RigidModel) Encode() []byte {
	out := make([]byte, rigidModelHeaderSize, rigidModelHeaderSize+len(m.Body))
	copy(out, "RMV2")
	binary.LittleEndian.PutUint32(out[4:], m.Version)
	binary.LittleEndian.PutUint32(out[8:], m.LODCount)
	copy(out[12:140], textenc.PutFixedString(m.Skeleton, 128))
	return append(out, m.Body...)
}
