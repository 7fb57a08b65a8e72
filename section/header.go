package section

import (
	"fmt"
	"unsafe"

	"github.com/pcpkit/mmv/errs"
)

// Header is the 40-byte record at the start of every MMV file.
//
// The generation pair brackets a consistent file: a reader may trust
// the file only when Gen1 == Gen2 and both are nonzero. The committer
// writes the file with both fields zero and publishes them through the
// mapping afterwards.
type Header struct {
	Gen1      int64 // byte offset 8-15
	Gen2      int64 // byte offset 16-23
	TOCCount  int32 // byte offset 24-27
	Flags     Flag  // byte offset 28-31
	PID       int32 // byte offset 32-35
	ClusterID uint32
}

// Bytes serialises the header, magic and version included.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	copy(b[0:4], Magic[:])
	engine.PutUint32(b[4:8], Version)
	engine.PutUint64(b[Gen1Offset:], uint64(h.Gen1))
	engine.PutUint64(b[Gen2Offset:], uint64(h.Gen2))
	engine.PutUint32(b[24:28], uint32(h.TOCCount))
	engine.PutUint32(b[28:32], uint32(h.Flags))
	engine.PutUint32(b[32:36], uint32(h.PID))
	engine.PutUint32(b[36:40], h.ClusterID)

	return b
}

// Parse decodes the header from data, which must be exactly HeaderSize
// bytes. The magic and version are validated; the generation pair is
// not, so unpublished images such as a freshly materialised buffer
// still decode. Published reports whether the pair is consistent.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", errs.ErrInvalidRecordSize, HeaderSize, len(data))
	}

	if [4]byte(data[0:4]) != Magic {
		return fmt.Errorf("%w: % x", errs.ErrInvalidMagic, data[0:4])
	}

	version := engine.Uint32(data[4:8])
	if version != Version {
		return fmt.Errorf("%w: %d", errs.ErrInvalidVersion, version)
	}

	gen1 := engine.Uint64(data[Gen1Offset : Gen1Offset+8])
	gen2 := engine.Uint64(data[Gen2Offset : Gen2Offset+8])
	h.Gen1 = *(*int64)(unsafe.Pointer(&gen1))
	h.Gen2 = *(*int64)(unsafe.Pointer(&gen2))

	tocCount := engine.Uint32(data[24:28])
	h.TOCCount = *(*int32)(unsafe.Pointer(&tocCount))

	h.Flags = Flag(engine.Uint32(data[28:32]))

	pid := engine.Uint32(data[32:36])
	h.PID = *(*int32)(unsafe.Pointer(&pid))

	h.ClusterID = engine.Uint32(data[36:40])

	return nil
}

// Published reports whether the generation pair marks the file as
// consistent.
func (h *Header) Published() bool {
	return h.Gen1 == h.Gen2 && h.Gen1 != 0
}
