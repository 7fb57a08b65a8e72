package section

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/pcpkit/mmv/errs"
)

// Instance is an 80-byte instance record. IndomOffset points back at
// the owning instance domain record.
type Instance struct {
	IndomOffset uint64 // byte offset 0-7
	InternalID  uint32 // byte offset 12-15, after 4 pad bytes
	Name        string // byte offset 16-79, NUL-padded
}

// Bytes serialises the record. The name must fit NameMaxLen bytes;
// longer names are rejected during descriptor construction, so Bytes
// truncates silently rather than failing.
func (in *Instance) Bytes() []byte {
	b := make([]byte, InstanceSize)

	engine.PutUint64(b[0:8], in.IndomOffset)
	// bytes 8-11 are pad, left zero
	engine.PutUint32(b[12:16], in.InternalID)
	putName(b[16:16+NameLen], in.Name)

	return b
}

// Parse decodes the record from data, which must be exactly
// InstanceSize bytes.
func (in *Instance) Parse(data []byte) error {
	if len(data) != InstanceSize {
		return fmt.Errorf("%w: instance needs %d bytes, got %d", errs.ErrInvalidRecordSize, InstanceSize, len(data))
	}

	in.IndomOffset = engine.Uint64(data[0:8])

	if pad := engine.Uint32(data[8:12]); pad != 0 {
		return fmt.Errorf("%w: instance pad 0x%x", errs.ErrInvalidPadding, pad)
	}

	in.InternalID = engine.Uint32(data[12:16])

	name, err := cstring(data[16 : 16+NameLen])
	if err != nil {
		return err
	}
	in.Name = name

	return nil
}

// putName copies a NUL-terminated name into a fixed-size field,
// truncating at len(dst)-1 bytes. The tail stays zero.
func putName(dst []byte, name string) {
	n := copy(dst[:len(dst)-1], name)
	dst[n] = 0
}

// cstring extracts a NUL-terminated UTF-8 string from a fixed-size
// field.
func cstring(b []byte) (string, error) {
	end := bytes.IndexByte(b, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: name field not NUL-terminated", errs.ErrInvalidRecordSize)
	}

	s := b[:end]
	if !utf8.Valid(s) {
		return "", fmt.Errorf("%w: name field not valid UTF-8", errs.ErrInvalidRecordSize)
	}

	return string(s), nil
}
