package section

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/pcpkit/mmv/errs"
)

// String is a 256-byte string record: a NUL-terminated UTF-8 payload
// with a zero-filled tail. Both metadata strings (help texts, shared
// and deduplicated) and string-value regions (owned per value slot,
// never shared) use this shape.
type String struct {
	Value string
}

// Bytes serialises the record. Payloads longer than StringMaxLen are
// rejected during descriptor construction, so Bytes truncates silently
// rather than failing.
func (s *String) Bytes() []byte {
	b := make([]byte, StringSize)
	PutString(b, s.Value)

	return b
}

// Parse decodes the record from data, which must be exactly StringSize
// bytes.
func (s *String) Parse(data []byte) error {
	if len(data) != StringSize {
		return fmt.Errorf("%w: string needs %d bytes, got %d", errs.ErrInvalidRecordSize, StringSize, len(data))
	}

	end := bytes.IndexByte(data, 0)
	if end < 0 {
		return fmt.Errorf("%w: string record not NUL-terminated", errs.ErrInvalidRecordSize)
	}

	payload := data[:end]
	if !utf8.Valid(payload) {
		return fmt.Errorf("%w: string record not valid UTF-8", errs.ErrInvalidRecordSize)
	}
	s.Value = string(payload)

	return nil
}

// PutString writes a NUL-terminated payload into a StringSize-byte
// region, zeroing the tail. It is used both at serialisation time and
// by the live string write path, which must clear stale bytes from the
// region it is about to publish.
func PutString(dst []byte, payload string) {
	n := copy(dst[:StringSize-1], payload)
	for i := n; i < StringSize; i++ {
		dst[i] = 0
	}
}
