package section

import (
	"fmt"

	"github.com/pcpkit/mmv/errs"
)

// TOCEntry is one 16-byte table-of-contents record. Entries follow the
// header directly, one per non-empty section, in section order.
type TOCEntry struct {
	Kind   TOCKind // byte offset 0-3
	Count  uint32  // byte offset 4-7
	Offset uint64  // byte offset 8-15
}

// Bytes serialises the entry.
func (e *TOCEntry) Bytes() []byte {
	b := make([]byte, TOCEntrySize)

	engine.PutUint32(b[0:4], uint32(e.Kind))
	engine.PutUint32(b[4:8], e.Count)
	engine.PutUint64(b[8:16], e.Offset)

	return b
}

// Parse decodes the entry from data, which must be exactly
// TOCEntrySize bytes.
func (e *TOCEntry) Parse(data []byte) error {
	if len(data) != TOCEntrySize {
		return fmt.Errorf("%w: TOC entry needs %d bytes, got %d", errs.ErrInvalidRecordSize, TOCEntrySize, len(data))
	}

	e.Kind = TOCKind(engine.Uint32(data[0:4]))
	if e.Kind < KindIndoms || e.Kind > KindStrings {
		return fmt.Errorf("%w: unknown section kind %d", errs.ErrInvalidTOC, uint32(e.Kind))
	}

	e.Count = engine.Uint32(data[4:8])

	e.Offset = engine.Uint64(data[8:16])
	if e.Offset == 0 {
		return fmt.Errorf("%w: zero section offset", errs.ErrInvalidTOC)
	}

	return nil
}
