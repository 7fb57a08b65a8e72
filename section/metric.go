package section

import (
	"fmt"
	"unsafe"

	"github.com/pcpkit/mmv/errs"
)

// Metric is a 104-byte metric record. Indom is the owning instance
// domain id, or -1 for a singleton metric. Help offsets are zero when
// the metric carries no help text.
type Metric struct {
	Name            string    // byte offset 0-63, NUL-padded
	Item            uint32    // byte offset 64-67
	Type            Type      // byte offset 68-71
	Sem             Semantics // byte offset 72-75
	Unit            uint32    // byte offset 76-79
	Indom           int32     // byte offset 80-83
	ShortHelpOffset uint64    // byte offset 88-95, after 4 pad bytes
	LongHelpOffset  uint64    // byte offset 96-103
}

// Bytes serialises the record.
func (m *Metric) Bytes() []byte {
	b := make([]byte, MetricSize)

	putName(b[0:NameLen], m.Name)
	engine.PutUint32(b[64:68], m.Item)
	engine.PutUint32(b[68:72], uint32(m.Type))
	engine.PutUint32(b[72:76], uint32(m.Sem))
	engine.PutUint32(b[76:80], m.Unit)
	engine.PutUint32(b[80:84], uint32(m.Indom))
	// bytes 84-87 are pad, left zero
	engine.PutUint64(b[88:96], m.ShortHelpOffset)
	engine.PutUint64(b[96:104], m.LongHelpOffset)

	return b
}

// Parse decodes the record from data, which must be exactly MetricSize
// bytes.
func (m *Metric) Parse(data []byte) error {
	if len(data) != MetricSize {
		return fmt.Errorf("%w: metric needs %d bytes, got %d", errs.ErrInvalidRecordSize, MetricSize, len(data))
	}

	name, err := cstring(data[0:NameLen])
	if err != nil {
		return err
	}
	m.Name = name

	m.Item = engine.Uint32(data[64:68])
	m.Type = Type(engine.Uint32(data[68:72]))
	m.Sem = Semantics(engine.Uint32(data[72:76]))
	m.Unit = engine.Uint32(data[76:80])

	indom := engine.Uint32(data[80:84])
	m.Indom = *(*int32)(unsafe.Pointer(&indom))

	if pad := engine.Uint32(data[84:88]); pad != 0 {
		return fmt.Errorf("%w: metric pad 0x%x", errs.ErrInvalidPadding, pad)
	}

	m.ShortHelpOffset = engine.Uint64(data[88:96])
	m.LongHelpOffset = engine.Uint64(data[96:104])

	return nil
}
