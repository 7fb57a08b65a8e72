package section

import (
	"fmt"

	"github.com/pcpkit/mmv/errs"
)

// Indom is a 32-byte instance domain record. InstancesOffset points at
// the first of InstanceCount contiguous instance records. Help offsets
// are zero when the domain carries no help text.
type Indom struct {
	ID              uint32 // byte offset 0-3
	InstanceCount   uint32 // byte offset 4-7
	InstancesOffset uint64 // byte offset 8-15
	ShortHelpOffset uint64 // byte offset 16-23
	LongHelpOffset  uint64 // byte offset 24-31
}

// Bytes serialises the record.
func (d *Indom) Bytes() []byte {
	b := make([]byte, IndomSize)

	engine.PutUint32(b[0:4], d.ID)
	engine.PutUint32(b[4:8], d.InstanceCount)
	engine.PutUint64(b[8:16], d.InstancesOffset)
	engine.PutUint64(b[16:24], d.ShortHelpOffset)
	engine.PutUint64(b[24:32], d.LongHelpOffset)

	return b
}

// Parse decodes the record from data, which must be exactly IndomSize
// bytes.
func (d *Indom) Parse(data []byte) error {
	if len(data) != IndomSize {
		return fmt.Errorf("%w: indom needs %d bytes, got %d", errs.ErrInvalidRecordSize, IndomSize, len(data))
	}

	d.ID = engine.Uint32(data[0:4])
	d.InstanceCount = engine.Uint32(data[4:8])
	d.InstancesOffset = engine.Uint64(data[8:16])
	d.ShortHelpOffset = engine.Uint64(data[16:24])
	d.LongHelpOffset = engine.Uint64(data[24:32])

	return nil
}
