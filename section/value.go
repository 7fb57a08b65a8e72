package section

import (
	"fmt"

	"github.com/pcpkit/mmv/errs"
)

// Value is a 32-byte value record, the only record kind mutated after
// export.
//
// For fixed-width metrics, Value holds the zero-extended 8-byte value
// and Extra is zero. For string metrics, Value holds the file offset of
// the 256-byte string region currently published and Extra the offset
// of the shadow region the next update will write into.
//
// InstanceOffset is zero for singleton metrics.
type Value struct {
	Value          uint64 // byte offset 0-7
	Extra          uint64 // byte offset 8-15
	MetricOffset   uint64 // byte offset 16-23
	InstanceOffset uint64 // byte offset 24-31
}

// Bytes serialises the record.
func (v *Value) Bytes() []byte {
	b := make([]byte, ValueSize)

	engine.PutUint64(b[0:8], v.Value)
	engine.PutUint64(b[8:16], v.Extra)
	engine.PutUint64(b[16:24], v.MetricOffset)
	engine.PutUint64(b[24:32], v.InstanceOffset)

	return b
}

// Parse decodes the record from data, which must be exactly ValueSize
// bytes.
func (v *Value) Parse(data []byte) error {
	if len(data) != ValueSize {
		return fmt.Errorf("%w: value needs %d bytes, got %d", errs.ErrInvalidRecordSize, ValueSize, len(data))
	}

	v.Value = engine.Uint64(data[0:8])
	v.Extra = engine.Uint64(data[8:16])
	v.MetricOffset = engine.Uint64(data[16:24])
	v.InstanceOffset = engine.Uint64(data[24:32])

	return nil
}
