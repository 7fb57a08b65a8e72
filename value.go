package mmv

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/internal/strpool"
	"github.com/pcpkit/mmv/section"
)

// slot is the live handle to one (metric, instance) value in the
// mapping. Slots are created at export and frozen in structure; only
// the mapped bytes they point at change. All fields are read-only
// after export, so slots are safe to use from multiple goroutines as
// long as writes to the same slot are serialised by the caller.
type slot struct {
	typ     section.Type
	off     uint64 // offset of the value record
	primary uint64 // string region offsets, zero for fixed-width types
	shadow  uint64
	data    []byte
	frozen  *atomic.Bool
}

// wordPtr returns an atomically addressable pointer to the 8-byte word
// at off. Value records are 8-byte aligned within the page-aligned
// mapping, so the access is always aligned.
func wordPtr(data []byte, off uint64) *uint64 {
	return (*uint64)(unsafe.Pointer(&data[off]))
}

// set writes v into the slot, enforcing the type tag at call time.
func (s *slot) set(v any) error {
	if s.frozen.Load() {
		return fmt.Errorf("%w: client closed", errs.ErrSlotFrozen)
	}

	switch x := v.(type) {
	case int32:
		return s.setWord(section.TypeInt32, uint64(uint32(x)))
	case uint32:
		return s.setWord(section.TypeUint32, uint64(x))
	case int64:
		return s.setWord(section.TypeInt64, uint64(x))
	case uint64:
		return s.setWord(section.TypeUint64, x)
	case float32:
		return s.setWord(section.TypeFloat32, uint64(math.Float32bits(x)))
	case float64:
		return s.setWord(section.TypeFloat64, math.Float64bits(x))
	case string:
		return s.setString(x)
	default:
		return fmt.Errorf("%w: unsupported value type %T", errs.ErrTypeMismatch, v)
	}
}

func (s *slot) setWord(typ section.Type, w uint64) error {
	if s.typ != typ {
		return fmt.Errorf("%w: slot holds %s, write of %s", errs.ErrTypeMismatch, s.typ, typ)
	}

	atomic.StoreUint64(wordPtr(s.data, s.off+section.ValueWordOffset), w)

	return nil
}

// setString publishes a new string payload without ever exposing a
// torn read: the idle region of the primary/shadow pair is filled
// first, then the value-slot pointer is swung over with a release
// store. A reader dereferencing the pointer sees either the old or the
// new payload, complete.
func (s *slot) setString(str string) error {
	if s.typ != section.TypeString {
		return fmt.Errorf("%w: slot holds %s, write of String", errs.ErrTypeMismatch, s.typ)
	}
	if err := strpool.Validate(str); err != nil {
		return err
	}

	cur := atomic.LoadUint64(wordPtr(s.data, s.off+section.ValueWordOffset))
	idle := s.primary
	if cur == s.primary {
		idle = s.shadow
	}

	section.PutString(s.data[idle:idle+section.StringSize], str)

	// The release store orders the payload before the pointer swing.
	atomic.StoreUint64(wordPtr(s.data, s.off+section.ValueWordOffset), idle)
	// The extra word tracks the now-idle region for the next update.
	atomic.StoreUint64(wordPtr(s.data, s.off+section.ExtraWordOffset), cur)

	return nil
}

// get reads the slot back from the mapping, decoded to the slot's
// declared type.
func (s *slot) get() (any, error) {
	if s.frozen.Load() {
		return nil, fmt.Errorf("%w: client closed", errs.ErrSlotFrozen)
	}

	w := atomic.LoadUint64(wordPtr(s.data, s.off+section.ValueWordOffset))

	switch s.typ {
	case section.TypeInt32:
		return int32(uint32(w)), nil
	case section.TypeUint32:
		return uint32(w), nil
	case section.TypeInt64:
		return int64(w), nil
	case section.TypeUint64:
		return w, nil
	case section.TypeFloat32:
		return math.Float32frombits(uint32(w)), nil
	case section.TypeFloat64:
		return math.Float64frombits(w), nil
	case section.TypeString:
		var rec section.String
		if err := rec.Parse(s.data[w : w+section.StringSize]); err != nil {
			return nil, err
		}
		return rec.Value, nil
	default:
		return nil, fmt.Errorf("%w: slot has unknown type %d", errs.ErrTypeMismatch, uint32(s.typ))
	}
}
