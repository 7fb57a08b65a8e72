package mmv

import (
	"fmt"
	"math"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/internal/hash"
	"github.com/pcpkit/mmv/internal/options"
	"github.com/pcpkit/mmv/internal/strpool"
	"github.com/pcpkit/mmv/section"
	"github.com/pcpkit/mmv/units"
)

// ValueType constrains the Go types a metric value can take. Each maps
// to exactly one MMV type tag.
type ValueType interface {
	int32 | uint32 | int64 | uint64 | float32 | float64 | string
}

// typeCodeOf returns the MMV type tag for T.
func typeCodeOf[T ValueType]() section.Type {
	var zero T
	switch any(zero).(type) {
	case int32:
		return section.TypeInt32
	case uint32:
		return section.TypeUint32
	case int64:
		return section.TypeInt64
	case uint64:
		return section.TypeUint64
	case float32:
		return section.TypeFloat32
	case float64:
		return section.TypeFloat64
	default:
		return section.TypeString
	}
}

// encodeWord returns the zero-extended 8-byte cell for a fixed-width
// value. Narrow types occupy the low bytes; floats are stored by bit
// pattern.
func encodeWord(v any) uint64 {
	switch x := v.(type) {
	case int32:
		return uint64(uint32(x))
	case uint32:
		return uint64(x)
	case int64:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return uint64(math.Float32bits(x))
	case float64:
		return math.Float64bits(x)
	default:
		return 0
	}
}

// metricDesc is the untyped descriptor shared between a metric and the
// client. The typed wrappers own the values; the client fills slots at
// export and the wrappers write through them afterwards.
type metricDesc struct {
	name      string
	item      uint32
	typ       section.Type
	sem       section.Semantics
	unit      units.Unit
	indom     *Indom
	shorthelp string
	longhelp  string

	// initial value providers, keyed by instance name ("" for a
	// singleton metric)
	numericInit func(instance string) uint64
	stringInit  func(instance string) string

	// live slots, nil until export
	slots map[string]*slot
}

// Exportable is anything a Client can export: Metric, InstanceMetric
// and the helper metrics built on them.
type Exportable interface {
	desc() *metricDesc
}

// validName checks a metric name: 1..63 bytes of printable ASCII with
// no spaces.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty metric name", errs.ErrInvalidName)
	}
	if len(name) > section.NameMaxLen {
		return fmt.Errorf("%w: %q longer than %d bytes", errs.ErrInvalidName, name, section.NameMaxLen)
	}
	for i := 0; i < len(name); i++ {
		if name[i] <= ' ' || name[i] > '~' {
			return fmt.Errorf("%w: %q contains byte 0x%02x", errs.ErrInvalidName, name, name[i])
		}
	}

	return nil
}

func newDesc(name string, typ section.Type, sem Semantics, unit units.Unit, shorthelp, longhelp string) (*metricDesc, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if err := strpool.Validate(shorthelp); err != nil {
		return nil, fmt.Errorf("short help text: %w", err)
	}
	if err := strpool.Validate(longhelp); err != nil {
		return nil, fmt.Errorf("long help text: %w", err)
	}

	return &metricDesc{
		name:      name,
		item:      hash.Item(name),
		typ:       typ,
		sem:       sem,
		unit:      unit,
		shorthelp: shorthelp,
		longhelp:  longhelp,
	}, nil
}

// Metric is a singleton metric: one named, typed value.
//
// Before export, Set updates the staged initial value. After export,
// Set additionally stores the value into the mapped file where the
// monitoring agent reads it.
type Metric[T ValueType] struct {
	d   *metricDesc
	val T
}

// NewMetric creates a singleton metric. The value type fixes the MMV
// type tag at compile time. name must be at most 63 bytes of printable
// ASCII; help texts at most 255 bytes each. String-typed initial
// values are limited to 255 bytes.
func NewMetric[T ValueType](name string, initial T, sem Semantics, unit units.Unit, shorthelp, longhelp string, opts ...MetricOption) (*Metric[T], error) {
	d, err := newDesc(name, typeCodeOf[T](), sem, unit, shorthelp, longhelp)
	if err != nil {
		return nil, err
	}

	if s, ok := any(initial).(string); ok {
		if err := strpool.Validate(s); err != nil {
			return nil, err
		}
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	m := &Metric[T]{d: d, val: initial}
	d.numericInit = func(string) uint64 { return encodeWord(m.val) }
	d.stringInit = func(string) string { s, _ := any(m.val).(string); return s }

	return m, nil
}

func (m *Metric[T]) desc() *metricDesc { return m.d }

// Name returns the metric name.
func (m *Metric[T]) Name() string { return m.d.name }

// Item returns the metric's item id.
func (m *Metric[T]) Item() uint32 { return m.d.item }

// Val returns the current value.
func (m *Metric[T]) Val() T { return m.val }

// Set updates the metric's value. After export the new value is
// immediately visible to readers of the mapped file.
func (m *Metric[T]) Set(v T) error {
	if s := m.d.slots[""]; s != nil {
		if err := s.set(v); err != nil {
			return err
		}
	}
	m.val = v

	return nil
}

// MetricOption configures optional metric attributes.
type MetricOption = options.Option[*metricDesc]

// WithItem pins the metric's item id instead of deriving it from the
// name. Item ids occupy 10 bits.
func WithItem(item uint32) MetricOption {
	return options.New(func(d *metricDesc) error {
		if item >= 1<<section.ItemBits {
			return fmt.Errorf("%w: item id %d exceeds %d bits", errs.ErrInvalidName, item, section.ItemBits)
		}
		d.item = item

		return nil
	})
}
