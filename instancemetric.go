package mmv

import (
	"fmt"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/internal/options"
	"github.com/pcpkit/mmv/internal/strpool"
	"github.com/pcpkit/mmv/units"
)

// InstanceMetric is a metric carrying one value per instance of an
// instance domain. All values share the metric's type, unit and
// semantics.
type InstanceMetric[T ValueType] struct {
	d    *metricDesc
	vals map[string]T
}

// NewInstanceMetric creates an instance metric over indom. Every
// instance starts at initial; stage different per-instance values with
// Set before export.
func NewInstanceMetric[T ValueType](indom *Indom, name string, initial T, sem Semantics, unit units.Unit, shorthelp, longhelp string, opts ...MetricOption) (*InstanceMetric[T], error) {
	if indom == nil || len(indom.instances) == 0 {
		return nil, fmt.Errorf("%w: instance metric needs a non-empty domain", errs.ErrInvalidDomain)
	}

	d, err := newDesc(name, typeCodeOf[T](), sem, unit, shorthelp, longhelp)
	if err != nil {
		return nil, err
	}
	d.indom = indom

	if s, ok := any(initial).(string); ok {
		if err := strpool.Validate(s); err != nil {
			return nil, err
		}
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	im := &InstanceMetric[T]{
		d:    d,
		vals: make(map[string]T, len(indom.instances)),
	}
	for _, in := range indom.instances {
		im.vals[in.Name] = initial
	}

	d.numericInit = func(instance string) uint64 { return encodeWord(im.vals[instance]) }
	d.stringInit = func(instance string) string { s, _ := any(im.vals[instance]).(string); return s }

	return im, nil
}

func (im *InstanceMetric[T]) desc() *metricDesc { return im.d }

// Name returns the metric name.
func (im *InstanceMetric[T]) Name() string { return im.d.name }

// Item returns the metric's item id.
func (im *InstanceMetric[T]) Item() uint32 { return im.d.item }

// Indom returns the metric's instance domain.
func (im *InstanceMetric[T]) Indom() *Indom { return im.d.indom }

// HasInstance reports whether instance is part of the metric.
func (im *InstanceMetric[T]) HasInstance(instance string) bool {
	return im.d.indom.HasInstance(instance)
}

// Val returns the current value of instance.
func (im *InstanceMetric[T]) Val(instance string) (T, error) {
	v, ok := im.vals[instance]
	if !ok {
		return v, fmt.Errorf("%w: %q", errs.ErrUnknownInstance, instance)
	}

	return v, nil
}

// Set updates the value of instance. After export the new value is
// immediately visible to readers of the mapped file.
func (im *InstanceMetric[T]) Set(instance string, v T) error {
	if _, ok := im.vals[instance]; !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownInstance, instance)
	}

	if s := im.d.slots[instance]; s != nil {
		if err := s.set(v); err != nil {
			return err
		}
	}
	im.vals[instance] = v

	return nil
}
