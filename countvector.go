package mmv

import (
	"fmt"
	"sort"

	"github.com/pcpkit/mmv/errs"
)

// CountVector tracks one strictly increasing integer count per
// instance.
//
// It wraps an InstanceMetric[uint64] with counter semantics and a
// count^1 unit over an instance domain built from the given names.
type CountVector struct {
	im       *InstanceMetric[uint64]
	indom    *Indom
	initVals map[string]uint64
}

// NewCountVector creates a count vector with the given instances, all
// starting at initial.
func NewCountVector(name string, initial uint64, instances []string, shorthelp, longhelp string, opts ...MetricOption) (*CountVector, error) {
	values := make(map[string]uint64, len(instances))
	for _, inst := range instances {
		values[inst] = initial
	}

	return newCountVector(name, instances, values, shorthelp, longhelp, opts)
}

// NewCountVectorWithValues creates a count vector from per-instance
// initial values. Instances are ordered by name.
func NewCountVectorWithValues(name string, values map[string]uint64, shorthelp, longhelp string, opts ...MetricOption) (*CountVector, error) {
	instances := make([]string, 0, len(values))
	for inst := range values {
		instances = append(instances, inst)
	}
	sort.Strings(instances)

	return newCountVector(name, instances, values, shorthelp, longhelp, opts)
}

func newCountVector(name string, instances []string, values map[string]uint64, shorthelp, longhelp string, opts []MetricOption) (*CountVector, error) {
	indomHelp := fmt.Sprintf("Instance domain for count vector %q", name)
	indom, err := NewIndom(instances, indomHelp, indomHelp)
	if err != nil {
		return nil, err
	}

	im, err := NewInstanceMetric(indom, name, uint64(0), SemCounter, CountUnit(), shorthelp, longhelp, opts...)
	if err != nil {
		return nil, err
	}

	initVals := make(map[string]uint64, len(values))
	for inst, v := range values {
		if err := im.Set(inst, v); err != nil {
			return nil, err
		}
		initVals[inst] = v
	}

	return &CountVector{im: im, indom: indom, initVals: initVals}, nil
}

func (cv *CountVector) desc() *metricDesc { return cv.im.desc() }

// Indom returns the internally created instance domain.
func (cv *CountVector) Indom() *Indom { return cv.indom }

// Val returns the current count of instance.
func (cv *CountVector) Val(instance string) (uint64, error) {
	return cv.im.Val(instance)
}

// Inc increments the count of instance by delta.
func (cv *CountVector) Inc(instance string, delta uint64) error {
	v, err := cv.im.Val(instance)
	if err != nil {
		return err
	}

	return cv.im.Set(instance, v+delta)
}

// Up increments the count of instance by one.
func (cv *CountVector) Up(instance string) error {
	return cv.Inc(instance, 1)
}

// IncAll increments every instance by delta.
func (cv *CountVector) IncAll(delta uint64) error {
	for _, inst := range cv.indom.instances {
		if err := cv.Inc(inst.Name, delta); err != nil {
			return err
		}
	}

	return nil
}

// UpAll increments every instance by one.
func (cv *CountVector) UpAll() error {
	return cv.IncAll(1)
}

// Reset sets the count of instance back to its initial value.
func (cv *CountVector) Reset(instance string) error {
	v, ok := cv.initVals[instance]
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownInstance, instance)
	}

	return cv.im.Set(instance, v)
}

// ResetAll sets every instance back to its initial value.
func (cv *CountVector) ResetAll() error {
	for _, inst := range cv.indom.instances {
		if err := cv.Reset(inst.Name); err != nil {
			return err
		}
	}

	return nil
}
