package mmv

import "fmt"

// GaugeVector tracks one floating point value per instance.
//
// It wraps an InstanceMetric[float64] with instant semantics and a
// count^1 unit over an instance domain built from the given names.
type GaugeVector struct {
	im    *InstanceMetric[float64]
	indom *Indom
}

// NewGaugeVector creates a gauge vector with the given instances, all
// starting at zero.
func NewGaugeVector(name string, instances []string, shorthelp, longhelp string, opts ...MetricOption) (*GaugeVector, error) {
	indomHelp := fmt.Sprintf("Instance domain for gauge vector %q", name)
	indom, err := NewIndom(instances, indomHelp, indomHelp)
	if err != nil {
		return nil, err
	}

	im, err := NewInstanceMetric(indom, name, 0.0, SemInstant, CountUnit(), shorthelp, longhelp, opts...)
	if err != nil {
		return nil, err
	}

	return &GaugeVector{im: im, indom: indom}, nil
}

func (gv *GaugeVector) desc() *metricDesc { return gv.im.desc() }

// Indom returns the internally created instance domain.
func (gv *GaugeVector) Indom() *Indom { return gv.indom }

// Val returns the current value of instance.
func (gv *GaugeVector) Val(instance string) (float64, error) {
	return gv.im.Val(instance)
}

// Set replaces the value of instance.
func (gv *GaugeVector) Set(instance string, v float64) error {
	return gv.im.Set(instance, v)
}

// SetAll replaces the value of every instance.
func (gv *GaugeVector) SetAll(v float64) error {
	for _, inst := range gv.indom.instances {
		if err := gv.im.Set(inst.Name, v); err != nil {
			return err
		}
	}

	return nil
}

// Inc raises the value of instance by delta.
func (gv *GaugeVector) Inc(instance string, delta float64) error {
	v, err := gv.im.Val(instance)
	if err != nil {
		return err
	}

	return gv.im.Set(instance, v+delta)
}

// Dec lowers the value of instance by delta.
func (gv *GaugeVector) Dec(instance string, delta float64) error {
	return gv.Inc(instance, -delta)
}
