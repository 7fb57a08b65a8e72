package mmv

// Counter is a strictly increasing integer metric, moving in possibly
// varying increments.
//
// It wraps a Metric[uint64] with counter semantics and a count^1 unit.
type Counter struct {
	m       *Metric[uint64]
	initVal uint64
}

// NewCounter creates a counter starting at initial.
func NewCounter(name string, initial uint64, shorthelp, longhelp string, opts ...MetricOption) (*Counter, error) {
	m, err := NewMetric(name, initial, SemCounter, CountUnit(), shorthelp, longhelp, opts...)
	if err != nil {
		return nil, err
	}

	return &Counter{m: m, initVal: initial}, nil
}

func (c *Counter) desc() *metricDesc { return c.m.desc() }

// Val returns the current count.
func (c *Counter) Val() uint64 {
	return c.m.Val()
}

// Inc increments the counter by delta.
func (c *Counter) Inc(delta uint64) error {
	return c.m.Set(c.m.Val() + delta)
}

// Up increments the counter by one.
func (c *Counter) Up() error {
	return c.Inc(1)
}

// Reset sets the counter back to its initial value.
func (c *Counter) Reset() error {
	return c.m.Set(c.initVal)
}
