package mmv

// Gauge is a floating point metric that moves both ways.
//
// It wraps a Metric[float64] with instant semantics and a count^1
// unit.
type Gauge struct {
	m *Metric[float64]
}

// NewGauge creates a gauge starting at zero.
func NewGauge(name string, shorthelp, longhelp string, opts ...MetricOption) (*Gauge, error) {
	m, err := NewMetric(name, 0.0, SemInstant, CountUnit(), shorthelp, longhelp, opts...)
	if err != nil {
		return nil, err
	}

	return &Gauge{m: m}, nil
}

func (g *Gauge) desc() *metricDesc { return g.m.desc() }

// Val returns the current value.
func (g *Gauge) Val() float64 {
	return g.m.Val()
}

// Set replaces the current value.
func (g *Gauge) Set(v float64) error {
	return g.m.Set(v)
}

// Inc raises the gauge by delta.
func (g *Gauge) Inc(delta float64) error {
	return g.m.Set(g.m.Val() + delta)
}

// Dec lowers the gauge by delta.
func (g *Gauge) Dec(delta float64) error {
	return g.m.Set(g.m.Val() - delta)
}
