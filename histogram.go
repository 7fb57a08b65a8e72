package mmv

import (
	"fmt"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"

	"github.com/pcpkit/mmv/units"
)

// The statistics a histogram exports, as instances of its domain.
const (
	histMax   = "max"
	histMin   = "min"
	histMean  = "mean"
	histStdev = "stdev"
)

var histInstances = []string{histMax, histMin, histMean, histStdev}

// Histogram records value samples and exports their max, min, mean and
// standard deviation.
//
// It wraps an InstanceMetric[float64] with instant semantics over the
// fixed domain {max, min, mean, stdev}, backed by an HDR histogram
// with the given value bounds and precision.
type Histogram struct {
	im    *InstanceMetric[float64]
	indom *Indom
	hist  *hdrhistogram.Histogram
}

// NewHistogram creates a histogram tracking values in [low, high] with
// sigfigs significant figures. low must be at least 1 and sigfigs
// between 1 and 5.
func NewHistogram(name string, low, high int64, sigfigs int, unit units.Unit, shorthelp, longhelp string, opts ...MetricOption) (*Histogram, error) {
	if low < 1 || high <= low {
		return nil, fmt.Errorf("histogram bounds [%d, %d] invalid: need 1 <= low < high", low, high)
	}
	if sigfigs < 1 || sigfigs > 5 {
		return nil, fmt.Errorf("histogram significant figures %d outside [1, 5]", sigfigs)
	}

	indomHelp := fmt.Sprintf("Instance domain for histogram %q", name)
	indom, err := NewIndom(histInstances, indomHelp, indomHelp)
	if err != nil {
		return nil, err
	}

	im, err := NewInstanceMetric(indom, name, 0.0, SemInstant, unit, shorthelp, longhelp, opts...)
	if err != nil {
		return nil, err
	}

	return &Histogram{
		im:    im,
		indom: indom,
		hist:  hdrhistogram.New(low, high, sigfigs),
	}, nil
}

func (h *Histogram) desc() *metricDesc { return h.im.desc() }

func (h *Histogram) updateInstances() error {
	if err := h.im.Set(histMin, float64(h.hist.Min())); err != nil {
		return err
	}
	if err := h.im.Set(histMax, float64(h.hist.Max())); err != nil {
		return err
	}
	if err := h.im.Set(histMean, h.hist.Mean()); err != nil {
		return err
	}

	return h.im.Set(histStdev, h.hist.StdDev())
}

// Record adds one sample and refreshes the exported statistics.
func (h *Histogram) Record(v int64) error {
	if err := h.hist.RecordValue(v); err != nil {
		return err
	}

	return h.updateInstances()
}

// RecordN adds n samples of the same value and refreshes the exported
// statistics.
func (h *Histogram) RecordN(v, n int64) error {
	if err := h.hist.RecordValues(v, n); err != nil {
		return err
	}

	return h.updateInstances()
}

// Reset discards all samples and zeroes the exported statistics.
func (h *Histogram) Reset() error {
	h.hist.Reset()

	return h.updateInstances()
}

// Indom returns the internally created instance domain.
func (h *Histogram) Indom() *Indom { return h.indom }

// Low returns the lowest trackable value.
func (h *Histogram) Low() int64 { return h.hist.LowestTrackableValue() }

// High returns the highest trackable value.
func (h *Histogram) High() int64 { return h.hist.HighestTrackableValue() }

// Count returns the number of samples recorded.
func (h *Histogram) Count() int64 { return h.hist.TotalCount() }

// Min returns the lowest recorded value, zero before any sample.
func (h *Histogram) Min() int64 { return h.hist.Min() }

// Max returns the highest recorded value.
func (h *Histogram) Max() int64 { return h.hist.Max() }

// Mean returns the mean of recorded values.
func (h *Histogram) Mean() float64 { return h.hist.Mean() }

// StdDev returns the standard deviation of recorded values.
func (h *Histogram) StdDev() float64 { return h.hist.StdDev() }

// ValueAtPercentile returns the recorded value at the given
// percentile.
func (h *Histogram) ValueAtPercentile(p float64) int64 {
	return h.hist.ValueAtQuantile(p)
}
