package mmv

import (
	"errors"
	"time"

	"github.com/pcpkit/mmv/units"
)

// Timer errors.
var (
	ErrTimerAlreadyStarted = errors.New("timer already started")
	ErrTimerNotStarted     = errors.New("timer not started")
)

// Timer accumulates elapsed time between Start/Stop pairs.
//
// It wraps a Metric[int64] with instant semantics and a time^1 unit at
// the chosen scale.
type Timer struct {
	m     *Metric[int64]
	scale units.Time
	start time.Time
}

// NewTimer creates a timer reporting at the given time scale.
func NewTimer(name string, scale units.Time, shorthelp, longhelp string, opts ...MetricOption) (*Timer, error) {
	unit, err := units.New().Time(scale, 1)
	if err != nil {
		return nil, err
	}

	m, err := NewMetric(name, int64(0), SemInstant, unit, shorthelp, longhelp, opts...)
	if err != nil {
		return nil, err
	}

	return &Timer{m: m, scale: scale}, nil
}

func (t *Timer) desc() *metricDesc { return t.m.desc() }

// Start begins timing. Starting a running timer is an error.
func (t *Timer) Start() error {
	if !t.start.IsZero() {
		return ErrTimerAlreadyStarted
	}
	t.start = time.Now()

	return nil
}

// Stop ends timing, adds the elapsed interval to the metric, and
// returns the interval in the timer's scale. Stopping a timer that was
// never started is an error. If less than one unit of the scale has
// passed the interval reported is zero and the timer keeps running, so
// the time is not lost.
func (t *Timer) Stop() (int64, error) {
	if t.start.IsZero() {
		return 0, ErrTimerNotStarted
	}

	elapsed := t.inScale(time.Since(t.start))
	if err := t.m.Set(t.m.Val() + elapsed); err != nil {
		return 0, err
	}

	if elapsed != 0 {
		t.start = time.Time{}
	}

	return elapsed, nil
}

// Elapsed returns the cumulative elapsed time over all Start/Stop
// pairs, in the timer's scale.
func (t *Timer) Elapsed() int64 {
	return t.m.Val()
}

func (t *Timer) inScale(d time.Duration) int64 {
	switch t.scale {
	case units.NSec:
		return d.Nanoseconds()
	case units.USec:
		return d.Microseconds()
	case units.MSec:
		return d.Milliseconds()
	case units.Sec:
		return int64(d.Seconds())
	case units.Min:
		return int64(d.Minutes())
	default:
		return int64(d.Hours())
	}
}
