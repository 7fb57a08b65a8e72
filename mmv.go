// Package mmv exports live application metrics through a memory-mapped
// file in the PCP Memory Mapped Values (MMV) v1 format.
//
// An instrumented process declares metrics up front, hands them to a
// Client, and exports once. Export computes the complete binary layout,
// commits it to $PCP_TMP_DIR/mmv/<name> atomically, and maps the file
// into the process. From then on a fixed-width value update is a single
// 8-byte store into the mapping, and a string update fills the idle
// 256-byte region of its pair and swings the value pointer: no locks
// and no syscalls on either path. A
// monitoring agent maps the same file read-only and observes updates
// directly.
//
// # Basic Usage
//
//	metric, _ := mmv.NewMetric("simple.counter", int32(42),
//	    mmv.SemCounter, mmv.CountUnit(),
//	    "A Simple Metric", "A Simple Metric with a longer story")
//
//	client, _ := mmv.NewClient("myapp")
//	if err := client.Export(metric); err != nil {
//	    // no file is visible on failure
//	}
//	defer client.Close()
//
//	metric.Set(43)
//
// Instance metrics carry one value per member of an instance domain:
//
//	products, _ := mmv.NewIndom([]string{"Anvils", "Rockets"}, "Products", "")
//	count, _ := mmv.NewInstanceMetric(products, "products.count", uint64(0),
//	    mmv.SemCounter, mmv.CountUnit(), "Products built", "")
//	client.Export(count)
//	count.Set("Rockets", 7)
//
// Structure is frozen at export: metrics, domains, instances and help
// texts cannot be added afterwards. Only values change.
//
// Counter, Gauge, Timer, CountVector, GaugeVector and Histogram wrap
// the common metric shapes; use them instead of raw metrics where they
// fit.
package mmv

import (
	"github.com/pcpkit/mmv/section"
	"github.com/pcpkit/mmv/units"
)

// Semantics is the interpretation of a metric's value trajectory.
type Semantics = section.Semantics

const (
	// SemCounter marks a monotonically increasing value.
	SemCounter = section.SemCounter
	// SemInstant marks a point-in-time value.
	SemInstant = section.SemInstant
	// SemDiscrete marks a categorical or rarely changing value.
	SemDiscrete = section.SemDiscrete
)

// Flag is the header feature-flag word.
type Flag = section.Flag

const (
	// FlagNoPrefix asks the agent not to prefix metric names with the
	// file name.
	FlagNoPrefix = section.FlagNoPrefix
	// FlagProcess marks the process id field as meaningful. Set by
	// default.
	FlagProcess = section.FlagProcess
	// FlagSentinel allows "no value available" sentinel values.
	FlagSentinel = section.FlagSentinel
)

// CountUnit returns the unit counting events: count dimension 1 at
// scale one. It is the unit of Counter, CountVector and Gauge.
func CountUnit() units.Unit {
	u, _ := units.New().Count(units.One, 1)
	return u
}
