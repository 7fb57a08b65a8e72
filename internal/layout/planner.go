// Package layout computes the byte layout of an MMV file.
//
// The planner consumes the complete descriptor set and assigns every
// record its final offset before a single byte is written; nothing is
// relocated afterwards. Sections land in a fixed order:
//
//	header | TOC | indoms | instances | metrics | values | strings
//
// with instances grouped by indom, values grouped by metric, and the
// strings section holding all metadata strings followed by the
// primary+shadow region pairs of string-typed values. Every record
// size is a multiple of 8, so natural packing keeps all fixed-width
// records 8-byte aligned; string regions sit on the 256-byte grid of
// the strings section.
package layout

import (
	"fmt"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/internal/strpool"
	"github.com/pcpkit/mmv/section"
)

// DefaultSizeCap is the soft cap on the planned file size.
const DefaultSizeCap = 16 << 20

// Instance describes one member of an instance domain.
type Instance struct {
	ID   uint32
	Name string
}

// Indom describes an instance domain. Help fields are pool metadata
// references, -1 when the domain has no help text.
type Indom struct {
	ID        uint32
	Instances []Instance
	ShortHelp int
	LongHelp  int
}

// Metric describes one metric and its initial values.
//
// Indom is an index into the input's indom list, or -1 for a singleton
// metric. For fixed-width metrics InitNumeric holds the zero-extended
// initial value of every slot (one entry for a singleton, one per
// instance otherwise) and InitPairs is nil; for string metrics
// InitPairs holds the pool pair reference of every slot and
// InitNumeric is nil.
type Metric struct {
	Name        string
	Item        uint32
	Type        section.Type
	Sem         section.Semantics
	Unit        uint32
	Indom       int
	ShortHelp   int
	LongHelp    int
	InitNumeric []uint64
	InitPairs   []int
}

// Input is the complete descriptor set handed to the planner.
type Input struct {
	Indoms  []Indom
	Metrics []Metric
	Pool    *strpool.Pool
}

// Plan holds the assigned offsets of every record.
type Plan struct {
	Size int64
	TOC  []section.TOCEntry

	IndomOffsets    []uint64
	InstanceOffsets [][]uint64 // per indom, per instance
	MetricOffsets   []uint64
	ValueOffsets    [][]uint64 // per metric, per value slot

	StringsBase   uint64
	metadataCount int
}

// slotCount returns the number of value slots a metric owns.
func slotCount(in *Input, m *Metric) int {
	if m.Indom < 0 {
		return 1
	}

	return len(in.Indoms[m.Indom].Instances)
}

// Compute assigns offsets to every record of in and returns the plan.
// sizeCap bounds the total file size; zero or negative means
// DefaultSizeCap.
func Compute(in *Input, sizeCap int64) (*Plan, error) {
	if sizeCap <= 0 {
		sizeCap = DefaultSizeCap
	}

	nIndoms := len(in.Indoms)
	nInstances := 0
	for i := range in.Indoms {
		nInstances += len(in.Indoms[i].Instances)
	}

	nMetrics := len(in.Metrics)
	nValues := 0
	for i := range in.Metrics {
		nValues += slotCount(in, &in.Metrics[i])
	}

	nStrings := 0
	if in.Pool != nil {
		nStrings = in.Pool.RecordCount()
	}

	p := &Plan{}

	// Section bases follow from the counts alone. The TOC carries one
	// entry per non-empty section, so its length is known up front.
	counts := []struct {
		kind  section.TOCKind
		count int
	}{
		{section.KindIndoms, nIndoms},
		{section.KindInstances, nInstances},
		{section.KindMetrics, nMetrics},
		{section.KindValues, nValues},
		{section.KindStrings, nStrings},
	}

	tocCount := 0
	for _, c := range counts {
		if c.count > 0 {
			tocCount++
		}
	}

	off := uint64(section.HeaderSize + section.TOCEntrySize*tocCount)

	indomsBase := off
	off += uint64(section.IndomSize * nIndoms)

	instancesBase := off
	off += uint64(section.InstanceSize * nInstances)

	metricsBase := off
	off += uint64(section.MetricSize * nMetrics)

	valuesBase := off
	off += uint64(section.ValueSize * nValues)

	p.StringsBase = off
	off += uint64(section.StringSize * nStrings)

	p.Size = int64(off)
	if p.Size > sizeCap {
		return nil, fmt.Errorf("%w: planned size %d exceeds cap %d", errs.ErrLayoutTooLarge, p.Size, sizeCap)
	}

	bases := map[section.TOCKind]uint64{
		section.KindIndoms:    indomsBase,
		section.KindInstances: instancesBase,
		section.KindMetrics:   metricsBase,
		section.KindValues:    valuesBase,
		section.KindStrings:   p.StringsBase,
	}
	for _, c := range counts {
		if c.count > 0 {
			p.TOC = append(p.TOC, section.TOCEntry{
				Kind:   c.kind,
				Count:  uint32(c.count),
				Offset: bases[c.kind],
			})
		}
	}

	// Second pass: per-record offsets.
	p.IndomOffsets = make([]uint64, nIndoms)
	p.InstanceOffsets = make([][]uint64, nIndoms)
	instOff := instancesBase
	for i := range in.Indoms {
		p.IndomOffsets[i] = indomsBase + uint64(section.IndomSize*i)
		offs := make([]uint64, len(in.Indoms[i].Instances))
		for j := range offs {
			offs[j] = instOff
			instOff += section.InstanceSize
		}
		p.InstanceOffsets[i] = offs
	}

	p.MetricOffsets = make([]uint64, nMetrics)
	p.ValueOffsets = make([][]uint64, nMetrics)
	valOff := valuesBase
	for i := range in.Metrics {
		p.MetricOffsets[i] = metricsBase + uint64(section.MetricSize*i)
		offs := make([]uint64, slotCount(in, &in.Metrics[i]))
		for j := range offs {
			offs[j] = valOff
			valOff += section.ValueSize
		}
		p.ValueOffsets[i] = offs
	}

	if in.Pool != nil {
		p.metadataCount = in.Pool.MetadataCount()
	}

	return p, nil
}

// MetadataOffset returns the file offset of metadata string ref, or 0
// for ref < 0 (absent help text).
func (p *Plan) MetadataOffset(ref int) uint64 {
	if ref < 0 {
		return 0
	}

	return p.StringsBase + uint64(section.StringSize*ref)
}

// PairPrimaryOffset returns the file offset of the primary region of
// string-value pair ref.
func (p *Plan) PairPrimaryOffset(ref int) uint64 {
	return p.StringsBase + uint64(section.StringSize*(p.metadataCount+2*ref))
}

// PairShadowOffset returns the file offset of the shadow region of
// string-value pair ref.
func (p *Plan) PairShadowOffset(ref int) uint64 {
	return p.PairPrimaryOffset(ref) + section.StringSize
}
