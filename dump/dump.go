// Package dump reads MMV files back into record structures.
//
// The writer side of this module never needs a parser; dump exists for
// the mmvdump tool and for verifying that exported files decode to
// exactly what went in. Records are keyed by their file offset, which
// is how cross-references between records are expressed in the format.
package dump

import (
	"fmt"
	"os"
	"sort"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/section"
)

// TOC is a parsed table-of-contents entry together with its own
// offset in the file.
type TOC struct {
	FileOffset uint64
	section.TOCEntry
}

// MMV is a parsed file: the header, the TOC entries in file order, and
// every record keyed by its offset.
type MMV struct {
	Header section.Header
	TOCs   []TOC

	Indoms    map[uint64]section.Indom
	Instances map[uint64]section.Instance
	Metrics   map[uint64]section.Metric
	Values    map[uint64]section.Value
	Strings   map[uint64]section.String
}

// ReadFile parses the MMV file at path. Archives written by
// WriteArchive are detected by their magic and decompressed first.
func ReadFile(path string) (*MMV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isArchive(data) {
		return parseArchive(data)
	}

	return Parse(data)
}

// Parse decodes a raw MMV image. It rejects unpublished files: the
// generation pair must match and be nonzero, otherwise the writer died
// mid-export and the contents cannot be trusted.
func Parse(data []byte) (*MMV, error) {
	if len(data) < section.HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than a header", errs.ErrInvalidRecordSize, len(data))
	}

	m := &MMV{
		Indoms:    make(map[uint64]section.Indom),
		Instances: make(map[uint64]section.Instance),
		Metrics:   make(map[uint64]section.Metric),
		Values:    make(map[uint64]section.Value),
		Strings:   make(map[uint64]section.String),
	}

	if err := m.Header.Parse(data[:section.HeaderSize]); err != nil {
		return nil, err
	}
	if !m.Header.Published() {
		return nil, fmt.Errorf("%w: generation1=%d generation2=%d", errs.ErrGenerationMismatch, m.Header.Gen1, m.Header.Gen2)
	}
	if m.Header.TOCCount < 0 || m.Header.TOCCount > 5 {
		return nil, fmt.Errorf("%w: %d entries", errs.ErrInvalidTOC, m.Header.TOCCount)
	}

	size := uint64(len(data))
	tocEnd := uint64(section.HeaderSize) + uint64(m.Header.TOCCount)*section.TOCEntrySize
	if tocEnd > size {
		return nil, fmt.Errorf("%w: TOC extends past end of file", errs.ErrInvalidOffset)
	}

	for i := int32(0); i < m.Header.TOCCount; i++ {
		off := uint64(section.HeaderSize) + uint64(i)*section.TOCEntrySize

		var e section.TOCEntry
		if err := e.Parse(data[off : off+section.TOCEntrySize]); err != nil {
			return nil, err
		}
		m.TOCs = append(m.TOCs, TOC{FileOffset: off, TOCEntry: e})

		if err := m.parseSection(data, &e); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *MMV) parseSection(data []byte, e *section.TOCEntry) error {
	var recSize uint64
	switch e.Kind {
	case section.KindIndoms:
		recSize = section.IndomSize
	case section.KindInstances:
		recSize = section.InstanceSize
	case section.KindMetrics:
		recSize = section.MetricSize
	case section.KindValues:
		recSize = section.ValueSize
	case section.KindStrings:
		recSize = section.StringSize
	}

	end := e.Offset + uint64(e.Count)*recSize
	if e.Offset%8 != 0 || end > uint64(len(data)) {
		return fmt.Errorf("%w: %s section at %d (%d entries)", errs.ErrInvalidOffset, e.Kind, e.Offset, e.Count)
	}

	for i := uint64(0); i < uint64(e.Count); i++ {
		off := e.Offset + i*recSize
		rec := data[off : off+recSize]

		switch e.Kind {
		case section.KindIndoms:
			var r section.Indom
			if err := r.Parse(rec); err != nil {
				return err
			}
			m.Indoms[off] = r
		case section.KindInstances:
			var r section.Instance
			if err := r.Parse(rec); err != nil {
				return err
			}
			m.Instances[off] = r
		case section.KindMetrics:
			var r section.Metric
			if err := r.Parse(rec); err != nil {
				return err
			}
			m.Metrics[off] = r
		case section.KindValues:
			var r section.Value
			if err := r.Parse(rec); err != nil {
				return err
			}
			m.Values[off] = r
		case section.KindStrings:
			var r section.String
			if err := r.Parse(rec); err != nil {
				return err
			}
			m.Strings[off] = r
		}
	}

	return nil
}

// TOCFor returns the parsed TOC entry for kind, or nil if the section
// is absent.
func (m *MMV) TOCFor(kind section.TOCKind) *TOC {
	for i := range m.TOCs {
		if m.TOCs[i].Kind == kind {
			return &m.TOCs[i]
		}
	}

	return nil
}

// StringAt resolves a string record offset, returning "" for offset
// zero (absent help text).
func (m *MMV) StringAt(off uint64) (string, bool) {
	if off == 0 {
		return "", true
	}

	s, ok := m.Strings[off]
	return s.Value, ok
}

// MetricByName finds a metric record by name.
func (m *MMV) MetricByName(name string) (uint64, *section.Metric, bool) {
	for off, rec := range m.Metrics {
		if rec.Name == name {
			r := rec
			return off, &r, true
		}
	}

	return 0, nil, false
}

// ValuesOf returns the value records of the metric at metricOff, in
// file order.
func (m *MMV) ValuesOf(metricOff uint64) []section.Value {
	var out []section.Value
	for _, off := range SortedOffsets(m.Values) {
		if m.Values[off].MetricOffset == metricOff {
			out = append(out, m.Values[off])
		}
	}

	return out
}

// SortedOffsets returns the keys of an offset-keyed record map in
// ascending order, for deterministic iteration.
func SortedOffsets[V any](records map[uint64]V) []uint64 {
	offs := make([]uint64, 0, len(records))
	for off := range records {
		offs = append(offs, off)
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })

	return offs
}
