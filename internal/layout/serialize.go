package layout

import "github.com/pcpkit/mmv/section"

// Materialize renders the planned file into a fresh zero-filled
// buffer. The header is written with whatever generation values hdr
// carries; the committer leaves them zero and publishes through the
// mapping after the file is in place.
func (p *Plan) Materialize(in *Input, hdr *section.Header) []byte {
	buf := make([]byte, p.Size)

	hdr.TOCCount = int32(len(p.TOC))
	copy(buf, hdr.Bytes())

	off := section.HeaderSize
	for i := range p.TOC {
		copy(buf[off:], p.TOC[i].Bytes())
		off += section.TOCEntrySize
	}

	for i := range in.Indoms {
		d := &in.Indoms[i]

		var firstInstance uint64
		if len(d.Instances) > 0 {
			firstInstance = p.InstanceOffsets[i][0]
		}
		rec := section.Indom{
			ID:              d.ID,
			InstanceCount:   uint32(len(d.Instances)),
			InstancesOffset: firstInstance,
			ShortHelpOffset: p.MetadataOffset(d.ShortHelp),
			LongHelpOffset:  p.MetadataOffset(d.LongHelp),
		}
		copy(buf[p.IndomOffsets[i]:], rec.Bytes())

		for j := range d.Instances {
			inst := section.Instance{
				IndomOffset: p.IndomOffsets[i],
				InternalID:  d.Instances[j].ID,
				Name:        d.Instances[j].Name,
			}
			copy(buf[p.InstanceOffsets[i][j]:], inst.Bytes())
		}
	}

	for i := range in.Metrics {
		m := &in.Metrics[i]

		indomID := int32(-1)
		if m.Indom >= 0 {
			indomID = int32(in.Indoms[m.Indom].ID)
		}
		rec := section.Metric{
			Name:            m.Name,
			Item:            m.Item,
			Type:            m.Type,
			Sem:             m.Sem,
			Unit:            m.Unit,
			Indom:           indomID,
			ShortHelpOffset: p.MetadataOffset(m.ShortHelp),
			LongHelpOffset:  p.MetadataOffset(m.LongHelp),
		}
		copy(buf[p.MetricOffsets[i]:], rec.Bytes())

		for j, valOff := range p.ValueOffsets[i] {
			var instOff uint64
			if m.Indom >= 0 {
				instOff = p.InstanceOffsets[m.Indom][j]
			}

			var val section.Value
			if m.Type == section.TypeString {
				val = section.Value{
					Value:          p.PairPrimaryOffset(m.InitPairs[j]),
					Extra:          p.PairShadowOffset(m.InitPairs[j]),
					MetricOffset:   p.MetricOffsets[i],
					InstanceOffset: instOff,
				}
			} else {
				val = section.Value{
					Value:          m.InitNumeric[j],
					MetricOffset:   p.MetricOffsets[i],
					InstanceOffset: instOff,
				}
			}
			copy(buf[valOff:], val.Bytes())
		}
	}

	if in.Pool != nil {
		for i := 0; i < in.Pool.MetadataCount(); i++ {
			rec := section.String{Value: in.Pool.Metadata(i)}
			copy(buf[p.MetadataOffset(i):], rec.Bytes())
		}
		for i := 0; i < in.Pool.PairCount(); i++ {
			rec := section.String{Value: in.Pool.PairInitial(i)}
			copy(buf[p.PairPrimaryOffset(i):], rec.Bytes())
			// The shadow region stays zero until the first update.
		}
	}

	return buf
}
