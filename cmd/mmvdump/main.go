// Command mmvdump decodes an MMV file and prints its contents, the way
// pmdammv would see them. It also snapshots live files into compressed
// archives that can be dumped later.
//
//	mmvdump /tmp/mmv/myapp
//	mmvdump --archive myapp.mmv.zst /tmp/mmv/myapp
//	mmvdump myapp.mmv.zst
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcpkit/mmv/dump"
	"github.com/pcpkit/mmv/section"
	"github.com/pcpkit/mmv/units"
)

func main() {
	var archivePath string

	root := &cobra.Command{
		Use:          "mmvdump <mmv-file>",
		Short:        "decode and print an MMV metrics file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if archivePath != "" {
				return writeArchive(args[0], archivePath)
			}

			m, err := dump.ReadFile(args[0])
			if err != nil {
				return err
			}
			printMMV(m)

			return nil
		},
	}
	root.Flags().StringVar(&archivePath, "archive", "", "write a zstd snapshot of the file to this path instead of dumping")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func writeArchive(src, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := dump.WriteArchive(src, f); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}

	return f.Close()
}

func printMMV(m *dump.MMV) {
	printHeader(m)
	fmt.Println()

	tocIndex := 0
	for _, kind := range []section.TOCKind{
		section.KindIndoms,
		section.KindInstances,
		section.KindMetrics,
		section.KindValues,
		section.KindStrings,
	} {
		toc := m.TOCFor(kind)
		if toc == nil {
			continue
		}

		switch kind {
		case section.KindIndoms:
			printIndoms(m, toc, tocIndex)
		case section.KindInstances:
			printInstances(m, toc, tocIndex)
		case section.KindMetrics:
			printMetrics(m, toc, tocIndex)
		case section.KindValues:
			printValues(m, toc, tocIndex)
		case section.KindStrings:
			printStrings(m, toc, tocIndex)
		}
		fmt.Println()
		tocIndex++
	}
}

func printHeader(m *dump.MMV) {
	hdr := &m.Header
	fmt.Printf("Version    = %d\n", section.Version)
	fmt.Printf("Generated  = %d\n", hdr.Gen1)
	fmt.Printf("TOC count  = %d\n", hdr.TOCCount)
	fmt.Printf("Cluster    = %d\n", hdr.ClusterID)
	fmt.Printf("Process    = %d\n", hdr.PID)
	fmt.Printf("Flags      = 0x%x\n", uint32(hdr.Flags))
}

func printHelp(m *dump.MMV, shortOff, longOff uint64) {
	if s, ok := m.StringAt(shortOff); ok && s != "" {
		fmt.Printf("      shorttext=%s\n", s)
	} else {
		fmt.Println("      (no shorttext)")
	}
	if s, ok := m.StringAt(longOff); ok && s != "" {
		fmt.Printf("      longtext=%s\n", s)
	} else {
		fmt.Println("      (no longtext)")
	}
}

func printIndoms(m *dump.MMV, toc *dump.TOC, idx int) {
	fmt.Printf("TOC[%d]: toc offset %d, indoms offset %d (%d entries)\n",
		idx, toc.FileOffset, toc.Offset, toc.Count)

	for _, off := range dump.SortedOffsets(m.Indoms) {
		indom := m.Indoms[off]
		fmt.Printf("  [%d/%d] %d instances, starting at offset %d\n",
			indom.ID, off, indom.InstanceCount, indom.InstancesOffset)
		printHelp(m, indom.ShortHelpOffset, indom.LongHelpOffset)
	}
}

func printInstances(m *dump.MMV, toc *dump.TOC, idx int) {
	fmt.Printf("TOC[%d]: toc offset %d, instances offset %d (%d entries)\n",
		idx, toc.FileOffset, toc.Offset, toc.Count)

	for _, off := range dump.SortedOffsets(m.Instances) {
		inst := m.Instances[off]
		indomID := "(no indom)"
		if indom, ok := m.Indoms[inst.IndomOffset]; ok {
			indomID = fmt.Sprintf("%d", indom.ID)
		}
		fmt.Printf("  [%s/%d] instance = [%d or \"%s\"]\n",
			indomID, off, inst.InternalID, inst.Name)
	}
}

func printMetrics(m *dump.MMV, toc *dump.TOC, idx int) {
	fmt.Printf("TOC[%d]: toc offset %d, metrics offset %d (%d entries)\n",
		idx, toc.FileOffset, toc.Offset, toc.Count)

	for _, off := range dump.SortedOffsets(m.Metrics) {
		metric := m.Metrics[off]
		fmt.Printf("  [%d/%d] %s\n", metric.Item, off, metric.Name)
		fmt.Printf("      type=%s (0x%x), sem=%s (0x%x)\n",
			metric.Type, uint32(metric.Type), metric.Sem, uint32(metric.Sem))
		fmt.Printf("      unit=%s\n", units.FromRaw(metric.Unit))
		if metric.Indom >= 0 {
			fmt.Printf("      indom=%d\n", metric.Indom)
		} else {
			fmt.Println("      (no indom)")
		}
		printHelp(m, metric.ShortHelpOffset, metric.LongHelpOffset)
	}
}

func printValues(m *dump.MMV, toc *dump.TOC, idx int) {
	fmt.Printf("TOC[%d]: toc offset %d, values offset %d (%d entries)\n",
		idx, toc.FileOffset, toc.Offset, toc.Count)

	for _, off := range dump.SortedOffsets(m.Values) {
		val := m.Values[off]
		metric, ok := m.Metrics[val.MetricOffset]
		if !ok {
			continue
		}

		fmt.Printf("  [%d/%d] %s", metric.Item, off, metric.Name)
		if inst, ok := m.Instances[val.InstanceOffset]; ok && val.InstanceOffset != 0 {
			fmt.Printf("[%d or \"%s\"]", inst.InternalID, inst.Name)
		}

		if metric.Type == section.TypeString {
			if s, ok := m.Strings[val.Value]; ok {
				fmt.Printf(" = \"%s\"\n", s.Value)
			} else {
				fmt.Printf(" = (dangling string offset %d)\n", val.Value)
			}
		} else {
			fmt.Printf(" = %d\n", val.Value)
		}
	}
}

func printStrings(m *dump.MMV, toc *dump.TOC, idx int) {
	fmt.Printf("TOC[%d]: toc offset %d, strings offset %d (%d entries)\n",
		idx, toc.FileOffset, toc.Offset, toc.Count)

	for i, off := range dump.SortedOffsets(m.Strings) {
		fmt.Printf("  [%d/%d] %s\n", i+1, off, m.Strings[off].Value)
	}
}
