// Package hash derives default MMV identifiers from names.
//
// Callers can pin every id explicitly; these helpers exist for the
// common case where a stable id derived from the name is good enough.
// Item ids occupy 10 bits of the PMID and indom ids 22, so the hashes
// are masked to those widths.
package hash

import "github.com/cespare/xxhash/v2"

const (
	itemBits  = 10
	indomBits = 22
)

// Item returns the default item id for a metric name.
func Item(name string) uint32 {
	return uint32(xxhash.Sum64String(name)) & (1<<itemBits - 1)
}

// Indom returns the default indom id for an instance domain, derived
// from its instance names.
func Indom(instances []string) uint32 {
	d := xxhash.New()
	for _, name := range instances {
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{0})
	}

	return uint32(d.Sum64()) & (1<<indomBits - 1)
}

// Instance returns the default internal id for an instance name.
func Instance(name string) uint32 {
	return uint32(xxhash.Sum64String(name))
}
