// Package section defines the fixed-size records of the MMV v1 file
// format and their binary codecs.
//
// An MMV file is a header, a table of contents, and up to five record
// sections (instance domains, instances, metrics, values, strings).
// Every record kind has a fixed size, all multiples of 8 bytes, so the
// sections pack naturally on 8-byte boundaries. All integers are
// little-endian.
//
// Record types in this package are plain structs with Bytes/Parse
// pairs; they know nothing about layout. Offsets between records are
// assigned by the layout planner and stored into the cross-reference
// fields before serialisation.
package section
