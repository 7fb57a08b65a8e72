// Package strpool interns the strings of an MMV file ahead of layout.
//
// The pool holds two populations with different rules:
//
//   - Metadata strings (help texts, shared freely between records) are
//     deduplicated: interning the same payload twice yields the same
//     reference.
//   - String-value slot pairs (primary + shadow regions backing one
//     STRING-typed value) are never deduplicated, because each pair is
//     mutated independently after export.
//
// References are indices, not offsets. The layout planner turns them
// into file offsets once the section bases are known: metadata strings
// occupy the first MetadataCount string records of the strings section,
// followed by two records per pair.
package strpool

import (
	"fmt"
	"unicode/utf8"

	"github.com/pcpkit/mmv/errs"
	"github.com/pcpkit/mmv/section"
)

// Pool accumulates strings during descriptor registration.
type Pool struct {
	metadata []string
	index    map[string]int
	pairs    []string
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{index: make(map[string]int)}
}

// Validate checks that s fits a string record: valid UTF-8, at most
// section.StringMaxLen bytes.
func Validate(s string) error {
	if len(s) > section.StringMaxLen {
		return fmt.Errorf("%w: string of %d bytes exceeds %d", errs.ErrTypeMismatch, len(s), section.StringMaxLen)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: string is not valid UTF-8", errs.ErrTypeMismatch)
	}

	return nil
}

// Intern adds a metadata string and returns its reference. Duplicate
// payloads share a reference. The empty string is the caller's job to
// elide (it is encoded as offset zero, not as a record).
func (p *Pool) Intern(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty metadata string", errs.ErrTypeMismatch)
	}
	if err := Validate(s); err != nil {
		return 0, err
	}

	if ref, ok := p.index[s]; ok {
		return ref, nil
	}

	ref := len(p.metadata)
	p.metadata = append(p.metadata, s)
	p.index[s] = ref

	return ref, nil
}

// AllocPair allocates a primary+shadow region pair for one string
// value and returns the pair's reference. Pairs are never shared, even
// for identical initial payloads.
func (p *Pool) AllocPair(initial string) (int, error) {
	if err := Validate(initial); err != nil {
		return 0, err
	}

	ref := len(p.pairs)
	p.pairs = append(p.pairs, initial)

	return ref, nil
}

// MetadataCount returns the number of interned metadata strings.
func (p *Pool) MetadataCount() int {
	return len(p.metadata)
}

// PairCount returns the number of allocated value slot pairs.
func (p *Pool) PairCount() int {
	return len(p.pairs)
}

// RecordCount returns the total number of string records the pool
// occupies: one per metadata string, two per pair.
func (p *Pool) RecordCount() int {
	return len(p.metadata) + 2*len(p.pairs)
}

// Metadata returns the interned metadata string for ref.
func (p *Pool) Metadata(ref int) string {
	return p.metadata[ref]
}

// PairInitial returns the initial payload of pair ref.
func (p *Pool) PairInitial(ref int) string {
	return p.pairs[ref]
}
