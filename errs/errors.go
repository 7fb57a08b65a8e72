// Package errs defines the sentinel errors returned by the mmv module.
//
// All errors are plain sentinel values; call sites add context with
// fmt.Errorf("%w: ...") so callers can match with errors.Is.
package errs

import "errors"

// Descriptor construction and export errors.
var (
	// ErrInvalidName indicates a client or metric name that is empty,
	// too long, contains forbidden bytes, or collides with another name
	// or item id in the same export.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidUnit indicates a unit dimension power outside [-8, 7].
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrInvalidDomain indicates an empty instance domain, an instance
	// name that is empty, too long or not valid UTF-8, a duplicate
	// instance name or internal id within a domain, or two distinct
	// domains sharing an indom id.
	ErrInvalidDomain = errors.New("invalid instance domain")

	// ErrTypeMismatch indicates a value whose type disagrees with the
	// metric's declared type, or a string value longer than 255 bytes.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrLayoutTooLarge indicates the planned file exceeds the size cap.
	ErrLayoutTooLarge = errors.New("layout too large")

	// ErrExportFailed wraps any I/O failure during export. On failure no
	// file is visible at the final path.
	ErrExportFailed = errors.New("export failed")
)

// Post-export write errors.
var (
	// ErrUnknownMetric indicates a value lookup for an item id that is
	// not part of the exported file.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrUnknownInstance indicates a value lookup for an instance name
	// that is not part of the metric's instance domain.
	ErrUnknownInstance = errors.New("unknown instance")

	// ErrSlotFrozen indicates a write to a value slot after the client
	// has been closed.
	ErrSlotFrozen = errors.New("value slot frozen")
)

// File parsing errors.
var (
	ErrInvalidMagic       = errors.New("invalid MMV magic")
	ErrInvalidVersion     = errors.New("unsupported MMV version")
	ErrGenerationMismatch = errors.New("generation fields disagree")
	ErrInvalidTOC         = errors.New("invalid table of contents")
	ErrInvalidRecordSize  = errors.New("invalid record size")
	ErrInvalidPadding     = errors.New("nonzero pad bytes")
	ErrInvalidOffset      = errors.New("offset out of bounds")
)
