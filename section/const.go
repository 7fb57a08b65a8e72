package section

import "github.com/pcpkit/mmv/endian"

// Record sizes in bytes. Every size is a multiple of 8 so sections pack
// on 8-byte boundaries without padding records.
const (
	HeaderSize   = 40
	TOCEntrySize = 16
	IndomSize    = 32
	InstanceSize = 80
	MetricSize   = 104
	ValueSize    = 32
	StringSize   = 256
)

// Field offsets inside the header needed by the commit path: the
// generation pair is rewritten in place through the mapping after the
// file lands on disk.
const (
	Gen1Offset = 8
	Gen2Offset = 16
)

// Offsets of the two words inside a value record that the write path
// mutates: the value (or current-string pointer) word and the extra
// (shadow-string pointer) word.
const (
	ValueWordOffset = 0
	ExtraWordOffset = 8
)

const (
	// Version is the MMV format version this module writes.
	Version = 1

	// NameLen is the on-disk size of metric and instance name fields.
	// Names are NUL-terminated, so their maximum length is NameLen-1.
	NameLen    = 64
	NameMaxLen = NameLen - 1

	// StringMaxLen is the longest payload a string record can carry,
	// leaving room for the terminating NUL.
	StringMaxLen = StringSize - 1
)

// Identifier bit widths. Cluster ids occupy 12 bits of the PMID, item
// ids 10, indom ids 22; values wider than that are truncated or
// rejected before they reach a record.
const (
	ClusterIDBits = 12
	ItemBits      = 10
	IndomBits     = 22
)

// Magic is the four-byte file signature.
var Magic = [4]byte{'M', 'M', 'V', 0}

// engine is the byte order of every record codec. MMV is always
// little-endian on disk.
var engine = endian.GetLittleEndianEngine()

// TOCKind identifies the section a table-of-contents entry points at.
type TOCKind uint32

const (
	KindIndoms    TOCKind = 1
	KindInstances TOCKind = 2
	KindMetrics   TOCKind = 3
	KindValues    TOCKind = 4
	KindStrings   TOCKind = 5
)

func (k TOCKind) String() string {
	switch k {
	case KindIndoms:
		return "indoms"
	case KindInstances:
		return "instances"
	case KindMetrics:
		return "metrics"
	case KindValues:
		return "values"
	case KindStrings:
		return "strings"
	default:
		return "unknown"
	}
}

// Type is the MMV code for a metric value type.
type Type uint32

const (
	TypeInt32   Type = 0
	TypeUint32  Type = 1
	TypeInt64   Type = 2
	TypeUint64  Type = 3
	TypeFloat32 Type = 4
	TypeFloat64 Type = 5
	TypeString  Type = 6
)

func (t Type) String() string {
	switch t {
	case TypeInt32:
		return "Int32"
	case TypeUint32:
		return "Uint32"
	case TypeInt64:
		return "Int64"
	case TypeUint64:
		return "Uint64"
	case TypeFloat32:
		return "Float32"
	case TypeFloat64:
		return "Double64"
	case TypeString:
		return "String"
	default:
		return "Unknown"
	}
}

// Semantics is the interpretation of a metric's value trajectory.
type Semantics uint32

const (
	SemCounter  Semantics = 1
	SemInstant  Semantics = 3
	SemDiscrete Semantics = 4
)

func (s Semantics) String() string {
	switch s {
	case SemCounter:
		return "counter"
	case SemInstant:
		return "instant"
	case SemDiscrete:
		return "discrete"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined semantics codes.
func (s Semantics) Valid() bool {
	return s == SemCounter || s == SemInstant || s == SemDiscrete
}

// Flag is the header feature-flag word.
type Flag uint32

const (
	// FlagNoPrefix means metric names are not prefixed with the MMV
	// file name by the agent.
	FlagNoPrefix Flag = 0x1
	// FlagProcess means the process id field is meaningful and the
	// agent should check the writer is alive.
	FlagProcess Flag = 0x2
	// FlagSentinel allows "no value available" sentinel values.
	FlagSentinel Flag = 0x4
)
