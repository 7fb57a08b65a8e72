// Package units implements the packed 32-bit PCP unit word carried by
// every metric record.
//
// A unit has three dimensions (space, time, count), each with a signed
// power in [-8, 7] and an unsigned scale. The layout of the word, with
// 31 as the most significant bit:
//
//	bits 31-28  space power (signed)
//	bits 27-24  time power  (signed)
//	bits 23-20  count power (signed)
//	bits 19-16  space scale
//	bits 15-12  time scale
//	bits 11-8   count scale
//	bits  7-0   reserved, zero
//
// Two units are equal iff their packed words are equal.
package units

import (
	"fmt"
	"strings"

	"github.com/pcpkit/mmv/errs"
)

// Space is the scale of the space dimension.
type Space uint8

const (
	Byte  Space = iota // bytes
	KByte              // kibibytes (1024 bytes)
	MByte              // mebibytes
	GByte              // gibibytes
	TByte              // tebibytes
	PByte              // pebibytes
	EByte              // exbibytes
)

func (s Space) String() string {
	switch s {
	case Byte:
		return "B"
	case KByte:
		return "KiB"
	case MByte:
		return "MiB"
	case GByte:
		return "GiB"
	case TByte:
		return "TiB"
	case PByte:
		return "PiB"
	case EByte:
		return "EiB"
	default:
		return "Unknown"
	}
}

// Time is the scale of the time dimension.
type Time uint8

const (
	NSec Time = iota // nanoseconds
	USec             // microseconds
	MSec             // milliseconds
	Sec              // seconds
	Min              // minutes
	Hour             // hours
)

func (t Time) String() string {
	switch t {
	case NSec:
		return "nsec"
	case USec:
		return "usec"
	case MSec:
		return "msec"
	case Sec:
		return "sec"
	case Min:
		return "min"
	case Hour:
		return "hr"
	default:
		return "Unknown"
	}
}

// Count is the scale of the count dimension. PCP defines a single one.
type Count uint8

const One Count = 0

func (c Count) String() string {
	if c == One {
		return "count"
	}
	return "Unknown"
}

const (
	spacePowerLSB = 28
	timePowerLSB  = 24
	countPowerLSB = 20
	spaceScaleLSB = 16
	timeScaleLSB  = 12
	countScaleLSB = 8

	nibbleMask = 0xF
)

// Unit is a packed unit word. The zero Unit is dimensionless.
type Unit struct {
	word uint32
}

// FromRaw returns a unit wrapping a raw packed word, for decoding
// metric records.
func FromRaw(word uint32) Unit {
	return Unit{word: word}
}

// New returns the dimensionless unit.
func New() Unit {
	return Unit{}
}

func checkPower(power int8) error {
	if power < -8 || power > 7 {
		return fmt.Errorf("%w: dimension power %d outside [-8, 7]", errs.ErrInvalidUnit, power)
	}

	return nil
}

// Space returns the unit extended with the given space scale and power.
func (u Unit) Space(scale Space, power int8) (Unit, error) {
	if err := checkPower(power); err != nil {
		return u, err
	}
	u.word |= uint32(scale) << spaceScaleLSB
	u.word |= (uint32(power) & nibbleMask) << spacePowerLSB

	return u, nil
}

// Time returns the unit extended with the given time scale and power.
func (u Unit) Time(scale Time, power int8) (Unit, error) {
	if err := checkPower(power); err != nil {
		return u, err
	}
	u.word |= uint32(scale) << timeScaleLSB
	u.word |= (uint32(power) & nibbleMask) << timePowerLSB

	return u, nil
}

// Count returns the unit extended with the given count scale and power.
func (u Unit) Count(scale Count, power int8) (Unit, error) {
	if err := checkPower(power); err != nil {
		return u, err
	}
	u.word |= uint32(scale) << countScaleLSB
	u.word |= (uint32(power) & nibbleMask) << countPowerLSB

	return u, nil
}

// Packed returns the 32-bit representation written to metric records.
func (u Unit) Packed() uint32 {
	return u.word
}

// power sign-extends the 4-bit two's complement field whose least
// significant bit sits at lsb.
func (u Unit) power(lsb uint) int8 {
	return int8(int32(u.word<<(32-(lsb+4))) >> 28)
}

// SpacePower returns the signed power of the space dimension.
func (u Unit) SpacePower() int8 { return u.power(spacePowerLSB) }

// TimePower returns the signed power of the time dimension.
func (u Unit) TimePower() int8 { return u.power(timePowerLSB) }

// CountPower returns the signed power of the count dimension.
func (u Unit) CountPower() int8 { return u.power(countPowerLSB) }

// SpaceScale returns the scale of the space dimension.
func (u Unit) SpaceScale() Space {
	return Space((u.word >> spaceScaleLSB) & nibbleMask)
}

// TimeScale returns the scale of the time dimension.
func (u Unit) TimeScale() Time {
	return Time((u.word >> timeScaleLSB) & nibbleMask)
}

// CountScale returns the scale of the count dimension.
func (u Unit) CountScale() Count {
	return Count((u.word >> countScaleLSB) & nibbleMask)
}

func writeDim(sb *strings.Builder, scale fmt.Stringer, power int8) {
	sb.WriteString(scale.String())
	if power > 1 || power < -1 {
		fmt.Fprintf(sb, "^%d", abs(power))
	}
	sb.WriteByte(' ')
}

func abs(p int8) int8 {
	if p < 0 {
		return -p
	}
	return p
}

// String renders the unit the way pminfo does, e.g. "KiB / sec (0x1f013000)".
func (u Unit) String() string {
	var sb strings.Builder

	sp, tp, cp := u.SpacePower(), u.TimePower(), u.CountPower()

	if sp > 0 {
		writeDim(&sb, u.SpaceScale(), sp)
	}
	if tp > 0 {
		writeDim(&sb, u.TimeScale(), tp)
	}
	if cp > 0 {
		writeDim(&sb, u.CountScale(), cp)
	}

	if sp < 0 || tp < 0 || cp < 0 {
		sb.WriteString("/ ")
		if sp < 0 {
			writeDim(&sb, u.SpaceScale(), sp)
		}
		if tp < 0 {
			writeDim(&sb, u.TimeScale(), tp)
		}
		if cp < 0 {
			writeDim(&sb, u.CountScale(), cp)
		}
	}

	fmt.Fprintf(&sb, "(0x%x)", u.word)

	return sb.String()
}
