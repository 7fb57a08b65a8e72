// Package endian provides byte order utilities for the MMV on-disk format.
//
// The MMV format is little-endian. Encoders and decoders take an
// EndianEngine so the codec layer stays explicit about byte order, but
// the only engine the rest of the module hands out is the little-endian
// one. The native-order probe exists because the value write path stores
// whole 8-byte words through the mapped region: that is only correct
// when the host's native order matches the file's, so export refuses to
// run on big-endian hosts.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from
// encoding/binary into a single interface. It is satisfied by
// binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's
// byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. On a little-endian host the LSB (0x00) comes first,
	// on a big-endian host the MSB (0x01) does.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host stores integers
// little-endian. Export requires this.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine, the byte
// order of every MMV file this module writes.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine. No MMV file uses
// it; it exists for codec tests that exercise the engine interface.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
