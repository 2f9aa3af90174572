// Package protocol implements the wire encoding of the counter characteristic.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// ValueSize is the encoded size of a counter value (int32, little-endian).
const ValueSize = 4

// EncodeValue encodes v the way an int characteristic carries it:
//
//	bytes 0..3: int32, little-endian, two's complement
func EncodeValue(v int32) []byte {
	buf := make([]byte, ValueSize)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

// DecodeValue decodes a characteristic payload produced by EncodeValue.
func DecodeValue(data []byte) (int32, error) {
	if len(data) != ValueSize {
		return 0, fmt.Errorf("protocol: value must be %d bytes, got %d", ValueSize, len(data))
	}
	return int32(binary.LittleEndian.Uint32(data)), nil
}
