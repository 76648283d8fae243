package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

// OptionSize is the width of the presence flag in front of an optional value.
// Optional values always occupy their full width, whether or not they are set.
const OptionSize = 1

// The Put functions write into dst, which callers position at the current
// offset, and advance offset by the encoded width. dst must be large enough;
// callers allocate exact record sizes up front.

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst[:ed25519.PublicKeySize], src)
	*offset += ed25519.PublicKeySize
}

func PutOptionalKey32(dst []byte, src []byte, offset *int) {
	dst[0] = 0
	if len(src) > 0 {
		dst[0] = 1
		copy(dst[OptionSize:OptionSize+ed25519.PublicKeySize], src)
	}

	*offset += OptionSize + ed25519.PublicKeySize
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	*offset += 8
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst, v)
	*offset += 4
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	*offset += 1
}

func PutBool(dst []byte, v bool, offset *int) {
	var b uint8
	if v {
		b = 1
	}
	PutUint8(dst, b, offset)
}

func PutOptionalUint64(dst []byte, v *uint64, offset *int) {
	dst[0] = 0
	if v != nil {
		dst[0] = 1
		binary.LittleEndian.PutUint64(dst[OptionSize:], *v)
	}
	*offset += OptionSize + 8
}
