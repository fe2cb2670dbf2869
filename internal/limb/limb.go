// Package limb defines the 64-bit storage word of a big integer together with
// its 32-, 16- and 8-bit views.
//
// A Limb is stored as a single uint64. The narrower views address the same
// bits in little-endian order: Half(0) is bits 0..31, Half(1) is bits 32..63,
// Quarter(0) is bits 0..15 and so on down to Byte(7) for bits 56..63.
package limb

import "math/bits"

// Bits is the width of a Limb in bits.
const Bits = 64

// Limb is one 64-bit word of a magnitude.
type Limb uint64

// Max is the all-ones limb.
const Max = ^Limb(0)

// FromHalves packs two 32-bit halves into a limb.
func FromHalves(lo, hi uint32) Limb {
	return Limb(uint64(lo) | uint64(hi)<<32)
}

// U64 returns the 64-bit view.
func (l Limb) U64() uint64 { return uint64(l) }

// Half returns the i-th 32-bit view (0 = low, 1 = high).
func (l Limb) Half(i int) uint32 {
	return uint32(l >> (32 * uint(i&1))) //nolint:gosec // G115: truncation is intentional (half view).
}

// WithHalf returns a copy of l with the i-th 32-bit view replaced by v.
func (l Limb) WithHalf(i int, v uint32) Limb {
	shift := 32 * uint(i&1)
	mask := Limb(0xFFFFFFFF) << shift
	return (l &^ mask) | Limb(v)<<shift
}

// Quarter returns the i-th 16-bit view (0..3).
func (l Limb) Quarter(i int) uint16 {
	return uint16(l >> (16 * uint(i&3))) //nolint:gosec // G115: truncation is intentional (quarter view).
}

// WithQuarter returns a copy of l with the i-th 16-bit view replaced by v.
func (l Limb) WithQuarter(i int, v uint16) Limb {
	shift := 16 * uint(i&3)
	mask := Limb(0xFFFF) << shift
	return (l &^ mask) | Limb(v)<<shift
}

// Byte returns the i-th 8-bit view (0..7).
func (l Limb) Byte(i int) uint8 {
	return uint8(l >> (8 * uint(i&7))) //nolint:gosec // G115: truncation is intentional (byte view).
}

// WithByte returns a copy of l with the i-th 8-bit view replaced by v.
func (l Limb) WithByte(i int, v uint8) Limb {
	shift := 8 * uint(i&7)
	mask := Limb(0xFF) << shift
	return (l &^ mask) | Limb(v)<<shift
}

// LeadingZeros returns the number of leading zero bits.
func (l Limb) LeadingZeros() int { return bits.LeadingZeros64(uint64(l)) }

// Len returns the minimum number of bits needed to represent l.
func (l Limb) Len() int { return bits.Len64(uint64(l)) }

// AddHalf returns a + b + carry and the carry out of the 32-bit result.
//
// Unlike bits.Add32 the incoming carry may be any 32-bit value, which lets a
// caller ripple a whole half-limb product digit forward.
func AddHalf(a, b, carry uint32) (sum, carryOut uint32) {
	r := uint64(a) + uint64(b) + uint64(carry)
	return uint32(r), uint32(r >> 32) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
}

// MulHalf returns the full 64-bit product of two half-limb digits.
func MulHalf(a, b uint32) Limb {
	return Limb(uint64(a) * uint64(b))
}
