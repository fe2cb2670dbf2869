package bignum

import (
	"encoding/binary"
	"errors"
	"fmt"

	"bigrsa/internal/limb"
)

var (
	// ErrOutOfBounds indicates a checked read or write outside the magnitude.
	ErrOutOfBounds = errors.New("limb index out of bounds")
	// ErrUnrecognizedChar indicates a character that is not a hex digit.
	ErrUnrecognizedChar = errors.New("unrecognized character")
	// ErrBadLength indicates input that does not fit the requested store.
	ErrBadLength = errors.New("bad length")
	// ErrOverflow indicates a fixed-capacity store asked to grow past its capacity.
	ErrOverflow = errors.New("fixed capacity exceeded")
	// ErrDivByZero indicates an attempt to divide by zero.
	ErrDivByZero = errors.New("division by zero")
	// ErrUnsupportedLiteral indicates a literal prefix other than 0x.
	ErrUnsupportedLiteral = errors.New("unsupported literal")
)

// Int is an arbitrary-precision unsigned integer.
//
// Every operation returns a fresh Int and never modifies its operands.
// There is no sign: Sub and Neg produce two's-complement bit patterns over
// the operand width, and such a pattern compares as a large positive value.
// Use euclid.Signed where signed arithmetic is required.
type Int struct {
	mag Magnitude
}

// Zero returns a zero Int.
func Zero() Int { return Int{} }

// FromUint64 creates an Int from a uint64.
func FromUint64(v uint64) Int {
	return FromLimb(limb.Limb(v))
}

// FromLimb creates a one-limb Int.
func FromLimb(l limb.Limb) Int {
	out := newInt(Lenient, 1)
	out.mag.set(0, l)
	return out
}

// FromBytes copies b into ascending limb positions: b[0] becomes byte 0 of
// limb 0, b[8] byte 0 of limb 1 and so on.
func FromBytes(b []byte) Int {
	out := newInt(Lenient, (len(b)+7)/8)
	for i, c := range b {
		idx := i / 8
		out.mag.set(idx, out.mag.At(idx).WithByte(i%8, c))
	}
	return out
}

// FromValue copies the little-endian memory image of a fixed-size value
// (integers, arrays and structs of them) into a new Int.
func FromValue(v any) (Int, error) {
	buf, err := binary.Append(nil, binary.LittleEndian, v)
	if err != nil {
		return Int{}, fmt.Errorf("%w: %T is not a fixed-size value", ErrBadLength, v)
	}
	return FromBytes(buf), nil
}

// FromMagnitude wraps an existing magnitude. The Int takes ownership.
func FromMagnitude(m Magnitude) Int {
	return Int{mag: m}
}

func newInt(p Policy, n int) Int {
	return Int{mag: NewMagnitude(NewVector(n), p)}
}

// alloc returns a zeroed result that inherits x's policy.
func (x Int) alloc(n int) Int {
	return newInt(x.mag.policy, n)
}

// Policy returns the read policy of the underlying magnitude.
func (x Int) Policy() Policy { return x.mag.policy }

// WithPolicy returns x with a different read policy.
func (x Int) WithPolicy(p Policy) Int {
	m := x.mag
	m.policy = p
	return Int{mag: m}
}

// Len returns the current limb capacity, including high zero limbs.
func (x Int) Len() int { return x.mag.Len() }

// UsedLen returns the number of limbs up to the highest non-zero one.
func (x Int) UsedLen() int { return x.mag.UsedLen() }

// Limb returns limb i according to x's policy.
func (x Int) Limb(i int) (limb.Limb, error) { return x.mag.Get(i) }

// Magnitude returns a copy of the underlying limb sequence.
func (x Int) Magnitude() Magnitude { return x.mag.Clone() }

// IsZero reports whether x is zero.
func (x Int) IsZero() bool { return x.mag.UsedLen() == 0 }

// IsOdd reports whether the lowest bit of x is set.
func (x Int) IsOdd() bool { return x.mag.At(0)&1 == 1 }

// Bit returns bit i of x.
func (x Int) Bit(i int) uint {
	if i < 0 {
		return 0
	}
	return uint(x.mag.At(i/limb.Bits)>>(i%limb.Bits)) & 1
}

// BitLen returns the number of bits up to and including the highest set bit.
func (x Int) BitLen() int {
	n := x.mag.UsedLen()
	if n == 0 {
		return 0
	}
	return (n-1)*limb.Bits + x.mag.At(n-1).Len()
}

// Uint64 converts x to uint64 if it fits.
func (x Int) Uint64() (uint64, bool) {
	switch x.mag.UsedLen() {
	case 0:
		return 0, true
	case 1:
		return x.mag.At(0).U64(), true
	default:
		return 0, false
	}
}

// Cmp compares x and y as unsigned magnitudes and returns -1, 0 or 1.
// The used length decides first; equal lengths compare limb by limb from
// the top.
func (x Int) Cmp(y Int) int {
	nx, ny := x.mag.UsedLen(), y.mag.UsedLen()
	switch {
	case nx < ny:
		return -1
	case nx > ny:
		return 1
	}
	for i := nx - 1; i >= 0; i-- {
		a, b := x.mag.At(i), y.mag.At(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// Equal reports whether x == y.
func (x Int) Equal(y Int) bool { return x.Cmp(y) == 0 }

// Less reports whether x < y.
func (x Int) Less(y Int) bool { return x.Cmp(y) < 0 }

// LessEq reports whether x <= y.
func (x Int) LessEq(y Int) bool { return x.Cmp(y) <= 0 }

// Greater reports whether x > y.
func (x Int) Greater(y Int) bool { return x.Cmp(y) > 0 }

// GreaterEq reports whether x >= y.
func (x Int) GreaterEq(y Int) bool { return x.Cmp(y) >= 0 }

// widened returns a copy of x resized to exactly n limbs.
func (x Int) widened(n int) Int {
	out := x.alloc(n)
	for i := 0; i < n; i++ {
		out.mag.set(i, x.mag.At(i))
	}
	return out
}

// trimmed drops high zero limbs in place and returns x.
func (x Int) trimmed() Int {
	x.mag.Truncate(x.mag.UsedLen())
	return x
}
