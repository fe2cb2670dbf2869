package bignum

import (
	"fmt"
	"strings"
)

// Options controls how a literal is turned into an Int.
type Options struct {
	// Policy of the resulting magnitude; Checked also rejects bad digits.
	Policy Policy
	// MaxLimbs bounds the literal to a fixed-capacity store (0 = unbounded).
	MaxLimbs int
}

// ParseHex parses a "0x"-prefixed hexadecimal literal with the Checked policy.
func ParseHex(s string) (Int, error) {
	return ParseHexWith(s, Options{Policy: Checked})
}

// MustParseHex is like ParseHex but panics on error. It is meant for
// constants known to be well-formed.
func MustParseHex(s string) Int {
	x, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return x
}

// ParseHexWith parses a hexadecimal literal.
//
// The prefix is "0x" with the x in either case; digits are case-insensitive
// and most significant first. Each digit is packed into its nibble, two per
// byte, starting from the last character. The binary ("0b") and decimal
// forms are recognised and rejected with ErrUnsupportedLiteral.
//
// Under the Lenient policy a malformed digit is read as zero; under Checked
// it is reported as ErrUnrecognizedChar.
func ParseHexWith(s string, opts Options) (Int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '0' {
		return Int{}, fmt.Errorf("%w: decimal literal %q", ErrUnsupportedLiteral, s)
	}
	switch s[1] | 0x20 {
	case 'x':
	case 'b':
		return Int{}, fmt.Errorf("%w: binary literal %q", ErrUnsupportedLiteral, s)
	default:
		return Int{}, fmt.Errorf("%w: decimal literal %q", ErrUnsupportedLiteral, s)
	}
	digits := s[2:]
	n := (len(digits) + 15) / 16

	var store Store
	if opts.MaxLimbs > 0 {
		if n > opts.MaxLimbs {
			return Int{}, fmt.Errorf("%w: %d hex digits need %d limbs, limit is %d", ErrBadLength, len(digits), n, opts.MaxLimbs)
		}
		store = NewFixed(opts.MaxLimbs)
	} else {
		store = NewVector(0)
	}
	m := NewMagnitude(store, opts.Policy)
	if err := m.Ensure(n); err != nil {
		return Int{}, err
	}

	for i := 0; i < len(digits); i++ {
		d, ok := hexDigit(digits[i])
		if !ok && opts.Policy == Checked {
			return Int{}, fmt.Errorf("%w: %q at offset %d", ErrUnrecognizedChar, digits[i], i+2)
		}
		pos := len(digits) - 1 - i
		block := pos / 16
		byteOff := (pos / 2) % 8

		l := m.At(block)
		b := l.Byte(byteOff)
		if pos%2 == 0 {
			b = b&0xF0 | d
		} else {
			b = b&0x0F | d<<4
		}
		if err := m.Set(block, l.WithByte(byteOff, b)); err != nil {
			return Int{}, err
		}
	}
	return Int{mag: m}, nil
}

func hexDigit(ch byte) (uint8, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0', true
	case ch >= 'a' && ch <= 'f':
		return 10 + ch - 'a', true
	case ch >= 'A' && ch <= 'F':
		return 10 + ch - 'A', true
	default:
		return 0, false
	}
}
