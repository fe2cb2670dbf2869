package euclid

import "bigrsa/internal/bignum"

// Signed is a magnitude with an explicit sign, used for Bézout coefficients.
// Zero is always non-negative.
type Signed struct {
	mag bignum.Int
	neg bool
}

func newSigned(mag bignum.Int, neg bool) Signed {
	if mag.IsZero() {
		neg = false
	}
	return Signed{mag: mag, neg: neg}
}

// Mag returns the absolute value.
func (s Signed) Mag() bignum.Int { return s.mag }

// Negative reports whether the value is below zero.
func (s Signed) Negative() bool { return s.neg }

// String formats the value as the magnitude's hex form with a leading '-'
// when negative.
func (s Signed) String() string {
	if s.neg {
		return "-" + s.mag.String()
	}
	return s.mag.String()
}

// mulMag returns s * m for a non-negative m.
func (s Signed) mulMag(m bignum.Int) Signed {
	return newSigned(s.mag.Mul(m), s.neg)
}

// sub returns s - t.
func (s Signed) sub(t Signed) Signed {
	switch {
	case s.neg && t.neg:
		// (-a) - (-b) = b - a
		return newSigned(t.mag, false).sub(newSigned(s.mag, false))
	case !s.neg && t.neg:
		return newSigned(s.mag.Add(t.mag), false)
	case s.neg && !t.neg:
		return newSigned(s.mag.Add(t.mag), true)
	}
	if s.mag.GreaterEq(t.mag) {
		return newSigned(s.mag.Sub(t.mag), false)
	}
	return newSigned(t.mag.Sub(s.mag), true)
}
