package bignum

import "bigrsa/internal/limb"

// DivMod returns the quotient and remainder of dividend / divisor using
// binary long division.
//
// Every dividend bit, from the top, is shifted into the remainder; when the
// remainder reaches the divisor the quotient bit is set and the divisor is
// subtracted. The cost is quadratic in the bit count, and no quotient-digit
// estimate is involved.
func DivMod(dividend, divisor Int) (q, r Int, err error) {
	if divisor.IsZero() {
		return Int{}, Int{}, ErrDivByZero
	}
	used := dividend.mag.UsedLen()
	q = dividend.alloc(used)
	r = dividend.alloc(0)
	for i := used - 1; i >= 0; i-- {
		word := dividend.mag.At(i)
		for bit := limb.Bits - 1; bit >= 0; bit-- {
			r.mag.shiftInBit(word >> bit)
			if r.Cmp(divisor) >= 0 {
				q.mag.set(i, q.mag.At(i)|limb.Limb(1)<<bit)
				r = r.Sub(divisor)
			}
		}
	}
	return q, r, nil
}

// Div returns x / y. It panics with ErrDivByZero if y is zero.
func (x Int) Div(y Int) Int {
	q, _, err := DivMod(x, y)
	if err != nil {
		panic(err)
	}
	return q
}

// Mod returns x % y. It panics with ErrDivByZero if y is zero.
func (x Int) Mod(y Int) Int {
	_, r, err := DivMod(x, y)
	if err != nil {
		panic(err)
	}
	return r
}

// PowMod returns x**e mod m by left-to-right square-and-multiply.
//
// Squaring is skipped until the first set exponent bit has been seen, and
// the accumulator is reduced after every squaring and every multiply, so
// intermediates stay within about twice the modulus width. It panics with
// ErrDivByZero if m is zero.
func (x Int) PowMod(e, m Int) Int {
	if m.IsZero() {
		panic(ErrDivByZero)
	}
	base := x.Mod(m)
	acc := x.alloc(2*base.mag.UsedLen() + 1)
	acc.mag.set(0, 1)
	seen := false
	for i := e.mag.UsedLen() - 1; i >= 0; i-- {
		word := e.mag.At(i)
		for bit := limb.Bits - 1; bit >= 0; bit-- {
			if seen {
				acc = acc.Mul(acc).Mod(m)
			}
			if word>>bit&1 == 1 {
				acc = acc.Mul(base).Mod(m)
				seen = true
			}
		}
	}
	if !seen {
		return acc.Mod(m)
	}
	return acc
}
