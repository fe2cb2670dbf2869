// Package euclid implements the Euclidean algorithm and modular inverses
// over bignum.Int.
//
// bignum.Int has no sign, so the back-substitution of the extended
// algorithm runs on Signed values.
package euclid

import (
	"errors"
	"fmt"

	"bigrsa/internal/bignum"
)

// ErrNotInvertible indicates that gcd(e, m) != 1.
var ErrNotInvertible = errors.New("value is not invertible")

// GCD returns the greatest common divisor of a and b by repeatedly
// replacing (a, b) with (b, a mod b). GCD(a, 0) is a.
func GCD(a, b bignum.Int) bignum.Int {
	for !b.IsZero() {
		a, b = b, a.Mod(b)
	}
	return a
}

type step struct {
	a, b, q, r bignum.Int
}

// ExtendedGCD returns g = gcd(a, b) and coefficients x, y with
// x*a + y*b = g.
//
// The forward pass records every (a, b, q, r) division step until the
// remainder is zero; the coefficients are then back-substituted from the
// last step (x = 0, y = 1) to the first.
func ExtendedGCD(a, b bignum.Int) (g bignum.Int, x, y Signed) {
	if b.IsZero() {
		return a, newSigned(bignum.FromUint64(1), false), newSigned(bignum.Zero(), false)
	}

	var steps []step
	curA, curB := a, b
	for {
		q, r, err := bignum.DivMod(curA, curB)
		if err != nil {
			// curB is never zero here: it is b or a non-zero remainder.
			panic(err)
		}
		steps = append(steps, step{a: curA, b: curB, q: q, r: r})
		if r.IsZero() {
			break
		}
		curA, curB = curB, r
	}

	g = steps[len(steps)-1].b
	x = newSigned(bignum.Zero(), false)
	y = newSigned(bignum.FromUint64(1), false)
	for i := len(steps) - 2; i >= 0; i-- {
		x, y = y, x.sub(y.mulMag(steps[i].q))
	}
	return g, x, y
}

// ModInverse returns d in [0, m) with d*e = 1 (mod m).
func ModInverse(e, m bignum.Int) (bignum.Int, error) {
	if m.IsZero() {
		return bignum.Int{}, fmt.Errorf("modular inverse: %w", bignum.ErrDivByZero)
	}
	g, x, _ := ExtendedGCD(e, m)
	if !g.Equal(bignum.FromUint64(1)) {
		return bignum.Int{}, fmt.Errorf("%w: gcd(%s, %s) = %s", ErrNotInvertible, e, m, g)
	}
	d := x.Mag().Mod(m)
	if x.Negative() && !d.IsZero() {
		d = m.Sub(d)
	}
	return d, nil
}
