package bignum

import "bigrsa/internal/limb"

// addLimbs writes x + y over n limbs into out and returns the carry left
// over after the top half-limb. One carry runs through every half-limb.
func addLimbs(out *Magnitude, x, y Magnitude, n int) uint32 {
	var carry uint32
	for i := 0; i < n; i++ {
		a, b := x.At(i), y.At(i)
		var r limb.Limb
		for h := 0; h < 2; h++ {
			var s uint32
			s, carry = limb.AddHalf(a.Half(h), b.Half(h), carry)
			r = r.WithHalf(h, s)
		}
		out.set(i, r)
	}
	return carry
}

// Add returns x + y. A carry out of the top limb appends one limb.
func (x Int) Add(y Int) Int {
	n := max(x.mag.UsedLen(), y.mag.UsedLen())
	out := x.alloc(n)
	if carry := addLimbs(&out.mag, x.mag, y.mag, n); carry != 0 {
		out.mag.put(n, limb.Limb(carry))
	}
	return out
}

// AddLimb returns x + v.
func (x Int) AddLimb(v limb.Limb) Int { return x.Add(FromLimb(v)) }

// Inc returns x + 1.
func (x Int) Inc() Int { return x.AddLimb(1) }

// Sub returns x - y as x + twos(y), with y first widened to the wider
// operand's used length. The final carry is dropped, so for x < y the result
// is the two's-complement pattern of the difference at that width.
func (x Int) Sub(y Int) Int {
	n := max(x.mag.UsedLen(), y.mag.UsedLen())
	neg := y.widened(n)
	neg.mag.twosComplement()
	out := x.alloc(n)
	addLimbs(&out.mag, x.mag, neg.mag, n)
	return out
}

// SubLimb returns x - v.
func (x Int) SubLimb(v limb.Limb) Int { return x.Sub(FromLimb(v)) }

// Dec returns x - 1.
func (x Int) Dec() Int { return x.SubLimb(1) }

// Neg returns the two's complement of x over its current limb capacity.
func (x Int) Neg() Int {
	out := x.widened(x.mag.Len())
	out.mag.twosComplement()
	return out
}

// twosComplement inverts every limb and adds one, dropping the final carry.
func (m *Magnitude) twosComplement() {
	n := m.Len()
	for i := 0; i < n; i++ {
		m.store.Save(i, ^m.store.Load(i))
	}
	carry := uint32(1)
	for i := 0; i < n && carry != 0; i++ {
		l := m.store.Load(i)
		for h := 0; h < 2; h++ {
			var s uint32
			s, carry = limb.AddHalf(l.Half(h), 0, carry)
			l = l.WithHalf(h, s)
		}
		m.store.Save(i, l)
	}
}

// Mul returns x * y using schoolbook multiplication on 32-bit digits.
//
// The result is pre-sized to UsedLen(x)*UsedLen(y)+1 limbs so that every
// digit product lands in allocated space, then trimmed.
func (x Int) Mul(y Int) Int {
	nx, ny := x.mag.UsedLen(), y.mag.UsedLen()
	if nx == 0 || ny == 0 {
		return x.alloc(0)
	}
	out := x.alloc(nx*ny + 1)
	for i := 0; i < 2*nx; i++ {
		a := x.mag.At(i / 2).Half(i % 2)
		if a == 0 {
			continue
		}
		for j := 0; j < 2*ny; j++ {
			p := limb.MulHalf(a, y.mag.At(j/2).Half(j%2))
			out.mag.addHalfAt(p.Half(0), i+j)
			out.mag.addHalfAt(p.Half(1), i+j+1)
		}
	}
	return out.trimmed()
}

// addHalfAt adds v at half-limb offset off and ripples the carry upward
// until it dies out.
func (m *Magnitude) addHalfAt(v uint32, off int) {
	carry := v
	for k := off; carry != 0; k++ {
		idx, h := k/2, k%2
		l := m.At(idx)
		var s uint32
		s, carry = limb.AddHalf(l.Half(h), 0, carry)
		m.put(idx, l.WithHalf(h, s))
	}
}
