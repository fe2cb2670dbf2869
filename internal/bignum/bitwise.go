package bignum

import "bigrsa/internal/limb"

// And returns the bitwise AND of x and y.
func (x Int) And(y Int) Int {
	return x.bitOp(y, func(a, b limb.Limb) limb.Limb { return a & b })
}

// Or returns the bitwise OR of x and y.
//
// Only the limbs below the shorter operand's used length are combined; the
// longer operand's upper limbs are dropped, not passed through.
func (x Int) Or(y Int) Int {
	return x.bitOp(y, func(a, b limb.Limb) limb.Limb { return a | b })
}

// Xor returns the bitwise XOR of x and y. It narrows like Or.
func (x Int) Xor(y Int) Int {
	return x.bitOp(y, func(a, b limb.Limb) limb.Limb { return a ^ b })
}

func (x Int) bitOp(y Int, op func(a, b limb.Limb) limb.Limb) Int {
	n := min(x.mag.UsedLen(), y.mag.UsedLen())
	out := x.alloc(n)
	for i := 0; i < n; i++ {
		out.mag.set(i, op(x.mag.At(i), y.mag.At(i)))
	}
	return out
}

// Not returns the complement of every limb in x's current capacity.
func (x Int) Not() Int {
	n := x.mag.Len()
	out := x.alloc(n)
	for i := 0; i < n; i++ {
		out.mag.set(i, ^x.mag.At(i))
	}
	return out
}

// Lsh returns x << n. Bits leaving the top limb are appended as a new limb.
func (x Int) Lsh(n uint) Int {
	used := x.mag.UsedLen()
	if used == 0 {
		return x.alloc(0)
	}
	blocks := int(n / limb.Bits) //nolint:gosec // G115: shift counts beyond MaxInt limbs are not representable anyway.
	shift := n % limb.Bits

	out := x.alloc(used + blocks)
	var carry limb.Limb
	for i := 0; i < used; i++ {
		v := x.mag.At(i)
		out.mag.set(i+blocks, v<<shift|carry)
		if shift > 0 {
			carry = v >> (limb.Bits - shift)
		}
	}
	if carry != 0 {
		out.mag.put(used+blocks, carry)
	}
	return out
}

// Rsh returns x >> n. The shift is purely logical: no sign is extended and
// the result never grows.
func (x Int) Rsh(n uint) Int {
	used := x.mag.UsedLen()
	blocks := int(n / limb.Bits) //nolint:gosec // G115: see Lsh.
	shift := n % limb.Bits
	if blocks >= used {
		return x.alloc(0)
	}

	out := x.alloc(used - blocks)
	var carry limb.Limb
	for i := used - 1; i >= blocks; i-- {
		v := x.mag.At(i)
		out.mag.set(i-blocks, v>>shift|carry)
		if shift > 0 {
			carry = v << (limb.Bits - shift)
		}
	}
	return out
}
