package bignum

import (
	"errors"
	"math/big"
	"math/rand/v2"
	"strings"
	"testing"

	"bigrsa/internal/limb"
)

// toBig converts through the hex form, so it also exercises String.
func toBig(t *testing.T, x Int) *big.Int {
	t.Helper()
	s := x.String()
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "0x"), 16)
	if !ok {
		t.Fatalf("cannot read back %q", s)
	}
	return v
}

func fromBig(t *testing.T, v *big.Int) Int {
	t.Helper()
	x, err := ParseHex("0x" + v.Text(16))
	if err != nil {
		t.Fatalf("ParseHex(%s): %v", v.Text(16), err)
	}
	return x
}

// randomInts returns deterministic operands of 1..maxBytes bytes.
func randomInts(seed uint64, count, maxBytes int) []Int {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Int, count)
	for i := range out {
		b := make([]byte, 1+r.IntN(maxBytes))
		for j := range b {
			b[j] = byte(r.Uint32())
		}
		out[i] = FromBytes(b)
	}
	return out
}

func TestHexRoundTrip(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0x1234567890abcdef", "0x1234567890abcdef"},
		{"0x1", "0x0000000000000001"},
		{"0x", "0x0000000000000000"},
		{"0X00ff", "0x00000000000000ff"},
		{"0xABCDEF", "0x0000000000abcdef"},
		{"0x10000000000000000", "0x00000000000000010000000000000000"},
		{"0x0000000000000000000000000000000000000005", "0x0000000000000005"},
	}
	for _, tt := range tests {
		x, err := ParseHex(tt.in)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", tt.in, err)
		}
		if got := x.String(); got != tt.want {
			t.Errorf("ParseHex(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseHexNibblePlacement(t *testing.T) {
	x := MustParseHex("0x123")
	l, err := x.Limb(0)
	if err != nil {
		t.Fatalf("Limb(0): %v", err)
	}
	if l.Byte(0) != 0x23 || l.Byte(1) != 0x01 {
		t.Fatalf("bytes = %#x %#x, want 0x23 0x01", l.Byte(0), l.Byte(1))
	}
	if x.Len() != 1 {
		t.Fatalf("Len = %d, want 1", x.Len())
	}
}

func TestParseHexErrors(t *testing.T) {
	if _, err := ParseHex("0x12g4"); !errors.Is(err, ErrUnrecognizedChar) {
		t.Errorf("checked bad digit err = %v, want ErrUnrecognizedChar", err)
	}
	x, err := ParseHexWith("0x1g", Options{Policy: Lenient})
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if v, _ := x.Uint64(); v != 0x10 {
		t.Errorf("lenient bad digit value = %#x, want 0x10", v)
	}
	for _, in := range []string{"0b1010", "12345", "", "x"} {
		if _, err := ParseHex(in); !errors.Is(err, ErrUnsupportedLiteral) {
			t.Errorf("ParseHex(%q) err = %v, want ErrUnsupportedLiteral", in, err)
		}
	}
	long := "0x" + strings.Repeat("f", 33)
	if _, err := ParseHexWith(long, Options{Policy: Checked, MaxLimbs: 2}); !errors.Is(err, ErrBadLength) {
		t.Errorf("oversized literal err = %v, want ErrBadLength", err)
	}
	if _, err := ParseHexWith(long[:34], Options{Policy: Checked, MaxLimbs: 2}); err != nil {
		t.Errorf("32-digit literal in 2 limbs: %v", err)
	}
}

func TestCheckedLimbRead(t *testing.T) {
	x := MustParseHex("0x5")
	if _, err := x.Limb(3); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("checked Limb(3) err = %v", err)
	}
	if v, err := x.WithPolicy(Lenient).Limb(3); err != nil || v != 0 {
		t.Fatalf("lenient Limb(3) = (%d, %v)", v, err)
	}
}

func TestFromBytesAndValue(t *testing.T) {
	x := FromBytes([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09})
	if got, want := x.String(), "0x00000000000000090807060504030201"; got != want {
		t.Fatalf("FromBytes = %s, want %s", got, want)
	}

	v, err := FromValue(uint32(0xdeadbeef))
	if err != nil {
		t.Fatalf("FromValue(uint32): %v", err)
	}
	if u, _ := v.Uint64(); u != 0xdeadbeef {
		t.Fatalf("FromValue(uint32) = %#x", u)
	}

	arr, err := FromValue([2]uint64{1, 2})
	if err != nil {
		t.Fatalf("FromValue([2]uint64): %v", err)
	}
	if got, want := arr.String(), "0x00000000000000020000000000000001"; got != want {
		t.Fatalf("FromValue([2]uint64) = %s, want %s", got, want)
	}

	if _, err := FromValue([]int{1}); !errors.Is(err, ErrBadLength) {
		t.Fatalf("FromValue(slice) err = %v, want ErrBadLength", err)
	}
}

func TestAddSubIdentities(t *testing.T) {
	xs := randomInts(1, 40, 48)
	ys := randomInts(2, 40, 48)
	for i := range xs {
		a, b := xs[i], ys[i]
		sum := a.Add(b)
		want := new(big.Int).Add(toBig(t, a), toBig(t, b))
		if toBig(t, sum).Cmp(want) != 0 {
			t.Fatalf("%s + %s = %s, want %x", a, b, sum, want)
		}
		if !sum.Sub(b).Equal(a) {
			t.Fatalf("(a + b) - b != a for a=%s b=%s", a, b)
		}
		if !a.Sub(a).IsZero() {
			t.Fatalf("a - a != 0 for a=%s", a)
		}
	}
}

func TestAddCarryAppendsLimb(t *testing.T) {
	x := FromLimb(limb.Max)
	sum := x.Add(FromUint64(1))
	if got, want := sum.String(), "0x00000000000000010000000000000000"; got != want {
		t.Fatalf("max + 1 = %s, want %s", got, want)
	}
	if !sum.Dec().Equal(x) {
		t.Fatalf("Dec did not undo Inc")
	}
	if !x.Inc().Equal(sum) {
		t.Fatalf("Inc disagrees with Add")
	}
}

func TestSubUnderflowIsTwosComplement(t *testing.T) {
	one, two := FromUint64(1), FromUint64(2)
	d := one.Sub(two)
	if got, want := d.String(), "0xffffffffffffffff"; got != want {
		t.Fatalf("1 - 2 = %s, want %s", got, want)
	}
	if !d.Greater(one) {
		t.Fatalf("a wrapped difference must compare as a large unsigned value")
	}

	// The negation width follows the wider operand.
	a := MustParseHex("0x10000000000000000")
	d = one.Sub(a)
	if got, want := d.String(), "0xffffffffffffffff0000000000000001"; got != want {
		t.Fatalf("1 - 2^64 = %s, want %s", got, want)
	}
}

func TestNeg(t *testing.T) {
	x := FromUint64(5)
	if got, want := x.Neg().String(), "0xfffffffffffffffb"; got != want {
		t.Fatalf("-5 = %s, want %s", got, want)
	}
	if !x.Neg().Neg().Equal(x) {
		t.Fatalf("double negation changed the value")
	}
	if !Zero().Neg().IsZero() {
		t.Fatalf("-0 != 0")
	}
	if !x.Add(x.Neg()).Mod(MustParseHex("0x10000000000000000")).IsZero() {
		t.Fatalf("x + (-x) is not 0 mod 2^64")
	}
}

func TestMul(t *testing.T) {
	xs := randomInts(3, 30, 40)
	ys := randomInts(4, 30, 40)
	ms := randomInts(5, 30, 12)
	for i := range xs {
		a, b, m := xs[i], ys[i], ms[i]
		if m.IsZero() {
			m = FromUint64(7)
		}
		prod := a.Mul(b)
		want := new(big.Int).Mul(toBig(t, a), toBig(t, b))
		if toBig(t, prod).Cmp(want) != 0 {
			t.Fatalf("%s * %s = %s, want %x", a, b, prod, want)
		}
		lhs := prod.Mod(m)
		rhs := a.Mod(m).Mul(b.Mod(m)).Mod(m)
		if !lhs.Equal(rhs) {
			t.Fatalf("(a*b)%%m != ((a%%m)*(b%%m))%%m for a=%s b=%s m=%s", a, b, m)
		}
	}
	if !FromUint64(12345).Mul(Zero()).IsZero() {
		t.Fatalf("x * 0 != 0")
	}
	full := FromLimb(limb.Max).Mul(FromLimb(limb.Max))
	if got, want := full.String(), "0xfffffffffffffffe0000000000000001"; got != want {
		t.Fatalf("max*max = %s, want %s", got, want)
	}
}

func TestShifts(t *testing.T) {
	xs := randomInts(6, 20, 32)
	for _, x := range xs {
		for _, n := range []uint{0, 1, 7, 63, 64, 65, 128, 200} {
			want := new(big.Int).Lsh(toBig(t, x), n)
			if got := toBig(t, x.Lsh(n)); got.Cmp(want) != 0 {
				t.Fatalf("%s << %d = %x, want %x", x, n, got, want)
			}
			want = new(big.Int).Rsh(toBig(t, x), n)
			if got := toBig(t, x.Rsh(n)); got.Cmp(want) != 0 {
				t.Fatalf("%s >> %d = %x, want %x", x, n, got, want)
			}
		}
	}
	// A right shift of a wrapped pattern is logical.
	neg := FromUint64(1).Neg()
	if got, want := neg.Rsh(60).String(), "0x000000000000000f"; got != want {
		t.Fatalf("logical shift = %s, want %s", got, want)
	}
}

func TestCompare(t *testing.T) {
	a := MustParseHex("0x10000000000000000")
	b := FromLimb(limb.Max)
	if !b.Less(a) || !a.Greater(b) || a.Cmp(b) != 1 {
		t.Fatalf("used length must decide first")
	}
	c := MustParseHex("0x00000000000000000000000000000000ffffffffffffffff")
	if !c.Equal(b) || !c.LessEq(b) || !c.GreaterEq(b) {
		t.Fatalf("high zero limbs must not affect equality")
	}
	x := MustParseHex("0x20000000000000001")
	y := MustParseHex("0x1ffffffffffffffff")
	if x.Cmp(y) != 1 || y.Cmp(x) != -1 {
		t.Fatalf("top limb must decide before lower limbs")
	}
}

func TestBitwiseNarrowing(t *testing.T) {
	wide := MustParseHex("0xf000000000000000000000000000000ff")
	narrow := MustParseHex("0x0f")
	if got, want := wide.And(narrow).String(), "0x000000000000000f"; got != want {
		t.Errorf("And = %s, want %s", got, want)
	}
	if got, want := wide.Or(narrow).String(), "0x00000000000000ff"; got != want {
		t.Errorf("Or = %s, want %s (upper limbs are dropped)", got, want)
	}
	if got, want := wide.Xor(narrow).String(), "0x00000000000000f0"; got != want {
		t.Errorf("Xor = %s, want %s", got, want)
	}
	if got, want := FromUint64(0xf0).Not().String(), "0xffffffffffffff0f"; got != want {
		t.Errorf("Not = %s, want %s", got, want)
	}
}

func TestDivMod(t *testing.T) {
	xs := randomInts(7, 30, 40)
	ys := randomInts(8, 30, 20)
	for i := range xs {
		a, b := xs[i], ys[i]
		if b.IsZero() {
			continue
		}
		q, r, err := DivMod(a, b)
		if err != nil {
			t.Fatalf("DivMod: %v", err)
		}
		wq, wr := new(big.Int).QuoRem(toBig(t, a), toBig(t, b), new(big.Int))
		if toBig(t, q).Cmp(wq) != 0 || toBig(t, r).Cmp(wr) != 0 {
			t.Fatalf("DivMod(%s, %s) = (%s, %s), want (%x, %x)", a, b, q, r, wq, wr)
		}
		if !q.Mul(b).Add(r).Equal(a) {
			t.Fatalf("q*b + r != a")
		}
		if !r.Less(b) {
			t.Fatalf("remainder %s not below divisor %s", r, b)
		}
		q1, r1, _ := DivMod(a, FromUint64(1))
		if !q1.Equal(a) || !r1.IsZero() {
			t.Fatalf("divmod(a, 1) != (a, 0)")
		}
	}
}

func TestDivByZero(t *testing.T) {
	if _, _, err := DivMod(FromUint64(5), Zero()); !errors.Is(err, ErrDivByZero) {
		t.Fatalf("DivMod by zero err = %v", err)
	}
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrDivByZero) {
			t.Fatalf("Mod by zero panicked with %v, want ErrDivByZero", r)
		}
	}()
	_ = FromUint64(5).Mod(Zero())
}

func TestModScenario(t *testing.T) {
	a := MustParseHex("0xad5f0d0cad54de9c35648294aedff0d0cad5f0d0cad5f0d0c")
	m := MustParseHex("0x25fda45da2ef34e")
	want := new(big.Int).Mod(toBig(t, a), toBig(t, m))
	if got := toBig(t, a.Mod(m)); got.Cmp(want) != 0 {
		t.Fatalf("mod scenario = %x, want %x", got, want)
	}
	q := a.Div(m)
	if !q.Mul(m).Add(a.Mod(m)).Equal(a) {
		t.Fatalf("quotient and remainder do not recompose")
	}
}

func TestPowModScenario(t *testing.T) {
	base := MustParseHex("0xfe678d")
	exp := MustParseHex("0x37856876767ad876f786e86878c8d9")
	mod := MustParseHex("0xdaef768d768a")
	want := new(big.Int).Exp(toBig(t, base), toBig(t, exp), toBig(t, mod))
	if got := toBig(t, base.PowMod(exp, mod)); got.Cmp(want) != 0 {
		t.Fatalf("powmod scenario = %x, want %x", got, want)
	}
}

func TestPowModMatchesRepeatedMul(t *testing.T) {
	for a := uint64(2); a < 9; a++ {
		for e := uint64(0); e < 12; e++ {
			for _, m := range []uint64{2, 3, 10, 97, 1 << 40} {
				pow := FromUint64(1)
				for i := uint64(0); i < e; i++ {
					pow = pow.Mul(FromUint64(a))
				}
				want := pow.Mod(FromUint64(m))
				got := FromUint64(a).PowMod(FromUint64(e), FromUint64(m))
				if !got.Equal(want) {
					t.Fatalf("%d^%d mod %d = %s, want %s", a, e, m, got, want)
				}
			}
		}
	}
	if !FromUint64(5).PowMod(Zero(), FromUint64(1)).IsZero() {
		t.Fatalf("x^0 mod 1 must be 0")
	}
}

func TestPowModRandom(t *testing.T) {
	xs := randomInts(9, 10, 24)
	es := randomInts(10, 10, 16)
	ms := randomInts(11, 10, 24)
	for i := range xs {
		m := ms[i]
		if m.IsZero() {
			continue
		}
		want := new(big.Int).Exp(toBig(t, xs[i]), toBig(t, es[i]), toBig(t, m))
		if got := toBig(t, xs[i].PowMod(es[i], m)); got.Cmp(want) != 0 {
			t.Fatalf("%s^%s mod %s = %x, want %x", xs[i], es[i], m, got, want)
		}
	}
}

func TestBitHelpers(t *testing.T) {
	x := MustParseHex("0x10000000000000001")
	if x.BitLen() != 65 {
		t.Errorf("BitLen = %d, want 65", x.BitLen())
	}
	if x.Bit(0) != 1 || x.Bit(64) != 1 || x.Bit(63) != 0 || x.Bit(-1) != 0 {
		t.Errorf("Bit mismatch")
	}
	if !x.IsOdd() || FromUint64(2).IsOdd() {
		t.Errorf("IsOdd mismatch")
	}
	if _, ok := x.Uint64(); ok {
		t.Errorf("Uint64 must fail for a two-limb value")
	}
	if Zero().BitLen() != 0 || !Zero().IsZero() {
		t.Errorf("zero helpers mismatch")
	}
	if got := fromBig(t, big.NewInt(255)); got.String() != "0x00000000000000ff" {
		t.Errorf("fromBig = %s", got)
	}
}

func BenchmarkPowMod(b *testing.B) {
	base := MustParseHex("0xfe678d")
	exp := MustParseHex("0x37856876767ad876f786e86878c8d9")
	mod := MustParseHex("0xdaef768d768a")
	for i := 0; i < b.N; i++ {
		_ = base.PowMod(exp, mod)
	}
}
