package bignum

import (
	"fmt"

	"bigrsa/internal/limb"
)

// Policy selects how a Magnitude reacts to out-of-range reads and how the
// hex parser reacts to malformed digits.
type Policy uint8

const (
	// Lenient reads past the end as zero and parses malformed digits as zero.
	Lenient Policy = iota
	// Checked reports ErrOutOfBounds and ErrUnrecognizedChar instead.
	Checked
)

// String returns the string representation of Policy.
func (p Policy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Checked:
		return "checked"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "lenient", "LENIENT":
		return Lenient, nil
	case "checked", "CHECKED", "":
		return Checked, nil
	default:
		return Checked, fmt.Errorf("invalid engine policy: %q (expected: checked|lenient)", s)
	}
}

// Store is a backing strategy for a Magnitude. Load and Save are only called
// with 0 <= i < Len(); Resize zero-fills any newly exposed limbs.
type Store interface {
	Len() int
	Resize(n int) error
	Load(i int) limb.Limb
	Save(i int, v limb.Limb)
	Clone() Store
}

// Vector is the growing store used for every arithmetic result.
type Vector struct {
	limbs []limb.Limb
}

// NewVector returns a vector of n zero limbs.
func NewVector(n int) *Vector {
	return &Vector{limbs: make([]limb.Limb, n)}
}

func (v *Vector) Len() int { return len(v.limbs) }

func (v *Vector) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrBadLength, n)
	}
	if n <= len(v.limbs) {
		v.limbs = v.limbs[:n]
		return nil
	}
	v.limbs = append(v.limbs, make([]limb.Limb, n-len(v.limbs))...)
	return nil
}

func (v *Vector) Load(i int) limb.Limb { return v.limbs[i] }

func (v *Vector) Save(i int, l limb.Limb) { v.limbs[i] = l }

func (v *Vector) Clone() Store {
	out := make([]limb.Limb, len(v.limbs))
	copy(out, v.limbs)
	return &Vector{limbs: out}
}

// Fixed is a store with a capacity chosen up front. Growing past the
// capacity fails with ErrOverflow; nothing is ever truncated silently.
type Fixed struct {
	limbs []limb.Limb
	n     int
}

// NewFixed returns an empty store that can hold up to capacity limbs.
func NewFixed(capacity int) *Fixed {
	if capacity < 0 {
		capacity = 0
	}
	return &Fixed{limbs: make([]limb.Limb, capacity)}
}

// Cap returns the fixed capacity in limbs.
func (f *Fixed) Cap() int { return len(f.limbs) }

func (f *Fixed) Len() int { return f.n }

func (f *Fixed) Resize(n int) error {
	switch {
	case n < 0:
		return fmt.Errorf("%w: negative length %d", ErrBadLength, n)
	case n > len(f.limbs):
		return fmt.Errorf("%w: need %d limbs, capacity is %d", ErrOverflow, n, len(f.limbs))
	}
	if n < f.n {
		clear(f.limbs[n:f.n])
	}
	f.n = n
	return nil
}

func (f *Fixed) Load(i int) limb.Limb { return f.limbs[i] }

func (f *Fixed) Save(i int, l limb.Limb) { f.limbs[i] = l }

func (f *Fixed) Clone() Store {
	out := &Fixed{limbs: make([]limb.Limb, len(f.limbs)), n: f.n}
	copy(out.limbs, f.limbs)
	return out
}

// Magnitude is a little-endian limb sequence: index 0 is least significant.
//
// Growth is explicit. Set only writes inside the current length; Ensure and
// Put are the calls that extend the sequence. The zero value is an empty
// lenient magnitude backed by a Vector on first growth.
type Magnitude struct {
	store  Store
	policy Policy
}

// NewMagnitude wraps a store with the given policy.
func NewMagnitude(s Store, p Policy) Magnitude {
	return Magnitude{store: s, policy: p}
}

// Policy returns the read policy.
func (m Magnitude) Policy() Policy { return m.policy }

// Len returns the current limb count, including high zero limbs.
func (m Magnitude) Len() int {
	if m.store == nil {
		return 0
	}
	return m.store.Len()
}

// UsedLen returns the limb count after trimming all-zero limbs from the top.
// It is recomputed on every call.
func (m Magnitude) UsedLen() int {
	n := m.Len()
	for n > 0 && m.store.Load(n-1) == 0 {
		n--
	}
	return n
}

// At reads limb i, treating anything past the end as zero.
func (m Magnitude) At(i int) limb.Limb {
	if i < 0 || i >= m.Len() {
		return 0
	}
	return m.store.Load(i)
}

// Get reads limb i according to the policy.
func (m Magnitude) Get(i int) (limb.Limb, error) {
	if i < 0 || i >= m.Len() {
		if m.policy == Checked {
			return 0, fmt.Errorf("%w: limb %d of %d", ErrOutOfBounds, i, m.Len())
		}
		return 0, nil
	}
	return m.store.Load(i), nil
}

// Set stores v at index i, which must already exist.
func (m *Magnitude) Set(i int, v limb.Limb) error {
	if i < 0 || i >= m.Len() {
		return fmt.Errorf("%w: limb %d of %d", ErrOutOfBounds, i, m.Len())
	}
	m.store.Save(i, v)
	return nil
}

// Ensure zero-extends the magnitude to at least n limbs.
func (m *Magnitude) Ensure(n int) error {
	if m.store == nil {
		m.store = NewVector(0)
	}
	if n <= m.store.Len() {
		return nil
	}
	return m.store.Resize(n)
}

// Put zero-extends through index i and then stores v there.
func (m *Magnitude) Put(i int, v limb.Limb) error {
	if err := m.Ensure(i + 1); err != nil {
		return err
	}
	m.store.Save(i, v)
	return nil
}

// Truncate drops limbs above n. It never grows the magnitude.
func (m *Magnitude) Truncate(n int) {
	if n < 0 || m.store == nil || n >= m.store.Len() {
		return
	}
	_ = m.store.Resize(n) //nolint:errcheck // shrinking cannot fail.
}

// Clone returns a deep copy.
func (m Magnitude) Clone() Magnitude {
	if m.store == nil {
		return Magnitude{policy: m.policy}
	}
	return Magnitude{store: m.store.Clone(), policy: m.policy}
}

// set and put are the engine's internal writers. Engine results are always
// Vector-backed, so a failure here is a bug rather than an input error.
func (m *Magnitude) set(i int, v limb.Limb) {
	if err := m.Set(i, v); err != nil {
		panic(err)
	}
}

func (m *Magnitude) put(i int, v limb.Limb) {
	if err := m.Put(i, v); err != nil {
		panic(err)
	}
}

// shiftInBit shifts the magnitude left by one bit and inserts bit as the
// new lowest bit, appending a limb when the top bit falls off.
func (m *Magnitude) shiftInBit(bit limb.Limb) {
	carry := bit & 1
	n := m.Len()
	for i := 0; i < n; i++ {
		l := m.store.Load(i)
		m.store.Save(i, l<<1|carry)
		carry = l >> (limb.Bits - 1)
	}
	if carry != 0 {
		m.put(n, carry)
	}
}
