// Package random provides the seeded, non-cryptographic generator that
// drives prime search and Miller–Rabin witness selection.
//
// A Sampler is not safe for concurrent use. Parallel searches give every
// worker its own Sampler.
package random

import (
	"bigrsa/internal/bignum"
	"bigrsa/internal/limb"
)

// Sampler is a 32-bit integer mixing generator.
type Sampler struct {
	seed uint32
}

// New returns a sampler starting from seed.
func New(seed uint32) *Sampler {
	return &Sampler{seed: seed}
}

// Seed returns the current internal state.
func (s *Sampler) Seed() uint32 { return s.seed }

// Get32 advances the state and returns two rounds of multiply and
// xor-fold over it.
func (s *Sampler) Get32() uint32 {
	s.seed += 0xe120fc15
	tmp := uint64(s.seed) * 0x4a39b70d
	m1 := uint32((tmp >> 32) ^ tmp) //nolint:gosec // G115: truncation is the mixing step.
	tmp = uint64(m1) * 0x12fad5c9
	return uint32((tmp >> 32) ^ tmp) //nolint:gosec // G115: truncation is the mixing step.
}

// Get16 returns the low 16 bits of a 32-bit draw.
func (s *Sampler) Get16() uint16 {
	return uint16(s.Get32()) //nolint:gosec // G115: truncation is intentional.
}

// Get1 returns the low bit of a 32-bit draw.
func (s *Sampler) Get1() bool {
	return s.Get32()&1 == 1
}

// Get64 packs two consecutive 32-bit draws, low half first.
func (s *Sampler) Get64() uint64 {
	lo := s.Get32()
	hi := s.Get32()
	return limb.FromHalves(lo, hi).U64()
}

// Get returns a value of at most nBits bits: whole limbs are filled with
// 64-bit draws and a final partial limb is masked to the remaining bits.
func (s *Sampler) Get(nBits int) bignum.Int {
	if nBits <= 0 {
		return bignum.Zero()
	}
	full := nBits / limb.Bits
	rest := nBits % limb.Bits

	m := bignum.NewMagnitude(bignum.NewVector(0), bignum.Lenient)
	for i := 0; i < full; i++ {
		_ = m.Put(i, limb.Limb(s.Get64())) //nolint:errcheck // vector stores always grow.
	}
	if rest > 0 {
		mask := limb.Max >> (limb.Bits - rest)
		_ = m.Put(full, limb.Limb(s.Get64())&mask) //nolint:errcheck // vector stores always grow.
	}
	return bignum.FromMagnitude(m)
}

// RangeTo returns a value in [0, upper].
//
// Limbs are drawn from the top down. Each limb is bounded by upper's limb
// until one comes out strictly smaller; the rest are unconstrained. The
// result is close to, but not exactly, uniform.
func (s *Sampler) RangeTo(upper bignum.Int) bignum.Int {
	n := upper.UsedLen()
	m := bignum.NewMagnitude(bignum.NewVector(n), bignum.Lenient)
	bounded := true
	for i := n - 1; i >= 0; i-- {
		bound, _ := upper.WithPolicy(bignum.Lenient).Limb(i) //nolint:errcheck // lenient reads never fail.
		limit := limb.Max
		if bounded {
			limit = bound
		}
		v := s.uniform(limit)
		_ = m.Set(i, v) //nolint:errcheck // i < n.
		if bounded && v < bound {
			bounded = false
		}
	}
	return bignum.FromMagnitude(m)
}

// Range returns a value in [lo, hi]. hi must not be below lo.
func (s *Sampler) Range(lo, hi bignum.Int) bignum.Int {
	return lo.Add(s.RangeTo(hi.Sub(lo)))
}

// uniform returns a draw in [0, limit].
func (s *Sampler) uniform(limit limb.Limb) limb.Limb {
	v := limb.Limb(s.Get64())
	if limit == limb.Max {
		return v
	}
	return v % (limit + 1)
}
