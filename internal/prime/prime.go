// Package prime implements the probable-prime test used for key material:
// trial division against a small-prime table followed by Miller–Rabin with
// a caller-chosen number of witnesses.
package prime

import (
	"bigrsa/internal/bignum"
)

// DefaultRounds is the witness count used when a caller passes zero.
const DefaultRounds = 20

// smallPrimes are the first 70 primes.
var smallPrimes = [...]uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29,
	31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113,
	127, 131, 137, 139, 149, 151, 157, 163, 167, 173,
	179, 181, 191, 193, 197, 199, 211, 223, 227, 229,
	233, 239, 241, 251, 257, 263, 269, 271, 277, 281,
	283, 293, 307, 311, 313, 317, 331, 337, 347, 349,
}

// tableLimit is the square of the largest tabulated prime. At or below it
// trial division alone is a complete test.
var tableLimit = bignum.FromUint64(smallPrimes[len(smallPrimes)-1] * smallPrimes[len(smallPrimes)-1])

// Source supplies Miller–Rabin witnesses.
type Source interface {
	// Range returns a value in [lo, hi].
	Range(lo, hi bignum.Int) bignum.Int
}

// Verdict is the outcome of Classify.
type Verdict uint8

const (
	// Composite means n is certainly not prime.
	Composite Verdict = iota
	// ProbablePrime means n passed every Miller–Rabin round.
	ProbablePrime
	// Prime means n is small enough for trial division to be conclusive.
	Prime
)

// String returns the string representation of Verdict.
func (v Verdict) String() string {
	switch v {
	case Composite:
		return "composite"
	case ProbablePrime:
		return "probable prime"
	case Prime:
		return "prime"
	default:
		return "unknown"
	}
}

// IsPrime reports whether the verdict accepts the candidate.
func (v Verdict) IsPrime() bool { return v != Composite }

// LowLevel runs the trial-division filter.
//
// Values below 2 are rejected. Above tableLimit a candidate passes when no
// tabulated prime divides it, which says nothing about larger factors.
// Below it the walk stops with a definite answer as soon as n < p*p.
func LowLevel(n bignum.Int) bool {
	if n.Less(bignum.FromUint64(2)) {
		return false
	}
	if n.Greater(tableLimit) {
		for _, p := range smallPrimes {
			if n.Mod(bignum.FromUint64(p)).IsZero() {
				return false
			}
		}
		return true
	}
	for _, p := range smallPrimes {
		if n.Less(bignum.FromUint64(p * p)) {
			return true
		}
		if n.Mod(bignum.FromUint64(p)).IsZero() {
			return false
		}
	}
	return true
}

// decompose returns d and s with n-1 = d * 2^s and d odd.
func decompose(n bignum.Int) (d bignum.Int, s int) {
	d = n.Dec()
	for !d.IsZero() && !d.IsOdd() {
		d = d.Rsh(1)
		s++
	}
	return d, s
}

// millerRabinRound runs one round with a random witness in [2, n-2].
func millerRabinRound(n, nMinus1, d bignum.Int, s int, src Source) bool {
	one := bignum.FromUint64(1)
	a := src.Range(bignum.FromUint64(2), n.SubLimb(2))
	x := a.PowMod(d, n)
	if x.Equal(one) || x.Equal(nMinus1) {
		return true
	}
	for r := 1; r < s; r++ {
		x = x.Mul(x).Mod(n)
		if x.Equal(nMinus1) {
			return true
		}
		if x.Equal(one) {
			return false
		}
	}
	return false
}

// MillerRabin runs rounds independent Miller–Rabin rounds on n.
// A single failing round rejects n. Values below 5 and even values have no
// witness range and are answered directly.
func MillerRabin(n bignum.Int, rounds int, src Source) bool {
	if n.Less(bignum.FromUint64(5)) {
		v, _ := n.Uint64()
		return v == 2 || v == 3
	}
	if !n.IsOdd() {
		return false
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	d, s := decompose(n)
	nMinus1 := n.Dec()
	for i := 0; i < rounds; i++ {
		if !millerRabinRound(n, nMinus1, d, s, src) {
			return false
		}
	}
	return true
}

// Classify runs trial division and, for values above the table range,
// rounds Miller–Rabin rounds.
func Classify(n bignum.Int, rounds int, src Source) Verdict {
	if !LowLevel(n) {
		return Composite
	}
	if !n.Greater(tableLimit) {
		return Prime
	}
	if !MillerRabin(n, rounds, src) {
		return Composite
	}
	return ProbablePrime
}

// Test reports whether n is prime or probably prime.
func Test(n bignum.Int, rounds int, src Source) bool {
	return Classify(n, rounds, src).IsPrime()
}
