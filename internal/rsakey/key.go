// Package rsakey builds textbook RSA keys on top of bignum, prime and euclid.
//
// There is no padding and no constant-time arithmetic. The package exists
// to exercise the engine end to end, not to protect data.
package rsakey

import (
	"context"
	"errors"
	"fmt"

	"bigrsa/internal/bignum"
	"bigrsa/internal/euclid"
	"bigrsa/internal/observ"
	"bigrsa/internal/prime"
	"bigrsa/internal/trace"
)

// DefaultExponent is the public exponent used when none is given.
const DefaultExponent = 0x10001

var (
	// ErrWeakKey indicates primes or an exponent that cannot form a key.
	ErrWeakKey = errors.New("weak RSA key")
	// ErrMessageRange indicates a message or signature not below the modulus.
	ErrMessageRange = errors.New("message out of range for modulus")
	// ErrVerification indicates a signature that does not match its message.
	ErrVerification = errors.New("signature verification failed")
)

// PublicKey is the pair (N, E).
type PublicKey struct {
	N bignum.Int
	E bignum.Int
}

// PrivateKey holds the private exponent and the primes it was built from.
type PrivateKey struct {
	PublicKey
	D bignum.Int
	P bignum.Int
	Q bignum.Int
}

// Bits returns the modulus width.
func (k *PublicKey) Bits() int { return k.N.BitLen() }

// FromPrimes builds a key from p, q and the public exponent e. D is the
// inverse of e modulo (p-1)(q-1).
func FromPrimes(p, q, e bignum.Int) (*PrivateKey, error) {
	three := bignum.FromUint64(3)
	if p.Less(three) || q.Less(three) {
		return nil, fmt.Errorf("%w: primes must be at least 3", ErrWeakKey)
	}
	if p.Equal(q) {
		return nil, fmt.Errorf("%w: p and q are equal", ErrWeakKey)
	}
	phi := p.Dec().Mul(q.Dec())
	if e.Less(three) || !e.Less(phi) {
		return nil, fmt.Errorf("%w: exponent %s outside [3, phi)", ErrWeakKey, e)
	}
	d, err := euclid.ModInverse(e, phi)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWeakKey, err)
	}
	return &PrivateKey{
		PublicKey: PublicKey{N: p.Mul(q), E: e},
		D:         d,
		P:         p,
		Q:         q,
	}, nil
}

// GenerateOptions controls Generate.
type GenerateOptions struct {
	Bits     int        // modulus width; each prime gets half
	Rounds   int        // Miller–Rabin rounds
	Seed     uint32     // first search seed
	Workers  int        // parallel search workers
	Exponent bignum.Int // zero means DefaultExponent
	Stats    *observ.SearchStats
	OnFound  func(prime.Found)
}

// maxAttempts bounds how many prime pairs Generate discards because e
// divides p-1 or q-1.
const maxAttempts = 16

// Generate searches two primes of Bits/2 bits and builds a key from them.
// Pairs the exponent cannot invert over are discarded and the search is
// repeated with the next seeds.
func Generate(ctx context.Context, opts GenerateOptions) (*PrivateKey, error) {
	if opts.Bits < 8 {
		return nil, fmt.Errorf("%w: modulus of %d bits", ErrWeakKey, opts.Bits)
	}
	e := opts.Exponent
	if e.IsZero() {
		e = bignum.FromUint64(DefaultExponent)
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopePhase, "keygen", trace.ParentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	seed := opts.Seed
	for attempt := 0; attempt < maxAttempts; attempt++ {
		primes, err := prime.SearchParallel(ctx, prime.ParallelOptions{
			Options: prime.Options{Bits: opts.Bits / 2, Rounds: opts.Rounds, Stats: opts.Stats},
			Seed:    seed,
			Workers: opts.Workers,
			Count:   2,
			OnFound: opts.OnFound,
		})
		if err != nil {
			return nil, err
		}
		key, err := FromPrimes(primes[0], primes[1], e)
		if err == nil {
			span.WithExtra("attempts", fmt.Sprint(attempt+1))
			return key, nil
		}
		if !errors.Is(err, euclid.ErrNotInvertible) {
			return nil, err
		}
		trace.Point(tr, trace.ScopePhase, "discard pair", err.Error(), span.ID())
		seed += 0x9e3779b9
	}
	return nil, fmt.Errorf("%w: no invertible prime pair after %d attempts", ErrWeakKey, maxAttempts)
}

// Encrypt returns m^E mod N.
func (k *PublicKey) Encrypt(m bignum.Int) (bignum.Int, error) {
	if !m.Less(k.N) {
		return bignum.Int{}, fmt.Errorf("%w: %d-bit message, %d-bit modulus", ErrMessageRange, m.BitLen(), k.N.BitLen())
	}
	return m.PowMod(k.E, k.N), nil
}

// Decrypt returns c^D mod N.
func (k *PrivateKey) Decrypt(c bignum.Int) (bignum.Int, error) {
	if !c.Less(k.N) {
		return bignum.Int{}, fmt.Errorf("%w: %d-bit ciphertext, %d-bit modulus", ErrMessageRange, c.BitLen(), k.N.BitLen())
	}
	return c.PowMod(k.D, k.N), nil
}

// Sign returns m^D mod N.
func (k *PrivateKey) Sign(m bignum.Int) (bignum.Int, error) {
	if !m.Less(k.N) {
		return bignum.Int{}, fmt.Errorf("%w: %d-bit message, %d-bit modulus", ErrMessageRange, m.BitLen(), k.N.BitLen())
	}
	return m.PowMod(k.D, k.N), nil
}

// Verify checks that sig^E mod N equals m.
func (k *PublicKey) Verify(m, sig bignum.Int) error {
	if !m.Less(k.N) || !sig.Less(k.N) {
		return ErrMessageRange
	}
	if !sig.PowMod(k.E, k.N).Equal(m) {
		return ErrVerification
	}
	return nil
}

// Validate checks the key's internal consistency: N = P*Q and
// D*E = 1 mod (P-1)(Q-1).
func (k *PrivateKey) Validate() error {
	if !k.P.Mul(k.Q).Equal(k.N) {
		return fmt.Errorf("%w: N != P*Q", ErrWeakKey)
	}
	phi := k.P.Dec().Mul(k.Q.Dec())
	if phi.IsZero() || !k.D.Mul(k.E).Mod(phi).Equal(bignum.FromUint64(1)) {
		return fmt.Errorf("%w: D is not the inverse of E", ErrWeakKey)
	}
	return nil
}
