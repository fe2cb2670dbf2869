package prime

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"bigrsa/internal/bignum"
	"bigrsa/internal/observ"
	"bigrsa/internal/random"
	"bigrsa/internal/trace"
)

// ErrBitSize indicates a requested prime width below two bits.
var ErrBitSize = errors.New("prime width must be at least 2 bits")

// Sampler draws both candidates and witnesses.
type Sampler interface {
	Source
	// Get returns a value of at most nBits bits.
	Get(nBits int) bignum.Int
}

// Options controls a search.
type Options struct {
	Bits   int
	Rounds int                 // Miller–Rabin rounds, DefaultRounds if <= 0
	Stats  *observ.SearchStats // optional
}

// Candidate draws a bits-wide odd value: bit bits-1 and bit 0 are forced on.
func Candidate(src Sampler, bits int) (bignum.Int, error) {
	if bits < 2 {
		return bignum.Int{}, fmt.Errorf("%w: got %d", ErrBitSize, bits)
	}
	n := src.Get(bits)
	if n.Bit(bits-1) == 0 {
		top := bignum.FromUint64(1).Lsh(uint(bits - 1)) //nolint:gosec // G115: bits >= 2.
		n = n.Add(top)
	}
	if !n.IsOdd() {
		n = n.Inc()
	}
	return n, nil
}

// Search draws candidates from src until one passes the primality test or
// ctx is done.
func Search(ctx context.Context, src Sampler, opts Options) (bignum.Int, error) {
	if opts.Bits < 2 {
		return bignum.Int{}, fmt.Errorf("%w: got %d", ErrBitSize, opts.Bits)
	}
	stats := opts.Stats
	if stats == nil {
		stats = new(observ.SearchStats)
	}
	tr := trace.FromContext(ctx)
	parent := trace.ParentSpan(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return bignum.Int{}, err
		}
		n, err := Candidate(src, opts.Bits)
		if err != nil {
			return bignum.Int{}, err
		}
		stats.Candidates.Add(1)
		if testCounted(n, opts.Rounds, src, stats) {
			stats.Found.Add(1)
			trace.Point(tr, trace.ScopeCandidate, "accept", n.String(), parent)
			return n, nil
		}
		trace.Point(tr, trace.ScopeCandidate, "reject", n.String(), parent)
	}
}

// testCounted is Test with the work recorded in stats.
func testCounted(n bignum.Int, rounds int, src Source, stats *observ.SearchStats) bool {
	if !LowLevel(n) {
		stats.TrialReject.Add(1)
		return false
	}
	if !n.Greater(tableLimit) {
		return true
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	d, s := decompose(n)
	nMinus1 := n.Dec()
	for i := 0; i < rounds; i++ {
		stats.Rounds.Add(1)
		if !millerRabinRound(n, nMinus1, d, s, src) {
			return false
		}
	}
	return true
}

// Found is a prime reported by a parallel search.
type Found struct {
	Worker int
	Prime  bignum.Int
}

// ParallelOptions controls SearchParallel.
type ParallelOptions struct {
	Options
	Seed    uint32
	Workers int // runtime.GOMAXPROCS(0) if <= 0
	Count   int // distinct primes wanted, 1 if <= 0
	// OnFound is called from the collecting goroutine for every new prime.
	OnFound func(Found)
}

// SearchParallel runs Workers independent searches and returns the first
// Count distinct primes found. Worker i owns a sampler seeded with Seed+i,
// so a run with one worker is reproducible. If ctx ends first, the primes
// found so far are returned with ctx's error.
func SearchParallel(ctx context.Context, opts ParallelOptions) ([]bignum.Int, error) {
	if opts.Bits < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrBitSize, opts.Bits)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	count := opts.Count
	if count <= 0 {
		count = 1
	}
	if opts.Stats == nil {
		opts.Stats = new(observ.SearchStats)
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tr := trace.FromContext(ctx)
	found := make(chan Found)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < workers; i++ {
		offset, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("worker index %d: %w", i, err)
		}
		g.Go(func() error {
			span := trace.Begin(tr, trace.ScopeWorker, "worker", trace.ParentSpan(gctx))
			span.WithExtra("seed", strconv.FormatUint(uint64(opts.Seed+offset), 10))
			defer span.End("")

			wctx := trace.WithSpan(gctx, span)
			src := random.New(opts.Seed + offset)
			for {
				p, err := Search(wctx, src, opts.Options)
				if err != nil {
					// cancellation is how the collector stops workers
					return nil
				}
				select {
				case found <- Found{Worker: i, Prime: p}:
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	primes := make([]bignum.Int, 0, count)
collect:
	for len(primes) < count {
		select {
		case f := <-found:
			if containsInt(primes, f.Prime) {
				continue
			}
			primes = append(primes, f.Prime)
			if opts.OnFound != nil {
				opts.OnFound(f)
			}
		case <-gctx.Done():
			break collect
		}
	}
	cancel()
	if err := g.Wait(); err != nil {
		return primes, err
	}
	if len(primes) < count {
		if err := parent.Err(); err != nil {
			return primes, err
		}
	}
	return primes, nil
}

func containsInt(xs []bignum.Int, v bignum.Int) bool {
	for _, x := range xs {
		if x.Equal(v) {
			return true
		}
	}
	return false
}
