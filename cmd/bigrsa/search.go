package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"bigrsa/internal/bignum"
	"bigrsa/internal/prime"
	"bigrsa/internal/primestore"
	"bigrsa/internal/ui"
)

type searchFlags struct {
	bits    int
	count   int
	workers int
	rounds  int
	seed    uint32
	store   string
	noStore bool
	ui      string
}

func newSearchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for random probable primes of a given width",
		Long: `Search runs parallel Miller-Rabin workers, each with its own sampler
seeded seed+i. Found primes are printed and appended to the prime store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.bits, "bits", 256, "prime width in bits (default from [prime].bits)")
	fl.IntVarP(&f.count, "count", "n", 1, "number of distinct primes to find")
	fl.IntVarP(&f.workers, "workers", "j", 0, "parallel workers, 0 for GOMAXPROCS (default from [prime].workers)")
	fl.IntVar(&f.rounds, "rounds", prime.DefaultRounds, "Miller-Rabin rounds (default from [prime].rounds)")
	fl.Uint32Var(&f.seed, "seed", 1, "base sampler seed (default from [prime].seed)")
	fl.StringVar(&f.store, "store", "", "prime store file (default from [prime].store)")
	fl.BoolVar(&f.noStore, "no-store", false, "do not append found primes to the store")
	fl.StringVar(&f.ui, "ui", "auto", "progress view (auto|on|off)")
	return cmd
}

func runSearch(cmd *cobra.Command, f searchFlags) error {
	s := sessionFrom(cmd)
	fl := cmd.Flags()
	if !fl.Changed("bits") {
		f.bits = s.cfg.Prime.Bits
	}
	if !fl.Changed("workers") {
		f.workers = s.cfg.Prime.Workers
	}
	if !fl.Changed("rounds") {
		f.rounds = s.cfg.Prime.Rounds
	}
	if !fl.Changed("seed") {
		f.seed = s.cfg.Prime.Seed
	}
	if !fl.Changed("store") {
		f.store = s.cfg.Resolve(s.cfg.Prime.Store)
	}
	mode, err := readUIMode(f.ui)
	if err != nil {
		return err
	}

	var store *primestore.File
	if !f.noStore && f.store != "" {
		store = primestore.Open(f.store)
	}

	done := s.phase("search")
	var (
		primes []bignum.Int
		runErr error
	)
	if shouldUseTUI(mode, cmd.OutOrStdout()) {
		primes, runErr = searchWithUI(cmd, s, f)
	} else {
		primes, runErr = prime.SearchParallel(cmd.Context(), searchOptions(s, f, func(found prime.Found) {
			fmt.Fprintln(cmd.OutOrStdout(), found.Prime)
		}))
	}
	done(plural(len(primes), "prime"))

	if store != nil {
		for _, p := range primes {
			if err := store.Append(p); err != nil {
				return err
			}
		}
		if len(primes) > 0 {
			s.note(cmd, "appended %s to %s\n", plural(len(primes), "prime"), store.Path())
		}
	}
	return runErr
}

func searchOptions(s *session, f searchFlags, onFound func(prime.Found)) prime.ParallelOptions {
	return prime.ParallelOptions{
		Options: prime.Options{Bits: f.bits, Rounds: f.rounds, Stats: s.stats},
		Seed:    f.seed,
		Workers: f.workers,
		Count:   f.count,
		OnFound: onFound,
	}
}

// searchWithUI runs the search in the background while the progress view
// owns the terminal. Closing the view cancels the search.
func searchWithUI(cmd *cobra.Command, s *session, f searchFlags) ([]bignum.Int, error) {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events := make(chan ui.Event)
	send := func(ev ui.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	var (
		wg     sync.WaitGroup
		primes []bignum.Int
		err    error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(events)
		primes, err = prime.SearchParallel(ctx, searchOptions(s, f, func(found prime.Found) {
			send(ui.Event{Worker: found.Worker, Prime: found.Prime.String(), Stats: s.stats.Snapshot()})
		}))
	}()

	title := fmt.Sprintf("searching %d-bit primes", f.bits)
	uiErr := ui.RunSearch(ctx, cmd.OutOrStdout(), title, f.count, events)
	cancel()
	wg.Wait()
	if uiErr != nil && err == nil {
		err = uiErr
	}
	return primes, err
}
