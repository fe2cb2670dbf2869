package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bigrsa/internal/bignum"
	"bigrsa/internal/prime"
	"bigrsa/internal/rsakey"
)

func newKeygenCmd() *cobra.Command {
	var (
		bits     int
		workers  int
		rounds   int
		seed     uint32
		exponent string
		out      string
		pubOut   string
		fromP    string
		fromQ    string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key and write it as a msgpack key file",
		Long: `Generate searches two primes of half the modulus width, or uses --p and
--q when given, and writes the private key to --out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := sessionFrom(cmd)
			fl := cmd.Flags()
			if !fl.Changed("bits") {
				bits = s.cfg.Key.Bits
			}
			if !fl.Changed("workers") {
				workers = s.cfg.Prime.Workers
			}
			if !fl.Changed("rounds") {
				rounds = s.cfg.Prime.Rounds
			}
			if !fl.Changed("seed") {
				seed = s.cfg.Prime.Seed
			}
			if !fl.Changed("out") {
				out = s.cfg.Resolve(s.cfg.Key.File)
			}

			e, err := s.cfg.Exponent()
			if fl.Changed("exponent") {
				e, err = s.operand("exponent", exponent)
			}
			if err != nil {
				return err
			}

			var key *rsakey.PrivateKey
			if fromP != "" || fromQ != "" {
				key, err = keyFromPrimes(s, fromP, fromQ, e)
			} else {
				done := s.phase("keygen")
				key, err = rsakey.Generate(cmd.Context(), rsakey.GenerateOptions{
					Bits:     bits,
					Rounds:   rounds,
					Seed:     seed,
					Workers:  workers,
					Exponent: e,
					Stats:    s.stats,
					OnFound: func(f prime.Found) {
						s.note(cmd, "worker %d found %d-bit prime\n", f.Worker, f.Prime.BitLen())
					},
				})
				done(fmt.Sprintf("%d bits", bits))
			}
			if err != nil {
				return err
			}

			done := s.phase("save")
			if err := key.Save(out); err != nil {
				done("failed")
				return err
			}
			if pubOut != "" {
				if err := key.PublicKey.Save(pubOut); err != nil {
					done("failed")
					return err
				}
			}
			done(out)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "n = %s\ne = %s\n", key.N, key.E)
			s.note(cmd, "wrote %d-bit key to %s\n", key.Bits(), out)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&bits, "bits", 512, "modulus width (default from [key].bits)")
	fl.IntVarP(&workers, "workers", "j", 0, "parallel search workers (default from [prime].workers)")
	fl.IntVar(&rounds, "rounds", prime.DefaultRounds, "Miller-Rabin rounds (default from [prime].rounds)")
	fl.Uint32Var(&seed, "seed", 1, "base sampler seed (default from [prime].seed)")
	fl.StringVar(&exponent, "exponent", "0x10001", "public exponent (default from [key].exponent)")
	fl.StringVarP(&out, "out", "o", "", "private key file (default from [key].file)")
	fl.StringVar(&pubOut, "public-out", "", "also write the public key here")
	fl.StringVar(&fromP, "p", "", "use this prime (or #N for line N of the prime store) instead of searching")
	fl.StringVar(&fromQ, "q", "", "second prime, same forms as --p")
	return cmd
}

// keyFromPrimes builds a key from explicit primes. A value of the form #N
// reads line N of the configured prime store.
func keyFromPrimes(s *session, rawP, rawQ string, e bignum.Int) (*rsakey.PrivateKey, error) {
	if rawP == "" || rawQ == "" {
		return nil, errors.New("--p and --q must be given together")
	}
	done := s.phase("from primes")
	defer done("")

	p, err := s.primeArg("p", rawP)
	if err != nil {
		return nil, err
	}
	q, err := s.primeArg("q", rawQ)
	if err != nil {
		return nil, err
	}
	return rsakey.FromPrimes(p, q, e)
}

func (s *session) primeArg(name, raw string) (bignum.Int, error) {
	if line, ok := strings.CutPrefix(raw, "#"); ok {
		n, err := strconv.Atoi(line)
		if err != nil {
			return bignum.Int{}, fmt.Errorf("--%s: bad line number %q", name, line)
		}
		return openStore(s).Nth(n)
	}
	return s.operand(name, raw)
}
