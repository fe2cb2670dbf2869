package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bigrsa/internal/prime"
	"bigrsa/internal/random"
)

var (
	primeColor     = color.New(color.FgGreen, color.Bold)
	compositeColor = color.New(color.FgRed)
)

func newIsPrimeCmd() *cobra.Command {
	var (
		rounds int
		seed   uint32
	)
	cmd := &cobra.Command{
		Use:   "isprime <n>...",
		Short: "Classify values as prime, probable prime or composite",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			if !cmd.Flags().Changed("rounds") {
				rounds = s.cfg.Prime.Rounds
			}
			if !cmd.Flags().Changed("seed") {
				seed = s.cfg.Prime.Seed
			}
			vals, err := s.operands(args, repeat("n", len(args))...)
			if err != nil {
				return err
			}

			done := s.phase("classify")
			src := random.New(seed)
			out := cmd.OutOrStdout()
			composites := 0
			for i, n := range vals {
				v := prime.Classify(n, rounds, src)
				c := compositeColor
				if v.IsPrime() {
					c = primeColor
				} else {
					composites++
				}
				fmt.Fprintf(out, "%s %s\n", args[i], c.Sprint(v))
			}
			done(fmt.Sprintf("%d composite", composites))
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", prime.DefaultRounds, "Miller-Rabin rounds (default from [prime].rounds)")
	cmd.Flags().Uint32Var(&seed, "seed", 1, "witness sampler seed (default from [prime].seed)")
	return cmd
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
