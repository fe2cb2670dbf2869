package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bigrsa/internal/bignum"
	"bigrsa/internal/euclid"
)

func newPowModCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "powmod <base> <exponent> <modulus>",
		Short: "Compute base^exponent mod modulus",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			vals, err := s.operands(args, "base", "exponent", "modulus")
			if err != nil {
				return err
			}
			if vals[2].IsZero() {
				return fmt.Errorf("modulus: %w", bignum.ErrDivByZero)
			}
			done := s.phase("powmod")
			r := vals[0].PowMod(vals[1], vals[2])
			done(fmt.Sprintf("%d-bit exponent", vals[1].BitLen()))
			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func newGCDCmd() *cobra.Command {
	var extended bool
	cmd := &cobra.Command{
		Use:   "gcd <a> <b>",
		Short: "Compute the greatest common divisor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			vals, err := s.operands(args, "a", "b")
			if err != nil {
				return err
			}
			done := s.phase("gcd")
			defer done("")
			out := cmd.OutOrStdout()
			if !extended {
				fmt.Fprintln(out, euclid.GCD(vals[0], vals[1]))
				return nil
			}
			g, x, y := euclid.ExtendedGCD(vals[0], vals[1])
			fmt.Fprintf(out, "g = %s\nx = %s\ny = %s\n", g, x, y)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&extended, "extended", "x", false, "also print Bézout coefficients x, y with x*a + y*b = g")
	return cmd
}

func newInverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inverse <e> <m>",
		Short: "Compute d with d*e = 1 (mod m)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sessionFrom(cmd)
			vals, err := s.operands(args, "e", "m")
			if err != nil {
				return err
			}
			done := s.phase("inverse")
			d, err := euclid.ModInverse(vals[0], vals[1])
			if err != nil {
				done("not invertible")
				return err
			}
			done("")
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

// operands parses args in order, naming each by names.
func (s *session) operands(args []string, names ...string) ([]bignum.Int, error) {
	done := s.phase("parse")
	defer done("")
	out := make([]bignum.Int, len(args))
	for i, raw := range args {
		v, err := s.operand(names[i], raw)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
