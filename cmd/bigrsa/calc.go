package main

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"bigrsa/internal/bignum"
)

var errShiftRange = errors.New("shift amount out of range")

// maxShift is the largest shift amount calc accepts, in bits.
const maxShift = 1 << 24

type binaryOp func(a, b bignum.Int) (bignum.Int, error)

func pure(f func(a, b bignum.Int) bignum.Int) binaryOp {
	return func(a, b bignum.Int) (bignum.Int, error) { return f(a, b), nil }
}

func shift(f func(x bignum.Int, n uint) bignum.Int) binaryOp {
	return func(a, b bignum.Int) (bignum.Int, error) {
		n64, ok := b.Uint64()
		if !ok || n64 > maxShift {
			return bignum.Int{}, fmt.Errorf("%w: %s exceeds %d bits", errShiftRange, b, maxShift)
		}
		n, err := safecast.Conv[uint](n64)
		if err != nil {
			return bignum.Int{}, fmt.Errorf("%w: %w", errShiftRange, err)
		}
		return f(a, n), nil
	}
}

var binaryOps = map[string]binaryOp{
	"+":  pure(bignum.Int.Add),
	"-":  pure(bignum.Int.Sub),
	"*":  pure(bignum.Int.Mul),
	"&":  pure(bignum.Int.And),
	"|":  pure(bignum.Int.Or),
	"^":  pure(bignum.Int.Xor),
	"<<": shift(bignum.Int.Lsh),
	">>": shift(bignum.Int.Rsh),
	"/": func(a, b bignum.Int) (bignum.Int, error) {
		q, _, err := bignum.DivMod(a, b)
		return q, err
	},
	"%": func(a, b bignum.Int) (bignum.Int, error) {
		_, r, err := bignum.DivMod(a, b)
		return r, err
	},
}

var unaryOps = map[string]func(bignum.Int) bignum.Int{
	"not": bignum.Int.Not,
	"neg": bignum.Int.Neg,
	"inc": bignum.Int.Inc,
	"dec": bignum.Int.Dec,
}

func newCalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc <a> <op> <b> | calc <not|neg|inc|dec> <a>",
		Short: "Evaluate one big-integer operation on hexadecimal operands",
		Long: `Evaluate one operation. Binary operators: + - * / % & | ^ << >> cmp.
Subtraction wraps to the two's complement when b > a; & | ^ narrow to the
shorter operand.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runCalc,
	}
}

func runCalc(cmd *cobra.Command, args []string) error {
	s := sessionFrom(cmd)
	done := s.phase("calc")

	if len(args) == 2 {
		op, ok := unaryOps[strings.ToLower(args[0])]
		if !ok {
			done("unknown operator")
			return fmt.Errorf("unknown unary operator %q (expected not|neg|inc|dec)", args[0])
		}
		a, err := s.operand("a", args[1])
		if err != nil {
			done("parse error")
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), op(a))
		done(args[0])
		return nil
	}

	a, err := s.operand("a", args[0])
	if err != nil {
		done("parse error")
		return err
	}
	b, err := s.operand("b", args[2])
	if err != nil {
		done("parse error")
		return err
	}

	if args[1] == "cmp" {
		fmt.Fprintln(cmd.OutOrStdout(), a.Cmp(b))
		done("cmp")
		return nil
	}
	op, ok := binaryOps[args[1]]
	if !ok {
		done("unknown operator")
		return fmt.Errorf("unknown operator %q", args[1])
	}
	r, err := op(a, b)
	if err != nil {
		done(err.Error())
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), r)
	done(args[1])
	return nil
}
