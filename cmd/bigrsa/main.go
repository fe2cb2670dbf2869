package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bigrsa/internal/version"
)

var errorColor = color.New(color.FgRed, color.Bold)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs one CLI invocation and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var sess *session
	root := newRootCmd(&sess)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if sess != nil {
		sess.finish(stderr, err)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorColor.Sprint("error:"), err)
		return 1
	}
	return 0
}

func newRootCmd(sess **session) *cobra.Command {
	root := &cobra.Command{
		Use:           "bigrsa",
		Short:         "Big-integer arithmetic, prime search and textbook RSA",
		Long:          `bigrsa drives a limb-vector big-integer engine: hexadecimal arithmetic, Miller-Rabin prime search and RSA key generation.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			*sess = s
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("config", "", "path to bigrsa.toml (default: search upwards from the working directory)")
	pf.String("policy", "", "operand read policy, overrides [engine].policy (checked|lenient)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the trace ring")
	pf.Duration("trace-heartbeat", 0, "trace heartbeat interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime execution trace to file")

	root.AddCommand(
		newCalcCmd(),
		newPowModCmd(),
		newGCDCmd(),
		newInverseCmd(),
		newIsPrimeCmd(),
		newSearchCmd(),
		newKeygenCmd(),
		newEncryptCmd(),
		newDecryptCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newVersionCmd(),
	)
	return root
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int.
}
