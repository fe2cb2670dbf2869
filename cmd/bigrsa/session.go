package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"bigrsa/internal/bignum"
	"bigrsa/internal/config"
	"bigrsa/internal/observ"
	"bigrsa/internal/prof"
	"bigrsa/internal/trace"
)

// session is the per-invocation state shared by every command.
type session struct {
	cfg       config.Config
	tracer    trace.Tracer
	heartbeat *trace.Heartbeat
	profiler  *prof.Profiler
	span      *trace.Span
	timer     *observ.Timer
	stats     *observ.SearchStats
	quiet     bool
	timings   bool
}

type sessionKey struct{}

func openSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(cmd.OutOrStdout())
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}

	s := &session{timer: observ.NewTimer(), stats: new(observ.SearchStats)}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}

	idx := s.timer.Begin("config")
	if s.cfg, err = loadConfig(cmd); err != nil {
		return nil, err
	}
	note := "defaults"
	if s.cfg.Path != "" {
		note = s.cfg.Path
	}
	s.timer.End(idx, note)

	if s.tracer, s.heartbeat, err = setupTracing(cmd); err != nil {
		return nil, err
	}
	if s.profiler, err = setupProfiling(cmd); err != nil {
		s.heartbeat.Stop()
		_ = s.tracer.Close()
		return nil, err
	}
	s.span = trace.Begin(s.tracer, trace.ScopeCommand, cmd.CommandPath(), 0)

	ctx := trace.WithTracer(cmd.Context(), s.tracer)
	ctx = trace.WithSpan(ctx, s.span)
	ctx = context.WithValue(ctx, sessionKey{}, s)
	cmd.SetContext(ctx)
	return s, nil
}

func setupProfiling(cmd *cobra.Command) (*prof.Profiler, error) {
	flags := cmd.Root().PersistentFlags()
	var (
		opts prof.Options
		err  error
	)
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return nil, err
	}
	if opts.Heap, err = flags.GetString("mem-profile"); err != nil {
		return nil, err
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, err
	}
	if !opts.Enabled() {
		return nil, nil
	}
	return prof.Start(opts)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("policy") {
		policy, _ := flags.GetString("policy") //nolint:errcheck // registered above
		cfg.Engine.Policy = policy
		if err := cfg.Validate(); err != nil {
			return config.Config{}, fmt.Errorf("--policy: %w", err)
		}
	}
	return cfg, nil
}

// sessionFrom returns the session opened for cmd.
func sessionFrom(cmd *cobra.Command) *session {
	if s, ok := cmd.Context().Value(sessionKey{}).(*session); ok {
		return s
	}
	// commands always run after PersistentPreRunE
	panic("bigrsa: command run without a session")
}

// finish closes the command span, dumps the trace ring when the command
// failed and prints timings.
func (s *session) finish(stderr io.Writer, runErr error) {
	detail := "ok"
	if runErr != nil {
		detail = runErr.Error()
	}
	s.span.End(detail)

	if runErr != nil {
		if ring := trace.RingOf(s.tracer); ring != nil {
			fmt.Fprintln(stderr, "trace (most recent events):")
			if err := ring.Dump(stderr, trace.FormatText); err != nil {
				fmt.Fprintf(stderr, "trace: dump error: %v\n", err)
			}
		}
	}
	if s.timings && !s.quiet {
		fmt.Fprint(stderr, s.timer.Summary())
		if st := s.stats.Snapshot(); st.Candidates > 0 {
			fmt.Fprint(stderr, st.Summary())
		}
	}

	if err := s.profiler.Stop(); err != nil {
		fmt.Fprintf(stderr, "profile: %v\n", err)
	}
	s.heartbeat.Stop()
	if err := s.tracer.Flush(); err != nil {
		fmt.Fprintf(stderr, "trace: flush error: %v\n", err)
	}
	if err := s.tracer.Close(); err != nil {
		fmt.Fprintf(stderr, "trace: close error: %v\n", err)
	}
}

// phase times and traces one step of a command.
func (s *session) phase(name string) func(note string) {
	idx := s.timer.Begin(name)
	span := trace.Begin(s.tracer, trace.ScopePhase, name, s.span.ID())
	return func(note string) {
		span.End(note)
		s.timer.End(idx, note)
	}
}

// operand parses a command-line value with the configured parse options.
// Input is NFKC-normalized first so full-width digits are accepted.
func (s *session) operand(name, raw string) (bignum.Int, error) {
	v, err := bignum.ParseHexWith(norm.NFKC.String(raw), s.cfg.ParseOptions())
	if err != nil {
		return bignum.Int{}, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// note prints to stderr unless --quiet is set.
func (s *session) note(cmd *cobra.Command, format string, args ...any) {
	if s.quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

// outputWriter maps a --trace value of "-" to the command's stderr so
// tests can capture it.
func outputWriter(cmd *cobra.Command, path string) io.Writer {
	if path == "-" || path == "" {
		if w := cmd.ErrOrStderr(); w != os.Stderr {
			return w
		}
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
