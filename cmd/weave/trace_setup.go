package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"weave/internal/trace"
)

// crashTracer is read by dumpTraceOnPanic; nil outside a traced run.
var crashTracer atomic.Pointer[trace.RingTracer]

type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	pf := cmd.Root().PersistentFlags()
	var (
		f   traceFlags
		err error
	)
	if f.output, err = pf.GetString("trace"); err != nil {
		return f, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if f.level, err = pf.GetString("trace-level"); err != nil {
		return f, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if f.mode, err = pf.GetString("trace-mode"); err != nil {
		return f, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if f.ringSize, err = pf.GetInt("trace-ring-size"); err != nil {
		return f, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if f.heartbeat, err = pf.GetDuration("trace-heartbeat"); err != nil {
		return f, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	return f, nil
}

// setupTracing installs the tracer on the command context and returns
// the function that flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	f, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	level, err := trace.ParseLevel(f.level)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && f.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: f.output,
		RingSize:   f.ringSize,
	})
	if err != nil {
		return nil, err
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	crashTracer.Store(ringOf(tracer))
	heartbeat := trace.StartHeartbeat(tracer, f.heartbeat)

	return func() {
		heartbeat.Stop()
		crashTracer.Store(nil)
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceOnPanic prints the ring before re-panicking so a crash leaves
// the last events behind.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if ring := crashTracer.Load(); ring != nil {
		fmt.Fprintln(os.Stderr, "trace: last events before panic:")
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t
	case *trace.MultiTracer:
		return t.Ring()
	}
	return nil
}
