package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tower/internal/project"
	"tower/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// Flags that were not set fall back to the [trace] table of the manifest.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command, manifest *project.Manifest) (func(), error) {
	root := cmd.Root()
	cfg := project.Default().Trace
	if manifest != nil {
		cfg = manifest.Config.Trace
	}

	// Read trace configuration from flags
	traceOutput, err := stringFlag(cmd, "trace", cfg.Output)
	if err != nil {
		return nil, err
	}
	levelStr, err := stringFlag(cmd, "trace-level", cfg.Level)
	if err != nil {
		return nil, err
	}
	modeStr, err := stringFlag(cmd, "trace-mode", cfg.Mode)
	if err != nil {
		return nil, err
	}
	formatStr, err := stringFlag(cmd, "trace-format", cfg.Format)
	if err != nil {
		return nil, err
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off, skip tracing
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	// Attach tracer to context
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(ctx, tracer, heartbeatInterval)
	}

	cleanup := func() {
		// Stop heartbeat first
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if err := tracer.Flush(); err != nil {
			logger.Warn("trace: flush error", "error", err)
		}
		if err := tracer.Close(); err != nil {
			logger.Warn("trace: close error", "error", err)
		}
	}
	return cleanup, nil
}

// stringFlag returns a persistent flag value, or def when the flag was not
// given on the command line.
func stringFlag(cmd *cobra.Command, name, def string) (string, error) {
	flags := cmd.Root().PersistentFlags()
	value, err := flags.GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !flags.Changed(name) && def != "" {
		return def, nil
	}
	return value, nil
}
