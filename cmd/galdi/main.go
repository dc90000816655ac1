// Command galdi captures content-addressed directory snapshots and
// computes forensic diffs between them.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/galdi-project/galdi/internal/checksum"
	"github.com/galdi-project/galdi/internal/codec"
	"github.com/galdi-project/galdi/internal/config"
	"github.com/galdi-project/galdi/internal/differ"
	"github.com/galdi-project/galdi/internal/galerr"
	"github.com/galdi-project/galdi/internal/humanfmt"
	"github.com/galdi-project/galdi/internal/plumbah"
	"github.com/galdi-project/galdi/internal/scanner"
	"github.com/galdi-project/galdi/internal/snapshot"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var verbose, quiet bool

	rootCmd := &cobra.Command{
		Use:           "galdi",
		Short:         "Content-addressed directory snapshots and forensic diffs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(verbose, quiet)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all logging except warnings")

	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newDiffCmd())

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok { //nolint:errorlint // sentinel type, not a wrapped chain
			if exitErr.message != "" {
				fmt.Fprintln(os.Stderr, exitErr.message)
			}
			return exitErr.code
		}
		// cobra's own argument/flag parsing (wrong positional-arg count,
		// unknown flags) fails before RunE ever runs, so it never reaches
		// toExitError. Per spec section 7 these are UsageErrors; beam's
		// own cmd/beam/main.go falls back to 2 here for the same reason.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

func newSnapshotCmd() *cobra.Command {
	var (
		algorithm string
		maxDepth  int
		workers   int
		output    string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <root>",
		Short: "Capture a content-addressed snapshot of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := plumbah.Start()
			root := args[0]

			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applySnapshotDefaults(cmd, cfg.Defaults, &algorithm, &workers, &maxDepth)

			alg := checksum.Algorithm(algorithm)
			if !alg.Valid() {
				return usageErr(start, fmt.Sprintf("invalid --algorithm %q", algorithm))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			scanCfg := scanner.Config{Root: root, Algorithm: alg, Parallelism: workers}
			if cmd.Flags().Changed("max-depth") {
				scanCfg.MaxDepth = &maxDepth
			}

			result, err := scanner.Scan(ctx, scanCfg)
			if err != nil {
				return toExitError(start, err)
			}

			for _, w := range result.Warnings {
				slog.Warn("scan warning", "path", w.Path, "message", w.Message)
			}
			slog.Debug("scan finished", "stats", result.Stats.String())

			snap, err := snapshot.Build(root, result.Entries, alg, result.Warnings)
			if err != nil {
				return toExitError(start, err)
			}

			env := plumbah.Wrap(plumbah.Declared{Deterministic: true, Safe: true}, start)
			data, err := codec.EncodeSnapshot(snap, env)
			if err != nil {
				return toExitError(start, err)
			}

			return emit(data, output)
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", string(checksum.AlgXXH3), "checksum algorithm (xxh3_64, blake3, sha256)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum traversal depth (unset means unbounded)")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "parallel scanner worker count")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path, or - for stdout")

	return cmd
}

func newDiffCmd() *cobra.Command {
	var (
		output string
		human  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <source-snapshot> <target-snapshot>",
		Short: "Compute the difference between two captured snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := plumbah.Start()

			source, err := readSnapshot(args[0])
			if err != nil {
				return toExitError(start, err)
			}
			target, err := readSnapshot(args[1])
			if err != nil {
				return toExitError(start, err)
			}

			d, err := differ.Compute(source, target)
			if err != nil {
				return toExitError(start, err)
			}

			if human {
				fmt.Fprint(os.Stdout, humanfmt.Diff(d))
				return nil
			}

			env := plumbah.Wrap(plumbah.Declared{Deterministic: true, Safe: true}, start)
			data, err := codec.EncodeDiff(d, env)
			if err != nil {
				return toExitError(start, err)
			}

			return emit(data, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path, or - for stdout")
	cmd.Flags().BoolVar(&human, "human", false, "print a human-readable summary instead of JSON")

	return cmd
}

func readSnapshot(path string) (snapshot.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return snapshot.Snapshot{}, galerr.IO(path, err)
	}
	defer f.Close()

	return codec.DecodeSnapshot(f)
}

func emit(data []byte, output string) error {
	if output == "-" || output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return codec.WriteAtomic(output, data, 0644)
}

func applySnapshotDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, algorithm *string, workers, maxDepth *int) {
	if !cmd.Flags().Changed("algorithm") && defaults.ChecksumAlgorithm != nil {
		*algorithm = *defaults.ChecksumAlgorithm
	}
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("max-depth") && defaults.MaxDepth != nil {
		*maxDepth = *defaults.MaxDepth
		cmd.Flags().Set("max-depth", fmt.Sprintf("%d", *maxDepth)) //nolint:errcheck // best-effort so Changed() reflects config-derived value
	}
}

// configureLogging wires log/slog the way cmd/beam/main.go does: a text
// handler to stderr, --verbose forcing debug output and --quiet raising
// the floor to warnings only.
func configureLogging(verbose, quiet bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	} else if !quiet {
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func usageErr(start time.Time, message string) *exitError {
	return toExitError(start, galerr.New(galerr.KindUsage, message))
}

// toExitError maps err to the exit-code contract of spec section 7 and, per
// section 4.2's "envelope is attached to every tool output", writes a
// status:"error" $plumbah envelope document to stdout before the CLI exits
// non-zero.
func toExitError(start time.Time, err error) *exitError {
	kind := galerr.KindIO
	message := err.Error()
	path := ""

	var galErr *galerr.Error
	if errors.As(err, &galErr) {
		kind = galErr.Kind
		message = galErr.Error()
		path = galErr.Path
	}

	env := plumbah.WrapError(kind, message, path, plumbah.Declared{Deterministic: true, Safe: true}, start)
	if data, encErr := codec.EncodeError(env); encErr == nil {
		os.Stdout.Write(data) //nolint:errcheck // best-effort; exit code already carries failure
	}

	return &exitError{code: kind.ExitCode(), message: message}
}

type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
