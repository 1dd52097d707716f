package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smmkit/arena"
	"github.com/joshuapare/smmkit/internal/logger"
	"github.com/joshuapare/smmkit/printer"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logLevel string
	logFile  string

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "smmctl",
	Short: "Create, inspect and exercise arena region files",
	Long: `smmctl manages region files that hold a first-fit arena. It can
initialize a region, allocate and release blocks in it, print the free list,
the block map and usage totals, validate every invariant, and replay
allocation scripts against an in-memory region.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log allocator decisions at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() error {
	if logLevel == "" {
		return nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: true,
		LogFile: logFile,
		Level:   lvl,
		JSON:    jsonOut,
	})
	if err != nil {
		return err
	}
	closeLog = closeFn
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// newPrinter returns a printer on stdout honoring --json.
func newPrinter(a *arena.Arena) *printer.Printer {
	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(a, os.Stdout, opts)
}

// guard runs fn and turns an arena corruption panic into an error so the
// command exits with status 1 instead of a stack trace.
func guard(fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ce *arena.CorruptionError
		if e, ok := r.(error); ok && errors.As(e, &ce) {
			err = fmt.Errorf("arena corruption: %w", ce)
			return
		}
		if e, ok := r.(error); ok && errors.Is(e, arena.ErrReallocUnsupported) {
			err = e
			return
		}
		panic(r)
	}()
	return fn()
}

// parseInt accepts decimal, 0x hex and 0o octal sizes and offsets.
func parseInt(s, what string) (int, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return int(n), nil
}
