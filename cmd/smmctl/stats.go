package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Show usage totals",
		Long: `The stats command shows the region size, usable bytes, allocated and
free block counts and bytes, the largest free block, and how much free space
lies outside it.

Example:
  smmctl stats heap.smm
  smmctl stats heap.smm --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), args)
		},
	}
}

func runStats(ctx context.Context, args []string) error {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	err = guard(func() error {
		return newPrinter(s.a).PrintStats()
	})
	if closeErr := s.close(ctx); err == nil {
		err = closeErr
	}
	return err
}
