package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smmkit/arena"
)

func init() {
	rootCmd.AddCommand(newFreeCmd())
}

func newFreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "free <file> <ref>",
		Short: "Release a block",
		Long: `The free command returns the block behind <ref> to the free list,
merging it with free neighbours. Releasing a reference twice, or one that
alloc never returned, is reported as arena corruption.

Example:
  smmctl free heap.smm 0x40`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFree(cmd.Context(), args)
		},
	}
}

func runFree(ctx context.Context, args []string) error {
	ref, err := parseInt(args[1], "ref")
	if err != nil {
		return err
	}
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	err = guard(func() error {
		s.a.Release(arena.Ref(ref))
		printVerbose("Released 0x%X, %d free block(s)\n", ref, s.a.FreeBlockCount())
		return nil
	})
	if closeErr := s.close(ctx); err == nil {
		err = closeErr
	}
	return err
}
