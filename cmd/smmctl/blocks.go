package main

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newBlocksCmd())
}

func newBlocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <file>",
		Short: "Print every block in address order",
		Long: `The blocks command walks the region physically, from the first block
after the descriptor to the end, and prints each block with its tag, size and
payload reference.

Example:
  smmctl blocks heap.smm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(cmd.Context(), args)
		},
	}
}

func runBlocks(ctx context.Context, args []string) error {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	err = guard(func() error {
		return newPrinter(s.a).PrintBlocks()
	})
	if closeErr := s.close(ctx); err == nil {
		err = closeErr
	}
	return err
}
