package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smmkit/arena"
)

var (
	dumpPayload string
	dumpRaw     bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVar(&dumpPayload, "payload", "", "Print the payload bytes of this reference instead")
	cmd.Flags().BoolVar(&dumpRaw, "raw", false, "Use the arena's own one-line-per-block format")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the free list",
		Long: `The dump command walks the free list in address order and prints
each free block with its size and successor.

Example:
  smmctl dump heap.smm
  smmctl dump heap.smm --json
  smmctl dump heap.smm --payload 0x40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), args)
		},
	}
}

func runDump(ctx context.Context, args []string) error {
	var ref int
	if dumpPayload != "" {
		var err error
		if ref, err = parseInt(dumpPayload, "ref"); err != nil {
			return err
		}
	}
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	err = guard(func() error {
		switch {
		case dumpPayload != "":
			return newPrinter(s.a).PrintPayload(arena.Ref(ref))
		case dumpRaw:
			return s.a.Dump(os.Stdout)
		default:
			return newPrinter(s.a).PrintFreeList()
		}
	})
	if closeErr := s.close(ctx); err == nil {
		err = closeErr
	}
	return err
}
