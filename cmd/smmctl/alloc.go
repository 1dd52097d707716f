package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var allocFill string

func init() {
	cmd := newAllocCmd()
	cmd.Flags().StringVar(&allocFill, "fill", "", "Fill the payload with this byte value")
	rootCmd.AddCommand(cmd)
}

func newAllocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alloc <file> <size>",
		Short: "Allocate a block and print its reference",
		Long: `The alloc command reserves a block with at least <size> payload bytes
using first-fit search and prints the payload reference, the byte offset of
the payload inside the region. Pass the reference to free to release it.

Example:
  smmctl alloc heap.smm 100
  smmctl alloc heap.smm 0x40 --fill 0xAB`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(cmd.Context(), args)
		},
	}
}

func runAlloc(ctx context.Context, args []string) error {
	size, err := parseInt(args[1], "size")
	if err != nil {
		return err
	}
	fill := -1
	if allocFill != "" {
		if fill, err = parseInt(allocFill, "fill byte"); err != nil {
			return err
		}
		if fill < 0 || fill > 0xFF {
			return fmt.Errorf("invalid fill byte %q: must be 0..255", allocFill)
		}
	}

	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	err = guard(func() error {
		ref, ok := s.a.Alloc(size)
		if !ok {
			return fmt.Errorf("no free block fits %d bytes", size)
		}
		if fill >= 0 {
			p := s.a.Payload(ref)
			for i := range p {
				p[i] = byte(fill)
			}
			s.dt.Add(int(ref), len(p))
		}
		if jsonOut {
			return printJSON(map[string]any{
				"ref":        int(ref),
				"block_size": s.a.BlockSize(ref),
			})
		}
		printVerbose("Block size: %d\n", s.a.BlockSize(ref))
		printInfo("0x%X\n", int(ref))
		return nil
	})
	if closeErr := s.close(ctx); err == nil {
		err = closeErr
	}
	return err
}
