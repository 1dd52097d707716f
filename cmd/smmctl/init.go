package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smmkit/arena"
	"github.com/joshuapare/smmkit/region"
	"github.com/joshuapare/smmkit/region/dirty"
)

var (
	initSize  string
	initAlign string
	initForce bool
)

func init() {
	cmd := newInitCmd()
	cmd.Flags().StringVar(&initSize, "size", "65536", "Region file size in bytes")
	cmd.Flags().StringVar(&initAlign, "align", "0xF", "Alignment mask, 2^k-1")
	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
	rootCmd.AddCommand(cmd)
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <file>",
		Short: "Create a region file holding an empty arena",
		Long: `The init command creates a zero-filled region file of --size bytes,
writes an arena descriptor with the given alignment mask, and turns the rest
of the file into one free block.

Example:
  smmctl init heap.smm
  smmctl init heap.smm --size 1MiB --align 0x3F`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), args)
		},
	}
}

func runInit(ctx context.Context, args []string) error {
	path := args[0]
	size, err := parseSize(initSize)
	if err != nil {
		return err
	}
	mask, err := parseInt(initAlign, "alignment mask")
	if err != nil {
		return err
	}

	if initForce {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing file: %w", err)
		}
	}

	r, err := region.Create(path, int64(size))
	if err != nil {
		return fmt.Errorf("failed to create region: %w", err)
	}
	dt := dirty.NewTracker(r)
	a, err := arena.Init(r.Bytes(), mask, &arena.Options{Tracker: dt})
	if err != nil {
		_ = r.Close()
		_ = os.Remove(path)
		return err
	}
	s := &session{r: r, dt: dt, a: a}

	if jsonOut {
		if err := printJSON(map[string]any{
			"path":        path,
			"size":        size,
			"align_mask":  mask,
			"header_size": a.HeaderSize(),
			"usable":      a.Usable(),
		}); err != nil {
			_ = s.close(ctx)
			return err
		}
	} else {
		printInfo("Initialized %s: %d bytes, align mask 0x%X, %d usable\n", path, size, mask, a.Usable())
	}
	return s.close(ctx)
}
