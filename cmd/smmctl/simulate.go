package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smmkit/arena"
	"github.com/joshuapare/smmkit/arena/verify"
	"github.com/joshuapare/smmkit/internal/format"
)

var (
	simSize  string
	simAlign string
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().StringVar(&simSize, "size", "1024", "Usable bytes after the descriptor")
	cmd.Flags().StringVar(&simAlign, "align", "0xF", "Alignment mask, 2^k-1")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate [script]",
		Short: "Replay an allocation script against an in-memory arena",
		Long: `The simulate command runs a script against a fresh in-memory arena
whose usable area is --size bytes. The script is read from the named file, or
from stdin when the argument is omitted or "-". One command per line; blank
lines and lines starting with # are ignored.

  alloc NAME SIZE         allocate SIZE bytes and bind the reference to NAME
  free NAME               release the reference bound to NAME
  count                   print the number of free blocks
  dump                    print the free list
  stats                   print usage totals
  expect-count N          fail unless the free list has N blocks
  expect-fail NAME SIZE   fail if allocating SIZE bytes succeeds

Freeing a name twice is a double free and stops the script with an arena
corruption error. Every invariant is checked after the last line.

Example:
  smmctl simulate scenario.txt --size 120`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args, os.Stdin)
		},
	}
}

func runSimulate(args []string, stdin io.Reader) error {
	usable, err := parseSize(simSize)
	if err != nil {
		return err
	}
	mask, err := parseInt(simAlign, "alignment mask")
	if err != nil {
		return err
	}
	if !format.ValidMask(mask) {
		return fmt.Errorf("%w: 0x%X", arena.ErrBadAlignMask, mask)
	}

	in := stdin
	name := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in, name = f, args[0]
	}

	region := arena.AlignedBuffer(format.AlignedDescriptorSize(mask)+usable, mask)
	a, err := arena.Init(region, mask, nil)
	if err != nil {
		return err
	}
	sim := &simulation{a: a, refs: make(map[string]arena.Ref)}

	sc := bufio.NewScanner(in)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := guard(func() error { return sim.exec(fields) }); err != nil {
			return fmt.Errorf("%s:%d: %s: %w", name, line, strings.Join(fields, " "), err)
		}
		sim.steps++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	if err := verify.AllInvariants(region); err != nil {
		return fmt.Errorf("%s: final state: %w", name, err)
	}
	printVerbose("%s: %d command(s), %d free block(s)\n", name, sim.steps, a.FreeBlockCount())
	return nil
}

// simulation holds the arena and the name bindings of one script run.
type simulation struct {
	a     *arena.Arena
	refs  map[string]arena.Ref
	steps int
}

func (s *simulation) exec(fields []string) error {
	cmd, args := fields[0], fields[1:]
	arity := map[string]int{
		"alloc": 2, "free": 1, "count": 0, "dump": 0, "stats": 0,
		"expect-count": 1, "expect-fail": 2,
	}
	n, ok := arity[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}

	switch cmd {
	case "alloc":
		size, err := parseInt(args[1], "size")
		if err != nil {
			return err
		}
		ref, ok := s.a.Alloc(size)
		if !ok {
			return fmt.Errorf("no free block fits %d bytes", size)
		}
		s.refs[args[0]] = ref
		printVerbose("%s = 0x%X\n", args[0], int(ref))

	case "free":
		ref, ok := s.refs[args[0]]
		if !ok {
			return fmt.Errorf("unknown name %q", args[0])
		}
		s.a.Release(ref)

	case "count":
		printInfo("free blocks: %d\n", s.a.FreeBlockCount())

	case "dump":
		if jsonOut {
			return newPrinter(s.a).PrintFreeList()
		}
		return s.a.Dump(os.Stdout)

	case "stats":
		return newPrinter(s.a).PrintStats()

	case "expect-count":
		expected, err := parseInt(args[0], "count")
		if err != nil {
			return err
		}
		if got := s.a.FreeBlockCount(); got != expected {
			return fmt.Errorf("free block count is %d, expected %d", got, expected)
		}

	case "expect-fail":
		size, err := parseInt(args[1], "size")
		if err != nil {
			return err
		}
		if ref, ok := s.a.Alloc(size); ok {
			s.refs[args[0]] = ref
			return fmt.Errorf("allocation of %d bytes succeeded at 0x%X", size, int(ref))
		}
	}
	return nil
}
