package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smmkit/arena/verify"
	"github.com/joshuapare/smmkit/region"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check every arena invariant",
		Long: `The verify command checks the region bytes directly, without
attaching an arena: the descriptor, that blocks tile the usable area with
aligned and tagged headers, that no two free blocks touch, and that the free
list is ascending and names exactly the free blocks.

Example:
  smmctl verify heap.smm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
}

func runVerify(args []string) error {
	printVerbose("Opening region: %s\n", args[0])
	r, err := region.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open region: %w", err)
	}
	defer r.Close()

	verr := verify.AllInvariants(r.Bytes())
	if jsonOut {
		out := map[string]any{"path": args[0], "valid": verr == nil}
		var ve *verify.ValidationError
		if errors.As(verr, &ve) {
			out["error"] = map[string]any{"type": ve.Type, "message": ve.Message, "offset": ve.Offset}
		}
		if err := printJSON(out); err != nil {
			return err
		}
	}
	if verr != nil {
		return fmt.Errorf("verify failed: %w", verr)
	}
	if !jsonOut {
		printInfo("ok: %s\n", args[0])
	}
	return nil
}
