//go:build smmdebug

package arena

import "github.com/joshuapare/smmkit/arena/verify"

const strictChecks = true

// afterMutation re-validates the whole region after every mutating call.
func (a *Arena) afterMutation(op string) {
	if err := verify.AllInvariants(a.region); err != nil {
		corrupt(op, -1, "post-%s validation: %v", op, err)
	}
}
