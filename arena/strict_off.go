//go:build !smmdebug

package arena

const strictChecks = false

func (a *Arena) afterMutation(string) {}
