package main

import (
	"fmt"
	"strings"
)

var sizeSuffixes = []struct {
	suffix string
	mult   int
}{
	{"KiB", 1 << 10},
	{"MiB", 1 << 20},
	{"GiB", 1 << 30},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
}

// parseSize parses a byte count with an optional binary suffix.
func parseSize(s string) (int, error) {
	mult := 1
	num := s
	for _, sfx := range sizeSuffixes {
		if strings.HasSuffix(s, sfx.suffix) {
			num = strings.TrimSuffix(s, sfx.suffix)
			mult = sfx.mult
			break
		}
	}
	n, err := parseInt(num, "size")
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid size %q: must be positive", s)
	}
	return n * mult, nil
}
