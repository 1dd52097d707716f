package format

import "errors"

// ErrTruncated indicates the buffer lacked the bytes required for a structure.
var ErrTruncated = errors.New("format: truncated buffer")
