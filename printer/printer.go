// Package printer renders arena state (free list, block map, usage totals and
// payload bytes) as text or JSON.
package printer

import (
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/smmkit/arena"
)

const DefaultMaxPayloadBytes = 64

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// Grouping prints sizes with locale digit grouping (text format only).
	// Default: true
	Grouping bool

	// Language selects the grouping convention.
	// Default: language.English
	Language language.Tag

	// MaxPayloadBytes limits how many payload bytes PrintPayload shows.
	// Set to 0 for no limit.
	// Default: 64
	MaxPayloadBytes int
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:          FormatText,
		Grouping:        true,
		Language:        language.English,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
	}
}

// Printer handles formatted output of arena state.
type Printer struct {
	opts   Options
	writer io.Writer
	arena  *arena.Arena
	msg    *message.Printer
}

// New creates a new Printer.
//
// Example:
//
//	a, _ := arena.Attach(r.Bytes(), nil)
//	p := printer.New(a, os.Stdout, printer.DefaultOptions())
//	p.PrintStats()
func New(a *arena.Arena, w io.Writer, opts Options) *Printer {
	return &Printer{
		opts:   opts,
		writer: w,
		arena:  a,
		msg:    message.NewPrinter(opts.Language),
	}
}

// PrintFreeList prints the free list in list order.
func (p *Printer) PrintFreeList() error {
	blocks := p.arena.FreeBlocks()
	if p.opts.Format == FormatJSON {
		return p.printBlocksJSON("free_list", blocks)
	}
	return p.printFreeListText(blocks)
}

// PrintBlocks prints every block in address order.
func (p *Printer) PrintBlocks() error {
	var blocks []arena.Block
	if err := p.arena.Walk(func(b arena.Block) error {
		blocks = append(blocks, b)
		return nil
	}); err != nil {
		return err
	}
	if p.opts.Format == FormatJSON {
		return p.printBlocksJSON("blocks", blocks)
	}
	return p.printBlocksText(blocks)
}

// PrintStats prints usage totals.
func (p *Printer) PrintStats() error {
	st := p.arena.Stats()
	if p.opts.Format == FormatJSON {
		return p.printStatsJSON(st)
	}
	return p.printStatsText(st)
}

// PrintPayload prints the payload bytes of a live allocation, truncated to
// MaxPayloadBytes.
func (p *Printer) PrintPayload(ref arena.Ref) error {
	data := p.arena.Payload(ref)
	total := len(data)
	if p.opts.MaxPayloadBytes > 0 && len(data) > p.opts.MaxPayloadBytes {
		data = data[:p.opts.MaxPayloadBytes]
	}
	if p.opts.Format == FormatJSON {
		return p.printPayloadJSON(ref, data, total)
	}
	return p.printPayloadText(ref, data, total)
}

// num formats a byte count or block count.
func (p *Printer) num(n int) string {
	if !p.opts.Grouping {
		return strconv.Itoa(n)
	}
	return p.msg.Sprintf("%d", n)
}
