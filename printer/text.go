package printer

import (
	"encoding/hex"
	"fmt"

	"github.com/joshuapare/smmkit/arena"
)

func offset(off int) string {
	return fmt.Sprintf("0x%08X", off)
}

func (p *Printer) printFreeListText(blocks []arena.Block) error {
	total := 0
	for _, b := range blocks {
		next := "end"
		if b.Next != 0 {
			next = offset(b.Next)
		}
		if _, err := fmt.Fprintf(p.writer, "%s  size %s  next %s\n", offset(b.Offset), p.num(b.Size), next); err != nil {
			return err
		}
		total += b.Size
	}
	_, err := fmt.Fprintf(p.writer, "free blocks: %s, free bytes: %s\n", p.num(len(blocks)), p.num(total))
	return err
}

func (p *Printer) printBlocksText(blocks []arena.Block) error {
	for _, b := range blocks {
		if _, err := fmt.Fprintf(p.writer, "%s  %-9s  size %s  ref %s\n",
			offset(b.Offset), b.Tag, p.num(b.Size), offset(int(b.Ref))); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printStatsText(st arena.Stats) error {
	w := p.writer
	lines := []struct {
		label string
		value string
	}{
		{"region size", p.num(st.RegionSize)},
		{"usable", p.num(st.Usable)},
		{"align mask", fmt.Sprintf("0x%X", st.AlignMask)},
		{"header size", p.num(st.HeaderSize)},
		{"allocated", fmt.Sprintf("%s blocks, %s bytes", p.num(st.AllocatedBlocks), p.num(st.AllocatedBytes))},
		{"free", fmt.Sprintf("%s blocks, %s bytes", p.num(st.FreeBlocks), p.num(st.FreeBytes))},
		{"largest free", p.num(st.LargestFree)},
		{"fragmentation", fmt.Sprintf("%.1f%%", fragmentation(st))},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-14s %s\n", l.label+":", l.value); err != nil {
			return err
		}
	}
	return nil
}

// fragmentation is the share of free bytes outside the largest free block.
func fragmentation(st arena.Stats) float64 {
	if st.FreeBytes == 0 {
		return 0
	}
	return 100 * float64(st.FreeBytes-st.LargestFree) / float64(st.FreeBytes)
}

func (p *Printer) printPayloadText(ref arena.Ref, data []byte, total int) error {
	if _, err := fmt.Fprintf(p.writer, "payload %s: %s bytes\n", offset(int(ref)), p.num(total)); err != nil {
		return err
	}
	if _, err := fmt.Fprint(p.writer, hex.Dump(data)); err != nil {
		return err
	}
	if len(data) < total {
		_, err := fmt.Fprintf(p.writer, "... %s more bytes\n", p.num(total-len(data)))
		return err
	}
	return nil
}
