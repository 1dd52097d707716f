package printer

import (
	"encoding/hex"
	"encoding/json"

	"github.com/joshuapare/smmkit/arena"
)

// jsonBlock represents one block in JSON format.
type jsonBlock struct {
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
	Tag    string `json:"tag"`
	Next   *int   `json:"next,omitempty"`
	Ref    *int   `json:"ref,omitempty"`
}

type jsonStats struct {
	RegionSize      int     `json:"region_size"`
	Usable          int     `json:"usable"`
	AlignMask       int     `json:"align_mask"`
	HeaderSize      int     `json:"header_size"`
	AllocatedBlocks int     `json:"allocated_blocks"`
	AllocatedBytes  int     `json:"allocated_bytes"`
	FreeBlocks      int     `json:"free_blocks"`
	FreeBytes       int     `json:"free_bytes"`
	LargestFree     int     `json:"largest_free"`
	Fragmentation   float64 `json:"fragmentation_pct"`
}

type jsonPayload struct {
	Ref       int    `json:"ref"`
	Size      int    `json:"size"`
	Data      string `json:"data"`
	Truncated bool   `json:"truncated,omitempty"`
}

func toJSONBlock(b arena.Block) jsonBlock {
	jb := jsonBlock{Offset: b.Offset, Size: b.Size, Tag: b.Tag.String()}
	if b.Tag == arena.TagFree {
		next := b.Next
		jb.Next = &next
	} else {
		ref := int(b.Ref)
		jb.Ref = &ref
	}
	return jb
}

func (p *Printer) printBlocksJSON(key string, blocks []arena.Block) error {
	out := make([]jsonBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toJSONBlock(b))
	}
	return p.encode(map[string]any{key: out})
}

func (p *Printer) printStatsJSON(st arena.Stats) error {
	return p.encode(jsonStats{
		RegionSize:      st.RegionSize,
		Usable:          st.Usable,
		AlignMask:       st.AlignMask,
		HeaderSize:      st.HeaderSize,
		AllocatedBlocks: st.AllocatedBlocks,
		AllocatedBytes:  st.AllocatedBytes,
		FreeBlocks:      st.FreeBlocks,
		FreeBytes:       st.FreeBytes,
		LargestFree:     st.LargestFree,
		Fragmentation:   fragmentation(st),
	})
}

func (p *Printer) printPayloadJSON(ref arena.Ref, data []byte, total int) error {
	return p.encode(jsonPayload{
		Ref:       int(ref),
		Size:      total,
		Data:      hex.EncodeToString(data),
		Truncated: len(data) < total,
	})
}

func (p *Printer) encode(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
