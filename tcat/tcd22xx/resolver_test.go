package tcd22xx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/extension"
)

func resolverSpec() *Spec {
	return &Spec{
		Inputs: []Input{
			{ID: extension.SrcBlkIns0, Offset: 0, Count: 2},
			{ID: extension.SrcBlkAes, Offset: 0, Count: 2},
		},
		Outputs: []Output{
			{ID: extension.DstBlkIns0, Offset: 0, Count: 2},
		},
		Fixed: []extension.SrcBlk{
			{ID: extension.SrcBlkIns0, Ch: 0},
			{ID: extension.SrcBlkIns0, Ch: 1},
		},
	}
}

func resolverAvail(spec *Spec) *AvailableBlocks {
	caps := &extension.Caps{
		Mixer: extension.MixerCaps{InputCount: 2, OutputCount: 2},
	}
	return spec.ComputeAvailableBlocks(caps, tcat.RateModeLow, nil, nil)
}

func TestRefineRouterEntriesFixedFirst(t *testing.T) {
	spec := resolverSpec()
	avail := resolverAvail(spec)

	entries := []extension.RouterEntry{
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 0}, Src: extension.SrcBlk{ID: extension.SrcBlkAes, Ch: 0}},
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 1}, Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: 1}},
		{Dst: extension.DstBlk{ID: extension.DstBlkMixerTx0, Ch: 0}, Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: 0}},
	}

	kept, dropped, err := spec.RefineRouterEntries(entries, avail)
	if err != nil {
		t.Fatalf("RefineRouterEntries: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	for i, src := range spec.Fixed {
		if kept[i].Src != src {
			t.Errorf("kept[%d].Src = %s, want %s", i, kept[i].Src, src)
		}
	}
}

func TestRefineRouterEntriesInsertsPlaceholder(t *testing.T) {
	spec := resolverSpec()
	avail := resolverAvail(spec)

	entries := []extension.RouterEntry{
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 0}, Src: extension.SrcBlk{ID: extension.SrcBlkAes, Ch: 0}},
	}

	kept, _, err := spec.RefineRouterEntries(entries, avail)
	if err != nil {
		t.Fatalf("RefineRouterEntries: %v", err)
	}
	if len(kept) != 3 {
		t.Fatalf("kept = %d entries, want 3", len(kept))
	}
	for i := range spec.Fixed {
		if kept[i].Src != spec.Fixed[i] {
			t.Errorf("kept[%d].Src = %s, want %s", i, kept[i].Src, spec.Fixed[i])
		}
		if kept[i].Dst != placeholderDst {
			t.Errorf("kept[%d].Dst = %s, want placeholder", i, kept[i].Dst)
		}
	}
	if kept[2].Src != (extension.SrcBlk{ID: extension.SrcBlkAes, Ch: 0}) {
		t.Errorf("kept[2].Src = %s, want aes:0", kept[2].Src)
	}
}

func TestRefineRouterEntriesDropsUnavailable(t *testing.T) {
	spec := resolverSpec()
	avail := resolverAvail(spec)

	entries := []extension.RouterEntry{
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 0}, Src: extension.SrcBlk{ID: extension.SrcBlkAdat, Ch: 0}},
		{Dst: extension.DstBlk{ID: extension.DstBlkAdat, Ch: 0}, Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: 0}},
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 1}, Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: 1}},
	}

	kept, dropped, err := spec.RefineRouterEntries(entries, avail)
	if err != nil {
		t.Fatalf("RefineRouterEntries: %v", err)
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	for _, entry := range kept {
		if entry.Dst != placeholderDst && (!avail.HasSrc(entry.Src) || !avail.HasDst(entry.Dst)) {
			t.Errorf("kept entry %s -> %s not available", entry.Src, entry.Dst)
		}
	}
}

func TestRefineRouterEntriesFixedSourceAbsent(t *testing.T) {
	spec := resolverSpec()
	spec.Fixed = append(spec.Fixed, extension.SrcBlk{ID: extension.SrcBlkAdat, Ch: 0})
	avail := resolverAvail(spec)

	_, _, err := spec.RefineRouterEntries(nil, avail)
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Fatalf("RefineRouterEntries error = %v, want fixed source failure", err)
	}
}

func TestRefineRouterEntriesDeterministic(t *testing.T) {
	spec := resolverSpec()
	avail := resolverAvail(spec)

	entries := []extension.RouterEntry{
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 0}, Src: extension.SrcBlk{ID: extension.SrcBlkAes, Ch: 1}},
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 1}, Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: 0}},
	}

	first, _, err := spec.RefineRouterEntries(entries, avail)
	if err != nil {
		t.Fatalf("RefineRouterEntries: %v", err)
	}
	second, _, err := spec.RefineRouterEntries(entries, avail)
	if err != nil {
		t.Fatalf("RefineRouterEntries: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated resolution differs (-first +second):\n%s", diff)
	}
}

// routerTransport serves the register image and completes command
// execution immediately.
type routerTransport struct {
	base       uint64
	image      []byte
	opcodeAddr uint64
	writes     int
	opcodes    []uint32
}

func newRouterTransport(sections *extension.Sections, size int) *routerTransport {
	return &routerTransport{
		base:       tcat.BaseAddress + extension.Offset,
		image:      make([]byte, size),
		opcodeAddr: tcat.BaseAddress + extension.Offset + uint64(sections.Cmd.Offset),
	}
}

func (t *routerTransport) Read(addr uint64, buf []byte, timeout time.Duration) error {
	pos := int(addr - t.base)
	if pos < 0 || pos+len(buf) > len(t.image) {
		return fmt.Errorf("read at %#x outside image", addr)
	}
	copy(buf, t.image[pos:])
	if addr == t.opcodeAddr && len(buf) >= 4 {
		buf[0] &= 0x7f
	}
	return nil
}

func (t *routerTransport) Write(addr uint64, buf []byte, timeout time.Duration) error {
	pos := int(addr - t.base)
	if pos < 0 || pos+len(buf) > len(t.image) {
		return fmt.Errorf("write at %#x outside image", addr)
	}
	t.writes++
	copy(t.image[pos:], buf)
	if addr == t.opcodeAddr && len(buf) >= 4 {
		t.opcodes = append(t.opcodes,
			uint32(buf[0])<<24|uint32(buf[1])<<16|uint32(buf[2])<<8|uint32(buf[3]))
	}
	return nil
}

func TestUpdateRouterEntries(t *testing.T) {
	spec := resolverSpec()
	avail := resolverAvail(spec)
	sections := &extension.Sections{
		Cmd:    tcat.Section{Offset: 0x40, Size: 0x08},
		Router: tcat.Section{Offset: 0x100, Size: 0x104},
	}
	caps := &extension.Caps{
		Router: extension.RouterCaps{IsExposed: true, MaximumEntryCount: 16},
	}
	tr := newRouterTransport(sections, 0x300)

	entries := []extension.RouterEntry{
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 0}, Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: 0}},
		{Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: 1}, Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: 1}},
	}

	applied, dropped, err := UpdateRouterEntries(tr, sections, caps, spec, avail, tcat.RateModeMiddle, entries, 0)
	if err != nil {
		t.Fatalf("UpdateRouterEntries: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if diff := cmp.Diff(entries, applied); diff != "" {
		t.Fatalf("applied table mismatch (-want +got):\n%s", diff)
	}

	got, err := extension.ReadRouterEntries(tr, sections, caps, 0)
	if err != nil {
		t.Fatalf("ReadRouterEntries: %v", err)
	}
	if diff := cmp.Diff(applied, got); diff != "" {
		t.Fatalf("written table mismatch (-want +got):\n%s", diff)
	}

	if len(tr.opcodes) != 1 {
		t.Fatalf("command writes = %d, want 1", len(tr.opcodes))
	}
	if want := uint32(0x80020001); tr.opcodes[0] != want {
		t.Errorf("opcode = %#08x, want %#08x", tr.opcodes[0], want)
	}
}

func TestUpdateRouterEntriesCapacity(t *testing.T) {
	spec := &Spec{
		Inputs:  []Input{{ID: extension.SrcBlkIns0, Offset: 0, Count: 8}},
		Outputs: []Output{{ID: extension.DstBlkIns0, Offset: 0, Count: 8}},
	}
	avail := resolverAvail(spec)
	sections := &extension.Sections{
		Cmd:    tcat.Section{Offset: 0x40, Size: 0x08},
		Router: tcat.Section{Offset: 0x100, Size: 0x104},
	}
	caps := &extension.Caps{
		Router: extension.RouterCaps{IsExposed: true, MaximumEntryCount: 4},
	}
	tr := newRouterTransport(sections, 0x300)

	entries := make([]extension.RouterEntry, 8)
	for i := range entries {
		entries[i] = extension.RouterEntry{
			Dst: extension.DstBlk{ID: extension.DstBlkIns0, Ch: uint8(i)},
			Src: extension.SrcBlk{ID: extension.SrcBlkIns0, Ch: uint8(i)},
		}
	}

	_, _, err := UpdateRouterEntries(tr, sections, caps, spec, avail, tcat.RateModeLow, entries, 0)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("UpdateRouterEntries error = %v, want CapacityError", err)
	}
	if capErr.Need != 8 || capErr.Max != 4 {
		t.Errorf("CapacityError = %+v, want Need 8 Max 4", capErr)
	}
	if tr.writes != 0 {
		t.Errorf("write transactions = %d, want 0", tr.writes)
	}
}
