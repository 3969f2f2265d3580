package extension

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

func TestReadCurrentRouterEntries(t *testing.T) {
	sections := &Sections{CurrentConfig: tcatSection(0x1000, 0x6000)}
	caps := routerTestCaps()
	tr := newMemTransport(0x8000)

	entries := []RouterEntry{
		{Dst: DstBlk{ID: DstBlkIns0, Ch: 0}, Src: SrcBlk{ID: SrcBlkAvs0, Ch: 0}},
		{Dst: DstBlk{ID: DstBlkIns0, Ch: 1}, Src: SrcBlk{ID: SrcBlkAvs0, Ch: 1}},
	}
	base := 0x1000 + currentRouterMidOffset
	putQuadlet(tr.image[base:], uint32(len(entries)))
	buildRouterEntries(entries, tr.image[base+routerEntriesOffset:])

	got, err := ReadCurrentRouterEntries(tr, sections, caps, tcat.RateModeMiddle, 0)
	if err != nil {
		t.Fatalf("ReadCurrentRouterEntries: %v", err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCurrentStreamFormatEntries(t *testing.T) {
	sections := &Sections{CurrentConfig: tcatSection(0x1000, 0x6000)}
	caps := formatTestCaps()
	tr := newMemTransport(0x8000)

	tx := FormatEntry{PCMCount: 8, MIDICount: 1, Labels: []string{"Main"}}
	rx := FormatEntry{PCMCount: 2, Labels: []string{"Return"}}

	base := 0x1000 + currentStreamHighOffset
	putQuadlet(tr.image[base:], 1)
	putQuadlet(tr.image[base+4:], 1)
	for i, entry := range []FormatEntry{tx, rx} {
		raw, err := BuildFormatEntry(&entry)
		if err != nil {
			t.Fatalf("BuildFormatEntry: %v", err)
		}
		copy(tr.image[base+streamFormatEntriesOffset+i*FormatEntrySize:], raw)
	}

	gotTx, gotRx, err := ReadCurrentStreamFormatEntries(tr, sections, caps, tcat.RateModeHigh, 0)
	if err != nil {
		t.Fatalf("ReadCurrentStreamFormatEntries: %v", err)
	}
	if diff := cmp.Diff([]FormatEntry{tx}, gotTx); diff != "" {
		t.Fatalf("tx entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]FormatEntry{rx}, gotRx); diff != "" {
		t.Fatalf("rx entries mismatch (-want +got):\n%s", diff)
	}
}
