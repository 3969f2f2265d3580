package extension

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

func TestReadPeakEntries(t *testing.T) {
	sections := &Sections{Peak: tcatSection(0x200, 2 * RouterEntrySize)}
	caps := &Caps{
		Router:  RouterCaps{MaximumEntryCount: 64},
		General: GeneralCaps{PeakAvail: true},
	}
	tr := newMemTransport(0x300)

	want := []RouterEntry{
		{Dst: DstBlk{ID: DstBlkIns0, Ch: 0}, Src: SrcBlk{ID: SrcBlkAvs0, Ch: 0}, Peak: 0x0fff},
		{Dst: DstBlk{ID: DstBlkIns0, Ch: 1}, Src: SrcBlk{ID: SrcBlkAvs0, Ch: 1}, Peak: 0x0040},
	}
	buildRouterEntries(want, tr.image[0x200:])

	got, err := ReadPeakEntries(tr, sections, caps, 0)
	if err != nil {
		t.Fatalf("ReadPeakEntries: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPeakEntriesUnavailable(t *testing.T) {
	sections := &Sections{Peak: tcatSection(0x200, 0x100)}
	caps := &Caps{Router: RouterCaps{MaximumEntryCount: 64}}
	tr := newMemTransport(0x300)

	_, err := ReadPeakEntries(tr, sections, caps, 0)
	if !errors.Is(err, tcat.ErrFeatureUnavailable) {
		t.Fatalf("ReadPeakEntries error = %v, want ErrFeatureUnavailable", err)
	}
	if tr.reads != 0 {
		t.Errorf("read transactions = %d, want 0", tr.reads)
	}
}
