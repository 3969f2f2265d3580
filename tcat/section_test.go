package tcat

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Section table captured from a device.
var sectionTableRaw = []byte{
	0x00, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00, 0x5f, 0x00, 0x00, 0x00, 0x69, 0x00, 0x00,
	0x00, 0x8e, 0x00, 0x00, 0x00, 0xf7, 0x00, 0x00, 0x01, 0x1a, 0x00, 0x00, 0x02, 0x11,
	0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

var sectionTableWant = &GeneralSections{
	Global:         Section{Offset: 0x28, Size: 0x17c},
	TxStreamFormat: Section{Offset: 0x1a4, Size: 0x238},
	RxStreamFormat: Section{Offset: 0x3dc, Size: 0x468},
	ExtSync:        Section{Offset: 0x844, Size: 0x10},
	Reserved:       Section{Offset: 0, Size: 0},
}

func TestGeneralSectionsRoundTrip(t *testing.T) {
	got := parseGeneralSections(sectionTableRaw)
	if diff := cmp.Diff(sectionTableWant, got); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}

	raw := make([]byte, GeneralSectionsSize)
	buildGeneralSections(got, raw)
	if diff := cmp.Diff(sectionTableRaw, raw); diff != "" {
		t.Errorf("raw mismatch (-want +got):\n%s", diff)
	}
}

func TestReadGeneralSections(t *testing.T) {
	tr := newMemTransport(64)
	copy(tr.image, sectionTableRaw)

	got, err := ReadGeneralSections(tr, time.Second)
	if err != nil {
		t.Fatalf("ReadGeneralSections() error = %v", err)
	}
	if diff := cmp.Diff(sectionTableWant, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckSection(t *testing.T) {
	err := checkSection(Section{Offset: 0x28, Size: 40}, 96, SectionNameGlobal)
	if err == nil {
		t.Fatal("checkSection() expected error for undersized section")
	}

	if err := checkSection(Section{Offset: 0x28, Size: 96}, 96, SectionNameGlobal); err != nil {
		t.Errorf("checkSection() error = %v", err)
	}
}
