package extension

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

var capsRaw = []byte{
	0xff, 0x00, 0x00, 0x07,
	0x23, 0x12, 0x0c, 0xe7,
	0x00, 0x00, 0x1b, 0xa3,
}

var capsWant = Caps{
	Router: RouterCaps{
		IsExposed:         true,
		IsReadonly:        true,
		IsStorable:        true,
		MaximumEntryCount: 0xff00,
	},
	Mixer: MixerCaps{
		IsExposed:      true,
		IsReadonly:     true,
		IsStorable:     true,
		InputDeviceID:  0x0e,
		OutputDeviceID: 0x0c,
		InputCount:     0x12,
		OutputCount:    0x23,
	},
	General: GeneralCaps{
		DynamicStreamFormat:    true,
		StorageAvail:           true,
		PeakAvail:              false,
		MaxTxStreams:           0x0a,
		MaxRxStreams:           0x0b,
		StreamFormatIsStorable: true,
		Asic:                   AsicDiceII,
	},
}

func TestCapsRoundtrip(t *testing.T) {
	caps, err := ParseCaps(capsRaw)
	if err != nil {
		t.Fatalf("ParseCaps: %v", err)
	}
	if diff := cmp.Diff(&capsWant, caps); diff != "" {
		t.Fatalf("parsed caps mismatch (-want +got):\n%s", diff)
	}

	raw := make([]byte, CapsSize)
	buildCaps(caps, raw)
	if diff := cmp.Diff(capsRaw, raw); diff != "" {
		t.Fatalf("built registers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCapsUnknownAsic(t *testing.T) {
	raw := make([]byte, CapsSize)
	copy(raw, capsRaw)
	raw[8] = 0x00
	raw[9] = 0x09

	_, err := ParseCaps(raw)
	if !errors.Is(err, tcat.ErrMalformedEntry) {
		t.Fatalf("ParseCaps error = %v, want ErrMalformedEntry", err)
	}
}

func TestReadCaps(t *testing.T) {
	sections := &Sections{Caps: tcatSection(0x10, 0x0c)}
	tr := newMemTransport(0x20)
	copy(tr.image[0x10:], capsRaw)

	caps, err := ReadCaps(tr, sections, 0)
	if err != nil {
		t.Fatalf("ReadCaps: %v", err)
	}
	if diff := cmp.Diff(&capsWant, caps); diff != "" {
		t.Fatalf("caps mismatch (-want +got):\n%s", diff)
	}
}
