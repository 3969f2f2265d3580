package extension

import (
	"fmt"
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// DstBlkID identifies a destination block of the router. The identifier
// occupies a 4-bit field; undefined values flow through as reserved.
type DstBlkID uint8

// Defined destination block identifiers.
const (
	DstBlkAes         DstBlkID = 0
	DstBlkAdat        DstBlkID = 1
	DstBlkMixerTx0    DstBlkID = 2
	DstBlkMixerTx1    DstBlkID = 3
	DstBlkIns0        DstBlkID = 4
	DstBlkIns1        DstBlkID = 5
	DstBlkArmApbAudio DstBlkID = 10
	DstBlkAvs0        DstBlkID = 11
	DstBlkAvs1        DstBlkID = 12
)

func (id DstBlkID) String() string {
	switch id {
	case DstBlkAes:
		return "aes"
	case DstBlkAdat:
		return "adat"
	case DstBlkMixerTx0:
		return "mixer-tx0"
	case DstBlkMixerTx1:
		return "mixer-tx1"
	case DstBlkIns0:
		return "ins0"
	case DstBlkIns1:
		return "ins1"
	case DstBlkArmApbAudio:
		return "arm-apb-audio"
	case DstBlkAvs0:
		return "avs0"
	case DstBlkAvs1:
		return "avs1"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(id))
	}
}

// SrcBlkID identifies a source block of the router. The identifier
// occupies a 4-bit field; undefined values flow through as reserved.
type SrcBlkID uint8

// Defined source block identifiers.
const (
	SrcBlkAes         SrcBlkID = 0
	SrcBlkAdat        SrcBlkID = 1
	SrcBlkMixer       SrcBlkID = 2
	SrcBlkIns0        SrcBlkID = 4
	SrcBlkIns1        SrcBlkID = 5
	SrcBlkArmAprAudio SrcBlkID = 10
	SrcBlkAvs0        SrcBlkID = 11
	SrcBlkAvs1        SrcBlkID = 12
	SrcBlkMute        SrcBlkID = 15
)

func (id SrcBlkID) String() string {
	switch id {
	case SrcBlkAes:
		return "aes"
	case SrcBlkAdat:
		return "adat"
	case SrcBlkMixer:
		return "mixer"
	case SrcBlkIns0:
		return "ins0"
	case SrcBlkIns1:
		return "ins1"
	case SrcBlkArmAprAudio:
		return "arm-apr-audio"
	case SrcBlkAvs0:
		return "avs0"
	case SrcBlkAvs1:
		return "avs1"
	case SrcBlkMute:
		return "mute"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(id))
	}
}

// DstBlk addresses one channel of a destination block.
type DstBlk struct {
	ID DstBlkID
	Ch uint8
}

// Value packs the block into its wire representation, the identifier in
// the high nibble and the channel in the low nibble.
func (b DstBlk) Value() uint8 {
	return (uint8(b.ID) << 4) | (b.Ch & 0x0f)
}

// DstBlkFromValue unpacks the wire representation of a destination block.
func DstBlkFromValue(val uint8) DstBlk {
	return DstBlk{ID: DstBlkID(val >> 4), Ch: val & 0x0f}
}

func (b DstBlk) String() string {
	return fmt.Sprintf("%s:%d", b.ID, b.Ch)
}

// SrcBlk addresses one channel of a source block.
type SrcBlk struct {
	ID SrcBlkID
	Ch uint8
}

// Value packs the block into its wire representation, the identifier in
// the high nibble and the channel in the low nibble.
func (b SrcBlk) Value() uint8 {
	return (uint8(b.ID) << 4) | (b.Ch & 0x0f)
}

// SrcBlkFromValue unpacks the wire representation of a source block.
func SrcBlkFromValue(val uint8) SrcBlk {
	return SrcBlk{ID: SrcBlkID(val >> 4), Ch: val & 0x0f}
}

func (b SrcBlk) String() string {
	return fmt.Sprintf("%s:%d", b.ID, b.Ch)
}

// RouterEntry routes one source block channel to one destination block
// channel. The peak field carries the meter detected for the connection
// and is read-only.
type RouterEntry struct {
	Dst  DstBlk
	Src  SrcBlk
	Peak uint16
}

// RouterEntrySize is the size of a router entry in bytes.
const RouterEntrySize = 4

func parseRouterEntry(raw []byte) RouterEntry {
	val := getQuadlet(raw)
	return RouterEntry{
		Dst:  DstBlkFromValue(uint8(val & 0x000000ff)),
		Src:  SrcBlkFromValue(uint8((val & 0x0000ff00) >> 8)),
		Peak: uint16(val >> 16),
	}
}

func buildRouterEntry(entry RouterEntry, raw []byte) {
	val := (uint32(entry.Peak) << 16) |
		(uint32(entry.Src.Value()) << 8) |
		uint32(entry.Dst.Value())
	putQuadlet(raw, val)
}

func parseRouterEntries(raw []byte, count int) []RouterEntry {
	entries := make([]RouterEntry, count)
	for i := range entries {
		entries[i] = parseRouterEntry(raw[i*RouterEntrySize:])
	}
	return entries
}

func buildRouterEntries(entries []RouterEntry, raw []byte) {
	for i, entry := range entries {
		buildRouterEntry(entry, raw[i*RouterEntrySize:])
	}
}

const routerEntryCountOffset = 0
const routerEntriesOffset = 4

// ReadRouterEntries reads the live router configuration: the entry count
// quadlet followed by the entries. A count above the capability maximum
// is rejected as malformed.
func ReadRouterEntries(tr tcat.Transport, sections *Sections, caps *Caps, timeout time.Duration) ([]RouterEntry, error) {
	raw := make([]byte, 4)
	if err := readSection(tr, sections.Router, routerEntryCountOffset, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameRouter, Err: err}
	}

	count := int(getQuadlet(raw))
	if count > int(caps.Router.MaximumEntryCount) {
		return nil, tcat.SectionErrf(tcat.SectionNameRouter,
			"entry count %d above capability maximum %d: %w",
			count, caps.Router.MaximumEntryCount, tcat.ErrMalformedEntry)
	}
	if count == 0 {
		return []RouterEntry{}, nil
	}

	raw = make([]byte, count*RouterEntrySize)
	if err := readSection(tr, sections.Router, routerEntriesOffset, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameRouter, Err: err}
	}

	return parseRouterEntries(raw, count), nil
}

// WriteRouterEntries writes the whole router configuration: the entry
// count quadlet followed by the entries. The batch is bounded by the
// capability maximum before any transaction; the router must be exposed
// and mutable.
func WriteRouterEntries(tr tcat.Transport, sections *Sections, caps *Caps, entries []RouterEntry, timeout time.Duration) error {
	if !caps.Router.IsExposed {
		return tcat.SectionErrf(tcat.SectionNameRouter, "router configuration: %w", tcat.ErrFeatureUnavailable)
	}
	if caps.Router.IsReadonly {
		return tcat.SectionErrf(tcat.SectionNameRouter, "router configuration is immutable: %w", tcat.ErrFeatureUnavailable)
	}
	if len(entries) > int(caps.Router.MaximumEntryCount) {
		return tcat.SectionErrf(tcat.SectionNameRouter,
			"entry count %d above capability maximum %d",
			len(entries), caps.Router.MaximumEntryCount)
	}

	raw := make([]byte, 4+len(entries)*RouterEntrySize)
	putQuadlet(raw, uint32(len(entries)))
	buildRouterEntries(entries, raw[routerEntriesOffset:])

	if err := writeSection(tr, sections.Router, 0, raw, timeout); err != nil {
		return &tcat.SectionError{Section: tcat.SectionNameRouter, Err: err}
	}

	return nil
}
