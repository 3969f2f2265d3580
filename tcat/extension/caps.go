package extension

import (
	"fmt"
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// AsicType identifies the ASIC the firmware runs on.
type AsicType uint16

const (
	// AsicDiceII is the DICE II.
	AsicDiceII AsicType = 0
	// AsicTcd2210 is the TCD2210, also known as DICE Mini.
	AsicTcd2210 AsicType = 1
	// AsicTcd2220 is the TCD2220, also known as DICE Jr.
	AsicTcd2220 AsicType = 2
)

func (t AsicType) String() string {
	switch t {
	case AsicDiceII:
		return "DICE II"
	case AsicTcd2210:
		return "TCD2210"
	case AsicTcd2220:
		return "TCD2220"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(t))
	}
}

// RouterCaps is the capability of the router function.
type RouterCaps struct {
	// IsExposed reports whether the router configuration is exposed to
	// owner software.
	IsExposed bool
	// IsReadonly reports whether the router configuration is immutable.
	IsReadonly bool
	// IsStorable reports whether the router configuration is storable in
	// on-board flash memory.
	IsStorable bool
	// MaximumEntryCount bounds the number of router entries.
	MaximumEntryCount uint16
}

func parseRouterCaps(raw []byte) RouterCaps {
	val := getQuadlet(raw)
	return RouterCaps{
		IsExposed:         val&0x00000001 > 0,
		IsReadonly:        val&0x00000002 > 0,
		IsStorable:        val&0x00000004 > 0,
		MaximumEntryCount: uint16(val >> 16),
	}
}

func buildRouterCaps(caps RouterCaps, raw []byte) {
	var val uint32
	if caps.IsExposed {
		val |= 0x00000001
	}
	if caps.IsReadonly {
		val |= 0x00000002
	}
	if caps.IsStorable {
		val |= 0x00000004
	}
	val |= uint32(caps.MaximumEntryCount) << 16
	putQuadlet(raw, val)
}

// MixerCaps is the capability of the mixer function.
type MixerCaps struct {
	// IsExposed reports whether the mixer configuration is exposed to
	// owner software.
	IsExposed bool
	// IsReadonly reports whether the mixer configuration is immutable.
	IsReadonly bool
	// IsStorable reports whether the mixer configuration is storable in
	// on-board flash memory.
	IsStorable bool
	// InputDeviceID is the numeric identifier of the input device.
	InputDeviceID uint8
	// OutputDeviceID is the numeric identifier of the output device.
	OutputDeviceID uint8
	// InputCount is the number of mixer inputs.
	InputCount uint8
	// OutputCount is the number of mixer outputs.
	OutputCount uint8
}

func parseMixerCaps(raw []byte) MixerCaps {
	val := getQuadlet(raw)
	return MixerCaps{
		IsExposed:      val&0x00000001 > 0,
		IsReadonly:     val&0x00000002 > 0,
		IsStorable:     val&0x00000004 > 0,
		InputDeviceID:  uint8((val & 0x000000f0) >> 4),
		OutputDeviceID: uint8((val & 0x00000f00) >> 8),
		InputCount:     uint8((val & 0x00ff0000) >> 16),
		OutputCount:    uint8(val >> 24),
	}
}

func buildMixerCaps(caps MixerCaps, raw []byte) {
	var val uint32
	if caps.IsExposed {
		val |= 0x00000001
	}
	if caps.IsReadonly {
		val |= 0x00000002
	}
	if caps.IsStorable {
		val |= 0x00000004
	}
	val |= uint32(caps.InputDeviceID) << 4
	val |= uint32(caps.OutputDeviceID) << 8
	val |= uint32(caps.InputCount) << 16
	val |= uint32(caps.OutputCount) << 24
	putQuadlet(raw, val)
}

// GeneralCaps is the capability of the general function.
type GeneralCaps struct {
	// DynamicStreamFormat reports whether the stream format is mutable at
	// runtime.
	DynamicStreamFormat bool
	// StorageAvail reports whether on-board flash memory is available.
	StorageAvail bool
	// PeakAvail reports whether the peak section is available.
	PeakAvail bool
	// MaxTxStreams is the maximum number of tx streams.
	MaxTxStreams uint8
	// MaxRxStreams is the maximum number of rx streams.
	MaxRxStreams uint8
	// StreamFormatIsStorable reports whether the stream format
	// configuration is storable in on-board flash memory.
	StreamFormatIsStorable bool
	// Asic is the type of the ASIC.
	Asic AsicType
}

func parseGeneralCaps(raw []byte) (GeneralCaps, error) {
	val := getQuadlet(raw)
	caps := GeneralCaps{
		DynamicStreamFormat:    val&0x00000001 > 0,
		StorageAvail:           val&0x00000002 > 0,
		PeakAvail:              val&0x00000004 > 0,
		MaxTxStreams:           uint8((val & 0x000000f0) >> 4),
		MaxRxStreams:           uint8((val & 0x00000f00) >> 8),
		StreamFormatIsStorable: val&0x00001000 > 0,
		Asic:                   AsicType(val >> 16),
	}
	switch caps.Asic {
	case AsicDiceII, AsicTcd2210, AsicTcd2220:
	default:
		return caps, fmt.Errorf("ASIC type not found for value %d: %w", uint16(caps.Asic), tcat.ErrMalformedEntry)
	}
	return caps, nil
}

func buildGeneralCaps(caps GeneralCaps, raw []byte) {
	var val uint32
	if caps.DynamicStreamFormat {
		val |= 0x00000001
	}
	if caps.StorageAvail {
		val |= 0x00000002
	}
	if caps.PeakAvail {
		val |= 0x00000004
	}
	val |= uint32(caps.MaxTxStreams) << 4
	val |= uint32(caps.MaxRxStreams) << 8
	if caps.StreamFormatIsStorable {
		val |= 0x00001000
	}
	val |= uint32(caps.Asic) << 16
	putQuadlet(raw, val)
}

// Caps carries the capability registers of the extension.
type Caps struct {
	// Router is the capability of the router function.
	Router RouterCaps
	// Mixer is the capability of the mixer function.
	Mixer MixerCaps
	// General is the capability of the general function.
	General GeneralCaps
}

// CapsSize is the size of the capability registers in bytes.
const CapsSize = 12

// ParseCaps decodes the capability registers.
func ParseCaps(raw []byte) (*Caps, error) {
	if len(raw) < CapsSize {
		return nil, tcat.SectionErrf(tcat.SectionNameCaps, "content size %d smaller than required %d", len(raw), CapsSize)
	}

	general, err := parseGeneralCaps(raw[8:12])
	if err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameCaps, Err: err}
	}

	return &Caps{
		Router:  parseRouterCaps(raw[:4]),
		Mixer:   parseMixerCaps(raw[4:8]),
		General: general,
	}, nil
}

func buildCaps(caps *Caps, raw []byte) {
	buildRouterCaps(caps.Router, raw[:4])
	buildMixerCaps(caps.Mixer, raw[4:8])
	buildGeneralCaps(caps.General, raw[8:12])
}

// ReadCaps reads and decodes the capability registers.
func ReadCaps(tr tcat.Transport, sections *Sections, timeout time.Duration) (*Caps, error) {
	raw := make([]byte, CapsSize)
	if err := readSection(tr, sections.Caps, 0, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameCaps, Err: err}
	}
	return ParseCaps(raw)
}
