package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// Offsets of the applied configuration mirrors within the current
// configuration section, per rate mode.
const (
	currentRouterLowOffset  = 0x0000
	currentStreamLowOffset  = 0x1000
	currentRouterMidOffset  = 0x2000
	currentStreamMidOffset  = 0x3000
	currentRouterHighOffset = 0x4000
	currentStreamHighOffset = 0x5000
)

func currentRouterOffset(mode tcat.RateMode) int {
	switch mode {
	case tcat.RateModeMiddle:
		return currentRouterMidOffset
	case tcat.RateModeHigh:
		return currentRouterHighOffset
	default:
		return currentRouterLowOffset
	}
}

func currentStreamFormatOffset(mode tcat.RateMode) int {
	switch mode {
	case tcat.RateModeMiddle:
		return currentStreamMidOffset
	case tcat.RateModeHigh:
		return currentStreamHighOffset
	default:
		return currentStreamLowOffset
	}
}

// ReadCurrentRouterEntries reads the router configuration applied for the
// given rate mode from the read-only current configuration section.
func ReadCurrentRouterEntries(tr tcat.Transport, sections *Sections, caps *Caps, mode tcat.RateMode, timeout time.Duration) ([]RouterEntry, error) {
	base := currentRouterOffset(mode)

	raw := make([]byte, 4)
	if err := readSection(tr, sections.CurrentConfig, base, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameCurrentConfig, Err: err}
	}

	count := int(getQuadlet(raw))
	if count > int(caps.Router.MaximumEntryCount) {
		return nil, tcat.SectionErrf(tcat.SectionNameCurrentConfig,
			"entry count %d above capability maximum %d: %w",
			count, caps.Router.MaximumEntryCount, tcat.ErrMalformedEntry)
	}
	if count == 0 {
		return []RouterEntry{}, nil
	}

	raw = make([]byte, count*RouterEntrySize)
	if err := readSection(tr, sections.CurrentConfig, base+routerEntriesOffset, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameCurrentConfig, Err: err}
	}

	return parseRouterEntries(raw, count), nil
}

// ReadCurrentStreamFormatEntries reads the stream format configuration
// applied for the given rate mode from the read-only current
// configuration section.
func ReadCurrentStreamFormatEntries(tr tcat.Transport, sections *Sections, caps *Caps, mode tcat.RateMode, timeout time.Duration) (tx, rx []FormatEntry, err error) {
	base := currentStreamFormatOffset(mode)
	section := tcat.Section{
		Offset: sections.CurrentConfig.Offset + base,
		Size:   sections.CurrentConfig.Size - base,
	}
	return readFormatEntryPair(tr, section, caps, tcat.SectionNameCurrentConfig, timeout)
}
