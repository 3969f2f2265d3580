package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// ReadPeakEntries reads the peak meters. The section mirrors the router
// entries with the peak field updated by hardware; only entries up to the
// live router count carry meaningful data. The peak function must be
// reported available by the capability registers, otherwise no
// transaction is issued.
func ReadPeakEntries(tr tcat.Transport, sections *Sections, caps *Caps, timeout time.Duration) ([]RouterEntry, error) {
	if !caps.General.PeakAvail {
		return nil, tcat.SectionErrf(tcat.SectionNamePeak, "peak meters: %w", tcat.ErrFeatureUnavailable)
	}

	count := int(caps.Router.MaximumEntryCount)
	if max := sections.Peak.Size / RouterEntrySize; count > max {
		count = max
	}
	if count == 0 {
		return []RouterEntry{}, nil
	}

	raw := make([]byte, count*RouterEntrySize)
	if err := readSection(tr, sections.Peak, 0, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNamePeak, Err: err}
	}

	return parseRouterEntries(raw, count), nil
}
