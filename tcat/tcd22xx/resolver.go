package tcd22xx

import (
	"fmt"
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/extension"
)

// CapacityError reports a router table larger than the device accepts.
type CapacityError struct {
	// Need is the number of entries the resolved table requires.
	Need int
	// Max is the maximum entry count from the capability registers.
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("router table needs %d entries, device accepts %d", e.Need, e.Max)
}

// placeholderDst fills the destination of entries inserted to keep a
// fixed source in place when nothing routes from it.
var placeholderDst = extension.DstBlk{ID: 0x0f, Ch: 0x0f}

// RefineRouterEntries turns candidate entries into a table the device
// accepts at the given rate mode. Entries whose source or destination is
// not available are dropped and counted. Fixed sources are placed first,
// in declared order: an existing entry with that source is swapped into
// position, otherwise a placeholder entry is inserted. A fixed source
// absent from the available set fails the whole resolution.
func (s *Spec) RefineRouterEntries(entries []extension.RouterEntry, avail *AvailableBlocks) (kept []extension.RouterEntry, dropped int, err error) {
	kept = make([]extension.RouterEntry, 0, len(entries))
	for _, entry := range entries {
		if !avail.HasSrc(entry.Src) || !avail.HasDst(entry.Dst) {
			dropped++
			continue
		}
		kept = append(kept, entry)
	}

	for i, src := range s.Fixed {
		if !avail.HasSrc(src) {
			return nil, 0, fmt.Errorf("fixed source %s not available", src)
		}

		pos := -1
		for j := range kept {
			if kept[j].Src == src {
				pos = j
				break
			}
		}
		if pos >= 0 {
			kept[i], kept[pos] = kept[pos], kept[i]
			continue
		}

		placeholder := extension.RouterEntry{Dst: placeholderDst, Src: src}
		kept = append(kept[:i], append([]extension.RouterEntry{placeholder}, kept[i:]...)...)
	}

	return kept, dropped, nil
}

// UpdateRouterEntries resolves candidate entries against the available
// blocks, writes the router section and initiates the load command for
// the rate mode. The resolved table and the dropped candidate count are
// returned; nothing is written when resolution or the capacity check
// fails.
func UpdateRouterEntries(tr tcat.Transport, sections *extension.Sections, caps *extension.Caps, spec *Spec, avail *AvailableBlocks, mode tcat.RateMode, entries []extension.RouterEntry, timeout time.Duration) ([]extension.RouterEntry, int, error) {
	kept, dropped, err := spec.RefineRouterEntries(entries, avail)
	if err != nil {
		return nil, 0, err
	}
	if len(kept) > int(caps.Router.MaximumEntryCount) {
		return nil, 0, &CapacityError{Need: len(kept), Max: int(caps.Router.MaximumEntryCount)}
	}

	if err := extension.WriteRouterEntries(tr, sections, caps, kept, timeout); err != nil {
		return nil, 0, err
	}

	op := extension.Opcode{Kind: extension.OpcodeLoadRouter, Rate: mode}
	if _, err := extension.InitiateCommand(tr, sections, caps, op, timeout); err != nil {
		return nil, 0, err
	}

	return kept, dropped, nil
}

// DetectAvailableBlocks reads the stream formats applied for the rate
// mode and computes the available blocks from them.
func DetectAvailableBlocks(tr tcat.Transport, sections *extension.Sections, caps *extension.Caps, spec *Spec, mode tcat.RateMode, timeout time.Duration) (*AvailableBlocks, error) {
	tx, rx, err := extension.ReadCurrentStreamFormatEntries(tr, sections, caps, mode, timeout)
	if err != nil {
		return nil, err
	}
	return spec.ComputeAvailableBlocks(caps, mode, tx, rx), nil
}

// LoadConfigurationFromFlash restores all configurations from on-board
// flash memory.
func LoadConfigurationFromFlash(tr tcat.Transport, sections *extension.Sections, caps *extension.Caps, timeout time.Duration) error {
	op := extension.Opcode{Kind: extension.OpcodeLoadConfigFromFlash}
	_, err := extension.InitiateCommand(tr, sections, caps, op, timeout)
	return err
}

// StoreConfigurationToFlash saves all configurations to on-board flash
// memory.
func StoreConfigurationToFlash(tr tcat.Transport, sections *extension.Sections, caps *extension.Caps, timeout time.Duration) error {
	op := extension.Opcode{Kind: extension.OpcodeStoreConfigToFlash}
	_, err := extension.InitiateCommand(tr, sections, caps, op, timeout)
	return err
}
