// Package tcd22xx resolves router configurations for devices built on the
// TCD22xx family of ASICs. A declarative Spec describes the physical ports
// a model wires up; the resolver combines it with the capability registers
// and the applied stream formats to compute the blocks available at a rate
// mode, and refines candidate router entries into a table the device
// accepts.
package tcd22xx

import (
	"fmt"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/extension"
)

// Input declares a contiguous range of source block channels a model
// wires to physical inputs.
type Input struct {
	ID     extension.SrcBlkID
	Offset uint8
	Count  uint8
	// Label overrides the block name for display. Empty means the block
	// name itself.
	Label string
}

// Output declares a contiguous range of destination block channels a
// model wires to physical outputs.
type Output struct {
	ID     extension.DstBlkID
	Offset uint8
	Count  uint8
	Label  string
}

// Spec declares the routing topology of one model. Specs are plain
// values: built-in tables, test-constructed, or loaded from YAML.
type Spec struct {
	Inputs  []Input
	Outputs []Output
	// Fixed lists sources which must occupy the leading router entries,
	// in order.
	Fixed []extension.SrcBlk
	// AvailableSourceOverride replaces the clock source list decoded from
	// the clock capability register, for models whose firmware reports a
	// broken bitmap.
	AvailableSourceOverride []tcat.ClockSource
}

// ADAT channel capacity per rate mode. The interface multiplexes 8
// channels at low rates, 4 at middle, 2 at high.
var adatChannels = [3]uint8{8, 4, 2}

// Mixer output capacity per rate mode.
var mixerOutPorts = [3]uint8{16, 16, 8}

// Mixer input ports, in wire order.
var mixerInPorts = []struct {
	id    extension.DstBlkID
	count uint8
}{
	{extension.DstBlkMixerTx0, 16},
	{extension.DstBlkMixerTx1, 2},
}

// AvailableBlocks is the set of block channels usable in router entries
// at one rate mode.
type AvailableBlocks struct {
	Srcs []extension.SrcBlk
	Dsts []extension.DstBlk
}

// HasSrc reports whether the source block channel is available.
func (a *AvailableBlocks) HasSrc(blk extension.SrcBlk) bool {
	for _, src := range a.Srcs {
		if src == blk {
			return true
		}
	}
	return false
}

// HasDst reports whether the destination block channel is available.
func (a *AvailableBlocks) HasDst(blk extension.DstBlk) bool {
	for _, dst := range a.Dsts {
		if dst == blk {
			return true
		}
	}
	return false
}

// realBlocks expands the declared inputs and outputs at the rate mode.
// ADAT declarations are scaled to the multiplexed channel capacity and
// renumbered from the count of ADAT channels already emitted, so split
// declarations stay contiguous.
func (s *Spec) realBlocks(mode tcat.RateMode) ([]extension.SrcBlk, []extension.DstBlk) {
	var srcs []extension.SrcBlk
	adatSrcs := uint8(0)
	for _, entry := range s.Inputs {
		offset, count := entry.Offset, entry.Count
		if entry.ID == extension.SrcBlkAdat {
			offset = adatSrcs
			count = min(count, adatChannels[mode])
			adatSrcs += count
		}
		for ch := uint8(0); ch < count; ch++ {
			srcs = append(srcs, extension.SrcBlk{ID: entry.ID, Ch: offset + ch})
		}
	}

	var dsts []extension.DstBlk
	adatDsts := uint8(0)
	for _, entry := range s.Outputs {
		offset, count := entry.Offset, entry.Count
		if entry.ID == extension.DstBlkAdat {
			offset = adatDsts
			count = min(count, adatChannels[mode])
			adatDsts += count
		}
		for ch := uint8(0); ch < count; ch++ {
			dsts = append(dsts, extension.DstBlk{ID: entry.ID, Ch: offset + ch})
		}
	}

	return srcs, dsts
}

// streamBlocks expands the applied stream formats. Transmitted streams
// consume audio, so they appear as destinations; received streams produce
// audio, so they appear as sources. At most two stream blocks exist in
// each direction.
func streamBlocks(tx, rx []extension.FormatEntry) ([]extension.SrcBlk, []extension.DstBlk) {
	var dsts []extension.DstBlk
	for i, id := range []extension.DstBlkID{extension.DstBlkAvs0, extension.DstBlkAvs1} {
		if i >= len(tx) {
			break
		}
		for ch := uint8(0); ch < tx[i].PCMCount; ch++ {
			dsts = append(dsts, extension.DstBlk{ID: id, Ch: ch})
		}
	}

	var srcs []extension.SrcBlk
	for i, id := range []extension.SrcBlkID{extension.SrcBlkAvs0, extension.SrcBlkAvs1} {
		if i >= len(rx) {
			break
		}
		for ch := uint8(0); ch < rx[i].PCMCount; ch++ {
			srcs = append(srcs, extension.SrcBlk{ID: id, Ch: ch})
		}
	}

	return srcs, dsts
}

// mixerBlocks expands the mixer ports, bounded by both the capability
// registers and the per-rate capacity.
func mixerBlocks(caps *extension.Caps, mode tcat.RateMode) ([]extension.SrcBlk, []extension.DstBlk) {
	outCount := min(caps.Mixer.OutputCount, mixerOutPorts[mode])
	srcs := make([]extension.SrcBlk, 0, outCount)
	for ch := uint8(0); ch < outCount; ch++ {
		srcs = append(srcs, extension.SrcBlk{ID: extension.SrcBlkMixer, Ch: ch})
	}

	var dsts []extension.DstBlk
	remain := caps.Mixer.InputCount
	for _, port := range mixerInPorts {
		count := min(port.count, remain)
		for ch := uint8(0); ch < count; ch++ {
			dsts = append(dsts, extension.DstBlk{ID: port.id, Ch: ch})
		}
		remain -= count
	}

	return srcs, dsts
}

// ComputeAvailableBlocks combines the declared topology, the capability
// registers and the applied stream formats into the set of blocks usable
// at the rate mode.
func (s *Spec) ComputeAvailableBlocks(caps *extension.Caps, mode tcat.RateMode, tx, rx []extension.FormatEntry) *AvailableBlocks {
	realSrcs, realDsts := s.realBlocks(mode)
	streamSrcs, streamDsts := streamBlocks(tx, rx)
	mixerSrcs, mixerDsts := mixerBlocks(caps, mode)

	avail := &AvailableBlocks{}
	avail.Srcs = append(append(append(avail.Srcs, realSrcs...), streamSrcs...), mixerSrcs...)
	avail.Dsts = append(append(append(avail.Dsts, realDsts...), streamDsts...), mixerDsts...)
	return avail
}

// SrcBlkLabel names a source block channel using the declared inputs.
// Channels not covered by a declaration keep the raw block name.
func (s *Spec) SrcBlkLabel(blk extension.SrcBlk) string {
	for _, entry := range s.Inputs {
		if entry.ID != blk.ID || blk.Ch < entry.Offset || blk.Ch >= entry.Offset+entry.Count {
			continue
		}
		label := entry.Label
		if label == "" {
			label = entry.ID.String()
		}
		return fmt.Sprintf("%s-%d", label, blk.Ch-entry.Offset+1)
	}
	return blk.String()
}

// DstBlkLabel names a destination block channel using the declared
// outputs. Channels not covered by a declaration keep the raw block name.
func (s *Spec) DstBlkLabel(blk extension.DstBlk) string {
	for _, entry := range s.Outputs {
		if entry.ID != blk.ID || blk.Ch < entry.Offset || blk.Ch >= entry.Offset+entry.Count {
			continue
		}
		label := entry.Label
		if label == "" {
			label = entry.ID.String()
		}
		return fmt.Sprintf("%s-%d", label, blk.Ch-entry.Offset+1)
	}
	return blk.String()
}
