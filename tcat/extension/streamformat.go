package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// AC3Channels is the number of channels carrying an AC3 capability flag
// in a stream format entry.
const AC3Channels = 32

// FormatEntry describes the format of one isochronous stream.
type FormatEntry struct {
	// PCMCount is the number of multi bit linear audio channels.
	PCMCount uint8
	// MIDICount is the number of MIDI conformant data channels.
	MIDICount uint8
	// Labels are the channel names.
	Labels []string
	// EnableAC3 flags channels enabled for AC3 bit streams.
	EnableAC3 [AC3Channels]bool
}

// FormatEntrySize is the size of a stream format entry in bytes.
const FormatEntrySize = 4 + 4 + formatEntryLabelsSize + 4

const formatEntryLabelsSize = 256

// ParseFormatEntry decodes a stream format entry. Channel counts above
// the 8-bit range are rejected as malformed.
func ParseFormatEntry(raw []byte) (*FormatEntry, error) {
	if len(raw) < FormatEntrySize {
		return nil, tcat.SectionErrf(tcat.SectionNameStreamFormatEntry,
			"content size %d smaller than required %d", len(raw), FormatEntrySize)
	}

	pcm := getQuadlet(raw[:4])
	midi := getQuadlet(raw[4:8])
	if pcm > 0xff || midi > 0xff {
		return nil, tcat.SectionErrf(tcat.SectionNameStreamFormatEntry,
			"channel counts %d/%d out of range: %w", pcm, midi, tcat.ErrMalformedEntry)
	}

	entry := &FormatEntry{
		PCMCount:  uint8(pcm),
		MIDICount: uint8(midi),
		Labels:    tcat.ParseLabels(raw[8 : 8+formatEntryLabelsSize]),
	}

	flags := getQuadlet(raw[8+formatEntryLabelsSize:])
	for i := range entry.EnableAC3 {
		entry.EnableAC3[i] = flags&(1<<i) > 0
	}

	return entry, nil
}

// BuildFormatEntry encodes a stream format entry.
func BuildFormatEntry(entry *FormatEntry) ([]byte, error) {
	raw := make([]byte, FormatEntrySize)

	putQuadlet(raw[:4], uint32(entry.PCMCount))
	putQuadlet(raw[4:8], uint32(entry.MIDICount))

	labels, err := tcat.BuildLabels(entry.Labels, formatEntryLabelsSize)
	if err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameStreamFormatEntry, Err: err}
	}
	copy(raw[8:], labels)

	var flags uint32
	for i, enabled := range entry.EnableAC3 {
		if enabled {
			flags |= 1 << i
		}
	}
	putQuadlet(raw[8+formatEntryLabelsSize:], flags)

	return raw, nil
}

func parseFormatEntries(raw []byte, count int) ([]FormatEntry, error) {
	entries := make([]FormatEntry, count)
	for i := range entries {
		entry, err := ParseFormatEntry(raw[i*FormatEntrySize:])
		if err != nil {
			return nil, err
		}
		entries[i] = *entry
	}
	return entries, nil
}

const streamFormatTxCountOffset = 0
const streamFormatRxCountOffset = 4
const streamFormatEntriesOffset = 8

func readFormatEntryPair(tr tcat.Transport, section tcat.Section, caps *Caps, name string, timeout time.Duration) (tx, rx []FormatEntry, err error) {
	raw := make([]byte, 8)
	if err := readSection(tr, section, streamFormatTxCountOffset, raw, timeout); err != nil {
		return nil, nil, &tcat.SectionError{Section: name, Err: err}
	}

	txCount := int(getQuadlet(raw[:4]))
	rxCount := int(getQuadlet(raw[4:8]))
	if txCount > int(caps.General.MaxTxStreams) || rxCount > int(caps.General.MaxRxStreams) {
		return nil, nil, tcat.SectionErrf(name,
			"stream counts %d/%d above capability maxima %d/%d: %w",
			txCount, rxCount, caps.General.MaxTxStreams, caps.General.MaxRxStreams,
			tcat.ErrMalformedEntry)
	}

	total := txCount + rxCount
	if total == 0 {
		return []FormatEntry{}, []FormatEntry{}, nil
	}

	raw = make([]byte, total*FormatEntrySize)
	if err := readSection(tr, section, streamFormatEntriesOffset, raw, timeout); err != nil {
		return nil, nil, &tcat.SectionError{Section: name, Err: err}
	}

	entries, err := parseFormatEntries(raw, total)
	if err != nil {
		return nil, nil, err
	}

	return entries[:txCount], entries[txCount:], nil
}

// ReadStreamFormatEntries reads the stream format configuration: tx and
// rx entry counts followed by the entries.
func ReadStreamFormatEntries(tr tcat.Transport, sections *Sections, caps *Caps, timeout time.Duration) (tx, rx []FormatEntry, err error) {
	return readFormatEntryPair(tr, sections.StreamFormat, caps, tcat.SectionNameStreamFormat, timeout)
}

// WriteStreamFormatEntries writes the whole stream format configuration.
// The device must support dynamic stream format changes; counts are
// bounded by the capability maxima before any transaction.
func WriteStreamFormatEntries(tr tcat.Transport, sections *Sections, caps *Caps, tx, rx []FormatEntry, timeout time.Duration) error {
	if !caps.General.DynamicStreamFormat {
		return tcat.SectionErrf(tcat.SectionNameStreamFormat,
			"stream format configuration is immutable: %w", tcat.ErrFeatureUnavailable)
	}
	if len(tx) > int(caps.General.MaxTxStreams) || len(rx) > int(caps.General.MaxRxStreams) {
		return tcat.SectionErrf(tcat.SectionNameStreamFormat,
			"stream counts %d/%d above capability maxima %d/%d",
			len(tx), len(rx), caps.General.MaxTxStreams, caps.General.MaxRxStreams)
	}

	raw := make([]byte, 8+(len(tx)+len(rx))*FormatEntrySize)
	putQuadlet(raw[:4], uint32(len(tx)))
	putQuadlet(raw[4:8], uint32(len(rx)))

	pos := streamFormatEntriesOffset
	for _, entries := range [][]FormatEntry{tx, rx} {
		for i := range entries {
			data, err := BuildFormatEntry(&entries[i])
			if err != nil {
				return err
			}
			copy(raw[pos:], data)
			pos += FormatEntrySize
		}
	}

	if err := writeSection(tr, sections.StreamFormat, 0, raw, timeout); err != nil {
		return &tcat.SectionError{Section: tcat.SectionNameStreamFormat, Err: err}
	}

	return nil
}
