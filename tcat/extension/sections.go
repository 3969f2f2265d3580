package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// Offset is the offset of the extension register space from the base of
// the general register space.
const Offset = 0x00200000

// Sections is the table of sections for the protocol extension, located
// at the start of the extension register space.
type Sections struct {
	// Capability registers.
	Caps tcat.Section
	// Command execution.
	Cmd tcat.Section
	// Mixer saturation and coefficients.
	Mixer tcat.Section
	// Peak meters per router entry.
	Peak tcat.Section
	// Live router configuration.
	Router tcat.Section
	// Stream format configuration.
	StreamFormat tcat.Section
	// Read-only mirror of applied configurations per rate mode.
	CurrentConfig tcat.Section
	// Configuration used when operating without an owner.
	Standalone tcat.Section
	// Application specific configuration.
	Application tcat.Section
}

const sectionCount = 9

// SectionsSize is the size of the extension section table in bytes.
const SectionsSize = tcat.SectionSize * sectionCount

func parseSections(raw []byte) *Sections {
	sections := &Sections{}
	for i, section := range []*tcat.Section{
		&sections.Caps, &sections.Cmd, &sections.Mixer,
		&sections.Peak, &sections.Router, &sections.StreamFormat,
		&sections.CurrentConfig, &sections.Standalone, &sections.Application,
	} {
		pos := i * tcat.SectionSize
		section.Offset = 4 * int(getQuadlet(raw[pos:]))
		section.Size = 4 * int(getQuadlet(raw[pos+4:]))
	}
	return sections
}

func buildSections(sections *Sections, raw []byte) {
	for i, section := range []tcat.Section{
		sections.Caps, sections.Cmd, sections.Mixer,
		sections.Peak, sections.Router, sections.StreamFormat,
		sections.CurrentConfig, sections.Standalone, sections.Application,
	} {
		pos := i * tcat.SectionSize
		putQuadlet(raw[pos:], uint32(section.Offset/4))
		putQuadlet(raw[pos+4:], uint32(section.Size/4))
	}
}

// ReadSections reads the section table from the start of the extension
// register space.
func ReadSections(tr tcat.Transport, timeout time.Duration) (*Sections, error) {
	raw := make([]byte, SectionsSize)
	if err := tcat.Read(tr, Offset, raw, timeout); err != nil {
		return nil, err
	}
	return parseSections(raw), nil
}

// readSection reads registers at offset within an extension section.
func readSection(tr tcat.Transport, section tcat.Section, offset int, buf []byte, timeout time.Duration) error {
	return tcat.Read(tr, Offset+section.Offset+offset, buf, timeout)
}

// writeSection writes registers at offset within an extension section.
func writeSection(tr tcat.Transport, section tcat.Section, offset int, buf []byte, timeout time.Duration) error {
	return tcat.Write(tr, Offset+section.Offset+offset, buf, timeout)
}
