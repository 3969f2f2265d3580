package tcat

import "time"

// Section locates a range of registers in the register space.
type Section struct {
	// Offset of the section from the base of its address space, in bytes.
	Offset int
	// Size of the section in bytes.
	Size int
}

// SectionSize is the size of a section table entry in bytes.
const SectionSize = 8

func parseSection(raw []byte) Section {
	return Section{
		Offset: 4 * int(getQuadlet(raw[:4])),
		Size:   4 * int(getQuadlet(raw[4:8])),
	}
}

func buildSection(section Section, raw []byte) {
	putQuadlet(raw[:4], uint32(section.Offset/4))
	putQuadlet(raw[4:8], uint32(section.Size/4))
}

// GeneralSections is the table of sections for the general protocol,
// located at the start of the register space.
type GeneralSections struct {
	// Global settings.
	Global Section
	// Tx stream format settings.
	TxStreamFormat Section
	// Rx stream format settings.
	RxStreamFormat Section
	// Extended status of synchronization for clock sources.
	ExtSync  Section
	Reserved Section
}

const generalSectionCount = 5

// GeneralSectionsSize is the size of the general section table in bytes.
const GeneralSectionsSize = SectionSize * generalSectionCount

func parseGeneralSections(raw []byte) *GeneralSections {
	return &GeneralSections{
		Global:         parseSection(raw[:8]),
		TxStreamFormat: parseSection(raw[8:16]),
		RxStreamFormat: parseSection(raw[16:24]),
		ExtSync:        parseSection(raw[24:32]),
		Reserved:       parseSection(raw[32:40]),
	}
}

func buildGeneralSections(sections *GeneralSections, raw []byte) {
	buildSection(sections.Global, raw[:8])
	buildSection(sections.TxStreamFormat, raw[8:16])
	buildSection(sections.RxStreamFormat, raw[16:24])
	buildSection(sections.ExtSync, raw[24:32])
	buildSection(sections.Reserved, raw[32:40])
}

// ReadGeneralSections reads the section table from the start of the
// register space.
func ReadGeneralSections(tr Transport, timeout time.Duration) (*GeneralSections, error) {
	raw := make([]byte, GeneralSectionsSize)
	if err := Read(tr, 0, raw, timeout); err != nil {
		return nil, err
	}
	return parseGeneralSections(raw), nil
}

// checkSection verifies that the section is large enough for the
// parameters an operation is about to move.
func checkSection(section Section, minSize int, name string) error {
	if section.Size < minSize {
		return sectionErr(name, "section size %d smaller than required %d", section.Size, minSize)
	}
	return nil
}
