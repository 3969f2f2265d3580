package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// ReadApplicationData reads model-specific data from the application
// section into buf, starting at the given offset within the section.
func ReadApplicationData(tr tcat.Transport, sections *Sections, offset int, buf []byte, timeout time.Duration) error {
	if offset+len(buf) > sections.Application.Size {
		return tcat.SectionErrf(tcat.SectionNameAppl,
			"range %d..%d beyond section size %d", offset, offset+len(buf), sections.Application.Size)
	}
	if err := readSection(tr, sections.Application, offset, buf, timeout); err != nil {
		return &tcat.SectionError{Section: tcat.SectionNameAppl, Err: err}
	}
	return nil
}

// WriteApplicationData writes model-specific data to the application
// section at the given offset within the section.
func WriteApplicationData(tr tcat.Transport, sections *Sections, offset int, buf []byte, timeout time.Duration) error {
	if offset+len(buf) > sections.Application.Size {
		return tcat.SectionErrf(tcat.SectionNameAppl,
			"range %d..%d beyond section size %d", offset, offset+len(buf), sections.Application.Size)
	}
	if err := writeSection(tr, sections.Application, offset, buf, timeout); err != nil {
		return &tcat.SectionError{Section: tcat.SectionNameAppl, Err: err}
	}
	return nil
}
