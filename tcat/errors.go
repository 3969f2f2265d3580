package tcat

import (
	"errors"
	"fmt"
)

// Names of register sections used to tag errors.
const (
	SectionNameGlobal         = "global"
	SectionNameTxStreamFormat = "tx-stream-format"
	SectionNameRxStreamFormat = "rx-stream-format"
	SectionNameExtSync        = "ext-sync"

	SectionNameCaps              = "caps"
	SectionNameCmd               = "command"
	SectionNameMixer             = "mixer"
	SectionNamePeak              = "peak"
	SectionNameRouter            = "router"
	SectionNameRouterEntry       = "router-entry"
	SectionNameStreamFormat      = "stream-format"
	SectionNameStreamFormatEntry = "stream-format-entry"
	SectionNameCurrentConfig     = "current-config"
	SectionNameStandalone        = "standalone"
	SectionNameAppl              = "application"
)

// ErrFeatureUnavailable indicates that the capability registers report the
// requested function as not implemented or not exposed by the device. No
// transaction is issued when this error is returned.
var ErrFeatureUnavailable = errors.New("feature not available")

// ErrMalformedEntry indicates that register content failed structural
// validation during decode.
var ErrMalformedEntry = errors.New("malformed entry")

// ErrStaleCapabilities indicates that cached section tables and capability
// registers were invalidated by a bus reset and must be read again before
// any further operation.
var ErrStaleCapabilities = errors.New("stale capabilities, bootstrap required")

// SectionError tags a failure with the register section the operation was
// addressing.
type SectionError struct {
	// Section is one of the SectionName constants.
	Section string
	// Err is the underlying cause.
	Err error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s section: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

func sectionErr(section string, format string, args ...any) error {
	return &SectionError{Section: section, Err: fmt.Errorf(format, args...)}
}

// SectionErrf wraps an error with a section tag. It is used by the
// extension package to tag failures consistently with this package.
func SectionErrf(section string, format string, args ...any) error {
	return sectionErr(section, format, args...)
}
