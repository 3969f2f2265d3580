package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// AdatMode is the mode of the ADAT interface when operating standalone.
type AdatMode uint8

const (
	// AdatModeNormal carries 8 channels.
	AdatModeNormal AdatMode = 0
	// AdatModeSMUX2 carries 4 channels at double rate.
	AdatModeSMUX2 AdatMode = 1
	// AdatModeSMUX4 carries 2 channels at quadruple rate.
	AdatModeSMUX4 AdatMode = 2
	// AdatModeAuto follows the sampling rate.
	AdatModeAuto AdatMode = 3
)

func (m AdatMode) String() string {
	switch m {
	case AdatModeNormal:
		return "normal"
	case AdatModeSMUX2:
		return "smux2"
	case AdatModeSMUX4:
		return "smux4"
	default:
		return "auto"
	}
}

// WordClockMode is the mode of the word clock interface when operating
// standalone.
type WordClockMode uint8

const (
	WordClockModeNormal WordClockMode = 0
	WordClockModeLow    WordClockMode = 1
	WordClockModeMiddle WordClockMode = 2
	WordClockModeHigh   WordClockMode = 3
)

func (m WordClockMode) String() string {
	switch m {
	case WordClockModeLow:
		return "low"
	case WordClockModeMiddle:
		return "middle"
	case WordClockModeHigh:
		return "high"
	default:
		return "normal"
	}
}

// WordClockRate scales the word clock by a rational factor.
type WordClockRate struct {
	Numerator   uint16
	Denominator uint16
}

// WordClockParam is the word clock configuration when operating
// standalone.
type WordClockParam struct {
	Mode WordClockMode
	Rate WordClockRate
}

// StandaloneParameters is the configuration the device applies when
// operating without an owner on the bus.
type StandaloneParameters struct {
	// ClockSource is the source of the sampling clock.
	ClockSource tcat.ClockSource
	// AesHighRate selects the AES input mode at high rates.
	AesHighRate bool
	// AdatMode is the mode of the ADAT interface.
	AdatMode AdatMode
	// WordClock is the word clock configuration.
	WordClock WordClockParam
	// InternalRate is the internally generated sampling rate.
	InternalRate tcat.ClockRate
}

// standaloneMinSize is the minimum size of the standalone section.
const standaloneMinSize = 20

const (
	standaloneClockSourceOffset  = 0x00
	standaloneAesConfigOffset    = 0x04
	standaloneAdatConfigOffset   = 0x08
	standaloneWcConfigOffset     = 0x0c
	standaloneInternalRateOffset = 0x10
)

func buildStandaloneParameters(params *StandaloneParameters, raw []byte) error {
	putQuadlet(raw[standaloneClockSourceOffset:], uint32(params.ClockSource))
	putBoolQuadlet(raw[standaloneAesConfigOffset:], params.AesHighRate)
	putQuadlet(raw[standaloneAdatConfigOffset:], uint32(params.AdatMode))

	if params.WordClock.Rate.Numerator < 1 || params.WordClock.Rate.Denominator < 1 {
		return tcat.SectionErrf(tcat.SectionNameStandalone,
			"invalid word clock rate %d/%d",
			params.WordClock.Rate.Numerator, params.WordClock.Rate.Denominator)
	}
	val := uint32(params.WordClock.Mode) & 0x03
	val |= uint32(params.WordClock.Rate.Numerator-1) << 4
	val |= uint32(params.WordClock.Rate.Denominator-1) << 16
	putQuadlet(raw[standaloneWcConfigOffset:], val)

	putQuadlet(raw[standaloneInternalRateOffset:], uint32(params.InternalRate))

	return nil
}

func parseStandaloneParameters(raw []byte) *StandaloneParameters {
	params := &StandaloneParameters{
		ClockSource: tcat.ClockSource(getQuadlet(raw[standaloneClockSourceOffset:])),
		AesHighRate: getBoolQuadlet(raw[standaloneAesConfigOffset:]),
	}

	switch getQuadlet(raw[standaloneAdatConfigOffset:]) {
	case 0x01:
		params.AdatMode = AdatModeSMUX2
	case 0x02:
		params.AdatMode = AdatModeSMUX4
	case 0x03:
		params.AdatMode = AdatModeAuto
	default:
		params.AdatMode = AdatModeNormal
	}

	val := getQuadlet(raw[standaloneWcConfigOffset:])
	params.WordClock.Mode = WordClockMode(val & 0x03)
	params.WordClock.Rate.Numerator = 1 + uint16((val>>4)&0x0fff)
	params.WordClock.Rate.Denominator = 1 + uint16(val>>16)

	params.InternalRate = tcat.ClockRate(getQuadlet(raw[standaloneInternalRateOffset:]))

	return params
}

// ReadStandaloneParameters reads the standalone configuration.
func ReadStandaloneParameters(tr tcat.Transport, sections *Sections, timeout time.Duration) (*StandaloneParameters, error) {
	if sections.Standalone.Size < standaloneMinSize {
		return nil, tcat.SectionErrf(tcat.SectionNameStandalone,
			"section size %d smaller than required %d", sections.Standalone.Size, standaloneMinSize)
	}

	raw := make([]byte, standaloneMinSize)
	if err := readSection(tr, sections.Standalone, 0, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameStandalone, Err: err}
	}

	return parseStandaloneParameters(raw), nil
}

// UpdateStandaloneParameters writes the standalone configuration.
func UpdateStandaloneParameters(tr tcat.Transport, sections *Sections, params *StandaloneParameters, timeout time.Duration) error {
	if sections.Standalone.Size < standaloneMinSize {
		return tcat.SectionErrf(tcat.SectionNameStandalone,
			"section size %d smaller than required %d", sections.Standalone.Size, standaloneMinSize)
	}

	raw := make([]byte, standaloneMinSize)
	if err := buildStandaloneParameters(params, raw); err != nil {
		return err
	}

	if err := writeSection(tr, sections.Standalone, 0, raw, timeout); err != nil {
		return &tcat.SectionError{Section: tcat.SectionNameStandalone, Err: err}
	}

	return nil
}
