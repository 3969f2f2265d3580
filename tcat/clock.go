package tcat

import "fmt"

// ClockRate is the nominal frequency of the media clock. Values outside
// the defined range flow through as reserved.
type ClockRate uint8

// Defined clock rate codes.
const (
	ClockRate32000  ClockRate = 0x00
	ClockRate44100  ClockRate = 0x01
	ClockRate48000  ClockRate = 0x02
	ClockRate88200  ClockRate = 0x03
	ClockRate96000  ClockRate = 0x04
	ClockRate176400 ClockRate = 0x05
	ClockRate192000 ClockRate = 0x06
	// ClockRateAnyLow is any rate up to 48.0 kHz.
	ClockRateAnyLow ClockRate = 0x07
	// ClockRateAnyMid is any rate between 48.0 and 96.0 kHz.
	ClockRateAnyMid ClockRate = 0x08
	// ClockRateAnyHigh is any rate above 96.0 kHz.
	ClockRateAnyHigh ClockRate = 0x09
	// ClockRateNone means the rate is not available.
	ClockRateNone ClockRate = 0x0a
)

// Frequency reports the rate in Hz. The second return value is false for
// the wildcard and reserved codes.
func (r ClockRate) Frequency() (uint32, bool) {
	switch r {
	case ClockRate32000:
		return 32000, true
	case ClockRate44100:
		return 44100, true
	case ClockRate48000:
		return 48000, true
	case ClockRate88200:
		return 88200, true
	case ClockRate96000:
		return 96000, true
	case ClockRate176400:
		return 176400, true
	case ClockRate192000:
		return 192000, true
	default:
		return 0, false
	}
}

func (r ClockRate) String() string {
	if freq, ok := r.Frequency(); ok {
		return fmt.Sprintf("%d", freq)
	}
	switch r {
	case ClockRateAnyLow:
		return "any-low"
	case ClockRateAnyMid:
		return "any-mid"
	case ClockRateAnyHigh:
		return "any-high"
	case ClockRateNone:
		return "none"
	default:
		return fmt.Sprintf("reserved(0x%02x)", uint8(r))
	}
}

// ClockSource is the signal source of the sampling clock. Values outside
// the defined range flow through as reserved.
type ClockSource uint8

// Defined clock source codes.
const (
	// ClockSourceAes1 is IEC 60958 receiver 0.
	ClockSourceAes1 ClockSource = 0x00
	// ClockSourceAes2 is IEC 60958 receiver 1.
	ClockSourceAes2 ClockSource = 0x01
	// ClockSourceAes3 is IEC 60958 receiver 2.
	ClockSourceAes3 ClockSource = 0x02
	// ClockSourceAes4 is IEC 60958 receiver 3.
	ClockSourceAes4 ClockSource = 0x03
	// ClockSourceAesAny is any IEC 60958 receiver.
	ClockSourceAesAny ClockSource = 0x04
	// ClockSourceAdat is the ADAT receiver.
	ClockSourceAdat ClockSource = 0x05
	// ClockSourceTdif is the TDIF receiver.
	ClockSourceTdif ClockSource = 0x06
	// ClockSourceWordClock is the word clock input.
	ClockSourceWordClock ClockSource = 0x07
	// ClockSourceArx1 is audio video system receiver 0.
	ClockSourceArx1 ClockSource = 0x08
	// ClockSourceArx2 is audio video system receiver 1.
	ClockSourceArx2 ClockSource = 0x09
	// ClockSourceArx3 is audio video system receiver 2.
	ClockSourceArx3 ClockSource = 0x0a
	// ClockSourceArx4 is audio video system receiver 3.
	ClockSourceArx4 ClockSource = 0x0b
	// ClockSourceInternal is the internal oscillator.
	ClockSourceInternal ClockSource = 0x0c
)

func (s ClockSource) String() string {
	switch s {
	case ClockSourceAes1:
		return "aes1"
	case ClockSourceAes2:
		return "aes2"
	case ClockSourceAes3:
		return "aes3"
	case ClockSourceAes4:
		return "aes4"
	case ClockSourceAesAny:
		return "aes-any"
	case ClockSourceAdat:
		return "adat"
	case ClockSourceTdif:
		return "tdif"
	case ClockSourceWordClock:
		return "word-clock"
	case ClockSourceArx1:
		return "arx1"
	case ClockSourceArx2:
		return "arx2"
	case ClockSourceArx3:
		return "arx3"
	case ClockSourceArx4:
		return "arx4"
	case ClockSourceInternal:
		return "internal"
	default:
		return fmt.Sprintf("reserved(0x%02x)", uint8(s))
	}
}

// IsStreamSource reports whether the source is an audio video system
// receiver, detectable from a tx stream rather than a physical input.
func (s ClockSource) IsStreamSource() bool {
	return s >= ClockSourceArx1 && s <= ClockSourceArx4
}

// ClockConfig is the configuration of media and sampling clock.
type ClockConfig struct {
	// Rate is the frequency of the media clock.
	Rate ClockRate
	// Source is the signal source of the sampling clock.
	Source ClockSource
}

func parseClockConfig(raw []byte) ClockConfig {
	val := getQuadlet(raw)
	return ClockConfig{
		Source: ClockSource(val & 0x000000ff),
		Rate:   ClockRate((val & 0x0000ff00) >> 8),
	}
}

func buildClockConfig(config ClockConfig, raw []byte) {
	val := (uint32(config.Rate) << 8) | uint32(config.Source)
	putQuadlet(raw, val)
}

// ClockStatus is the status of the sampling clock.
type ClockStatus struct {
	// SourceIsLocked reports whether the configured source is locked.
	SourceIsLocked bool
	// Rate is the detected frequency of the media clock.
	Rate ClockRate
}

func parseClockStatus(raw []byte) ClockStatus {
	val := getQuadlet(raw)
	return ClockStatus{
		SourceIsLocked: val&0x00000001 > 0,
		Rate:           ClockRate((val & 0x0000ff00) >> 8),
	}
}

// clockCapsRateTable maps bit positions of the clock capability register
// to rate codes.
var clockCapsRateTable = []ClockRate{
	ClockRate32000,
	ClockRate44100,
	ClockRate48000,
	ClockRate88200,
	ClockRate96000,
	ClockRate176400,
	ClockRate192000,
	ClockRateAnyLow,
	ClockRateAnyMid,
	ClockRateAnyHigh,
	ClockRateNone,
}

// clockCapsSourceTable maps bit positions of the clock capability register
// to source codes.
var clockCapsSourceTable = []ClockSource{
	ClockSourceAes1,
	ClockSourceAes2,
	ClockSourceAes3,
	ClockSourceAes4,
	ClockSourceAesAny,
	ClockSourceAdat,
	ClockSourceTdif,
	ClockSourceWordClock,
	ClockSourceArx1,
	ClockSourceArx2,
	ClockSourceArx3,
	ClockSourceArx4,
	ClockSourceInternal,
}

// externalClockSourceTable maps bit positions of the extended status
// register to external source codes. The internal oscillator is excluded.
var externalClockSourceTable = []ClockSource{
	ClockSourceAes1,
	ClockSourceAes2,
	ClockSourceAes3,
	ClockSourceAes4,
	ClockSourceAdat,
	ClockSourceTdif,
	ClockSourceArx1,
	ClockSourceArx2,
	ClockSourceArx3,
	ClockSourceArx4,
	ClockSourceWordClock,
}

// streamSourceLabelTable carries synthesized names for the stream
// sources. Devices always report their labels as "unused" even though the
// sources appear in the external source states.
var streamSourceLabelTable = []ClockSourceLabel{
	{Source: ClockSourceArx1, Label: "Stream-1"},
	{Source: ClockSourceArx2, Label: "Stream-2"},
	{Source: ClockSourceArx3, Label: "Stream-3"},
	{Source: ClockSourceArx4, Label: "Stream-4"},
}

func streamSourceLabel(src ClockSource) (string, bool) {
	for _, entry := range streamSourceLabelTable {
		if entry.Source == src {
			return entry.Label, true
		}
	}
	return "", false
}

// ClockSourceLabel pairs a clock source with its device-reported name.
type ClockSourceLabel struct {
	Source ClockSource
	Label  string
}
