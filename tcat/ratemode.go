package tcat

// RateMode is one of the three operating regimes of the sampling transfer
// frequency. Several hardware resources scale with it.
type RateMode uint8

const (
	// RateModeLow covers rates up to 48.0 kHz.
	RateModeLow RateMode = iota
	// RateModeMiddle covers rates up to 96.0 kHz.
	RateModeMiddle
	// RateModeHigh covers rates up to 192.0 kHz.
	RateModeHigh
)

func (m RateMode) String() string {
	switch m {
	case RateModeMiddle:
		return "middle"
	case RateModeHigh:
		return "high"
	default:
		return "low"
	}
}

// RateModeFromFrequency derives the rate mode from a sampling transfer
// frequency in Hz.
func RateModeFromFrequency(freq uint32) RateMode {
	switch {
	case freq <= 48000:
		return RateModeLow
	case freq <= 96000:
		return RateModeMiddle
	default:
		return RateModeHigh
	}
}

// RateModeFromClockRate derives the rate mode from a clock rate code. The
// wildcard and reserved codes map to the lowest regime covering them.
func RateModeFromClockRate(rate ClockRate) RateMode {
	switch rate {
	case ClockRate88200, ClockRate96000, ClockRateAnyMid:
		return RateModeMiddle
	case ClockRate176400, ClockRate192000, ClockRateAnyHigh:
		return RateModeHigh
	default:
		return RateModeLow
	}
}
