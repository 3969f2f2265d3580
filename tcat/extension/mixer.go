package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// Dimensions of the coefficient grid in the mixer section. The hardware
// always lays out the full grid regardless of how many ports the
// capability registers expose.
const (
	MixerMaxOutputCount = 16
	MixerMaxInputCount  = 18
)

const (
	mixerSaturationOffset   = 0x00
	mixerCoefficientsOffset = 0x04
)

func checkMixerCaps(caps *Caps) error {
	if !caps.Mixer.IsExposed {
		return tcat.SectionErrf(tcat.SectionNameMixer, "mixer: %w", tcat.ErrFeatureUnavailable)
	}
	return nil
}

// ReadMixerSaturation reads the saturation flag of each mixer output.
func ReadMixerSaturation(tr tcat.Transport, sections *Sections, caps *Caps, timeout time.Duration) ([]bool, error) {
	if err := checkMixerCaps(caps); err != nil {
		return nil, err
	}

	raw := make([]byte, 4)
	if err := readSection(tr, sections.Mixer, mixerSaturationOffset, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameMixer, Err: err}
	}

	val := getQuadlet(raw)
	flags := make([]bool, caps.Mixer.OutputCount)
	for i := range flags {
		flags[i] = val&(1<<i) > 0
	}
	return flags, nil
}

// ReadMixerCoefficients reads the coefficient grid, one row of input
// gains per mixer output. Each coefficient occupies the low 16 bits of a
// quadlet.
func ReadMixerCoefficients(tr tcat.Transport, sections *Sections, caps *Caps, timeout time.Duration) ([][]uint16, error) {
	if err := checkMixerCaps(caps); err != nil {
		return nil, err
	}

	raw := make([]byte, 4*MixerMaxOutputCount*MixerMaxInputCount)
	if err := readSection(tr, sections.Mixer, mixerCoefficientsOffset, raw, timeout); err != nil {
		return nil, &tcat.SectionError{Section: tcat.SectionNameMixer, Err: err}
	}

	coefs := make([][]uint16, caps.Mixer.OutputCount)
	for dst := range coefs {
		row := make([]uint16, caps.Mixer.InputCount)
		for src := range row {
			pos := 4 * (dst*MixerMaxInputCount + src)
			row[src] = uint16(getQuadlet(raw[pos:]))
		}
		coefs[dst] = row
	}
	return coefs, nil
}

// UpdateMixerCoefficients writes the coefficients which differ from prev.
// Pass nil prev to write every coefficient. The grid dimensions must
// match the capability registers.
func UpdateMixerCoefficients(tr tcat.Transport, sections *Sections, caps *Caps, coefs, prev [][]uint16, timeout time.Duration) error {
	if err := checkMixerCaps(caps); err != nil {
		return err
	}
	if len(coefs) != int(caps.Mixer.OutputCount) {
		return tcat.SectionErrf(tcat.SectionNameMixer,
			"output count %d does not match capability %d", len(coefs), caps.Mixer.OutputCount)
	}

	raw := make([]byte, 4)
	for dst, row := range coefs {
		if len(row) != int(caps.Mixer.InputCount) {
			return tcat.SectionErrf(tcat.SectionNameMixer,
				"input count %d does not match capability %d", len(row), caps.Mixer.InputCount)
		}
		for src, coef := range row {
			if prev != nil && prev[dst][src] == coef {
				continue
			}
			pos := 4 * (dst*MixerMaxInputCount + src)
			putQuadlet(raw, uint32(coef))
			if err := writeSection(tr, sections.Mixer, mixerCoefficientsOffset+pos, raw, timeout); err != nil {
				return &tcat.SectionError{Section: tcat.SectionNameMixer, Err: err}
			}
		}
	}
	return nil
}
