package tcat

import "time"

// NicknameMaxSize is the size of the nickname field in bytes, including
// the terminating NUL.
const NicknameMaxSize = 64

// Offsets of fields within the global section.
const (
	globalOwnerOffset        = 0
	globalNotificationOffset = 8
	globalNicknameOffset     = 12
	globalClockConfigOffset  = 76
	globalEnableOffset       = 80
	globalClockStatusOffset  = 84
	globalExtStatusOffset    = 88
	globalCurrentRateOffset  = 92
	globalVersionOffset      = 96
	globalClockCapsOffset    = 100
	globalSourceNamesOffset  = 104
	globalSourceNamesSize    = 256
)

// globalMinSize is the size of the global section in the initial version
// of the protocol, before the version, capability, and source name fields
// were added.
const globalMinSize = 96

// ExternalSourceStates carries lock and slip detection for the external
// signal sources of the sampling clock.
type ExternalSourceStates struct {
	// Sources lists the external sources; the internal oscillator is
	// always excluded.
	Sources []ClockSource
	// Locked reports whether the corresponding source is locked. Changes
	// are notified.
	Locked []bool
	// Slipped reports whether a slip was detected for the corresponding
	// source since the last read. Changes are not notified.
	Slipped []bool
}

// GlobalParameters is the decoded content of the global section.
type GlobalParameters struct {
	// Owner is the node address to which notifications are sent.
	Owner uint64
	// LatestNotification is the latest notification sent to the owner.
	LatestNotification uint32
	// Nickname distinguishes units of the same model on one bus.
	Nickname string
	// ClockConfig is the configured media and sampling clock.
	ClockConfig ClockConfig
	// Enable reports whether packet streaming is enabled.
	Enable bool
	// ClockStatus is the status of the sampling clock.
	ClockStatus ClockStatus
	// ExternalSourceStates carries lock and slip states per source.
	ExternalSourceStates ExternalSourceStates
	// CurrentRate is the measured sampling rate in Hz.
	CurrentRate uint32
	// Version of the protocol, zero for the initial layout.
	Version uint32
	// AvailableRates lists the selectable media clock rates.
	AvailableRates []ClockRate
	// AvailableSources lists the selectable sampling clock sources.
	AvailableSources []ClockSource
	// ClockSourceLabels pairs sources with their reported names.
	ClockSourceLabels []ClockSourceLabel
}

// GlobalSpecification adjusts decode of the global section for models
// with broken capability registers. The zero value suits most devices.
type GlobalSpecification struct {
	// AvailableClockSourceOverride replaces the decoded list of selectable
	// clock sources. Some models report invalid capability bits.
	AvailableClockSourceOverride []ClockSource
	// ClockSourceLabelTable overrides the positions at which source names
	// appear in the name field. Some models report names at unexpected
	// positions.
	ClockSourceLabelTable []ClockSource
}

func (s GlobalSpecification) labelTable() []ClockSource {
	if s.ClockSourceLabelTable != nil {
		return s.ClockSourceLabelTable
	}
	return clockCapsSourceTable
}

// ParseGlobalParameters decodes the global section. The layout grew in a
// later protocol version; a section of exactly 96 bytes is decoded with
// hard-coded defaults for the fields it lacks.
func ParseGlobalParameters(raw []byte, spec GlobalSpecification) (*GlobalParameters, error) {
	if len(raw) < globalMinSize {
		return nil, sectionErr(SectionNameGlobal, "content size %d smaller than required %d", len(raw), globalMinSize)
	}

	params := &GlobalParameters{}

	if len(raw) > globalMinSize {
		if len(raw) < globalSourceNamesOffset+globalSourceNamesSize {
			return nil, sectionErr(SectionNameGlobal, "content size %d too small for extended layout", len(raw))
		}

		names := ParseLabels(raw[globalSourceNamesOffset : globalSourceNamesOffset+globalSourceNamesSize])

		labels := make([]ClockSourceLabel, 0, len(names))
		for i, src := range spec.labelTable() {
			if i >= len(names) {
				break
			}
			labels = append(labels, ClockSourceLabel{Source: src, Label: names[i]})
		}

		val := getQuadlet(raw[globalClockCapsOffset:])
		rateBits := uint16(val & 0x0000ffff)
		srcBits := uint16(val >> 16)

		for i, rate := range clockCapsRateTable {
			if rateBits&(1<<i) > 0 {
				params.AvailableRates = append(params.AvailableRates, rate)
			}
		}

		// The names of stream sources are always reported as "unused",
		// while the sources themselves appear in the external source
		// states. Synthesize names for them when the capability bit is
		// set.
		for i := range labels {
			src := labels[i].Source
			if !capsSourceBitSet(src, srcBits) {
				continue
			}
			if name, ok := streamSourceLabel(src); ok {
				labels[i].Label = name
			}
		}

		if spec.AvailableClockSourceOverride != nil {
			params.AvailableSources = append([]ClockSource{}, spec.AvailableClockSourceOverride...)
		} else {
			for i, src := range clockCapsSourceTable {
				if srcBits&(1<<i) == 0 {
					continue
				}
				// Stream sources are always detectable, no need to be
				// selectable.
				if src.IsStreamSource() {
					continue
				}
				if !hasUsableLabel(labels, src) {
					continue
				}
				params.AvailableSources = append(params.AvailableSources, src)
			}
		}

		kept := labels[:0]
		for _, label := range labels {
			if isUnused(label.Label) {
				continue
			}
			if !label.Source.IsStreamSource() && !containsSource(params.AvailableSources, label.Source) {
				continue
			}
			kept = append(kept, label)
		}
		params.ClockSourceLabels = kept

		params.Version = getQuadlet(raw[globalVersionOffset:])
	} else {
		params.Version = 0
		params.AvailableRates = []ClockRate{ClockRate44100, ClockRate48000}
		params.AvailableSources = []ClockSource{ClockSourceInternal}
		params.ClockSourceLabels = []ClockSourceLabel{
			{Source: ClockSourceArx1, Label: "Stream-1"},
			{Source: ClockSourceInternal, Label: "internal"},
		}
	}

	params.Owner = uint64(getQuadlet(raw[:4]))<<32 | uint64(getQuadlet(raw[4:8]))
	params.LatestNotification = getQuadlet(raw[globalNotificationOffset:])
	params.Nickname = ParseLabel(raw[globalNicknameOffset:globalClockConfigOffset])
	params.ClockConfig = parseClockConfig(raw[globalClockConfigOffset:])
	params.Enable = getBoolQuadlet(raw[globalEnableOffset:])
	params.ClockStatus = parseClockStatus(raw[globalClockStatusOffset:])

	val := getQuadlet(raw[globalExtStatusOffset:])
	lockedBits := uint16(val & 0x0000ffff)
	slippedBits := uint16(val >> 16)

	states := &params.ExternalSourceStates
	for i, src := range externalClockSourceTable {
		if !hasLabel(params.ClockSourceLabels, src) {
			continue
		}
		states.Sources = append(states.Sources, src)
		states.Locked = append(states.Locked, lockedBits&(1<<i) > 0)
		states.Slipped = append(states.Slipped, slippedBits&(1<<i) > 0)
	}

	params.CurrentRate = getQuadlet(raw[globalCurrentRateOffset:])

	return params, nil
}

func capsSourceBitSet(src ClockSource, srcBits uint16) bool {
	for i, s := range clockCapsSourceTable {
		if s == src {
			return srcBits&(1<<i) > 0
		}
	}
	return false
}

func isUnused(label string) bool {
	if len(label) != len("unused") {
		return false
	}
	lower := [6]byte{}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	return string(lower[:]) == "unused"
}

func hasUsableLabel(labels []ClockSourceLabel, src ClockSource) bool {
	for _, label := range labels {
		if label.Source == src && !isUnused(label.Label) {
			return true
		}
	}
	return false
}

func hasLabel(labels []ClockSourceLabel, src ClockSource) bool {
	for _, label := range labels {
		if label.Source == src {
			return true
		}
	}
	return false
}

func containsSource(sources []ClockSource, src ClockSource) bool {
	for _, s := range sources {
		if s == src {
			return true
		}
	}
	return false
}

// ReadGlobalParameters reads and decodes the whole global section.
func ReadGlobalParameters(tr Transport, section Section, spec GlobalSpecification, timeout time.Duration) (*GlobalParameters, error) {
	if err := checkSection(section, globalMinSize, SectionNameGlobal); err != nil {
		return nil, err
	}

	raw := make([]byte, section.Size)
	if err := Read(tr, section.Offset, raw, timeout); err != nil {
		return nil, &SectionError{Section: SectionNameGlobal, Err: err}
	}

	return ParseGlobalParameters(raw, spec)
}

// RefreshExternalSourceStates rereads the extended status register and
// updates the lock and slip states in place. The slip bits fluctuate
// without notification.
func RefreshExternalSourceStates(tr Transport, section Section, params *GlobalParameters, timeout time.Duration) error {
	if err := checkSection(section, globalMinSize, SectionNameGlobal); err != nil {
		return err
	}

	raw := make([]byte, 4)
	if err := Read(tr, section.Offset+globalExtStatusOffset, raw, timeout); err != nil {
		return &SectionError{Section: SectionNameGlobal, Err: err}
	}

	val := getQuadlet(raw)
	lockedBits := uint16(val & 0x0000ffff)
	slippedBits := uint16(val >> 16)

	states := &params.ExternalSourceStates
	pos := 0
	for i, src := range externalClockSourceTable {
		if pos >= len(states.Sources) || states.Sources[pos] != src {
			continue
		}
		states.Locked[pos] = lockedBits&(1<<i) > 0
		states.Slipped[pos] = slippedBits&(1<<i) > 0
		pos++
	}

	return nil
}

// UpdateNickname writes the nickname field of the global section. The
// name must leave room for the terminating NUL.
func UpdateNickname(tr Transport, section Section, nickname string, timeout time.Duration) error {
	if err := checkSection(section, globalMinSize, SectionNameGlobal); err != nil {
		return err
	}

	raw, err := BuildLabel(nickname, NicknameMaxSize)
	if err != nil {
		return &SectionError{Section: SectionNameGlobal, Err: err}
	}

	if err := Write(tr, section.Offset+globalNicknameOffset, raw, timeout); err != nil {
		return &SectionError{Section: SectionNameGlobal, Err: err}
	}

	return nil
}

// UpdateClockConfig writes the clock configuration register. The rate and
// source are validated against the available lists decoded from the
// capability registers before any transaction is issued.
func UpdateClockConfig(tr Transport, section Section, config ClockConfig, params *GlobalParameters, timeout time.Duration) error {
	if err := checkSection(section, globalMinSize, SectionNameGlobal); err != nil {
		return err
	}

	if !containsSource(params.AvailableSources, config.Source) {
		return sectionErr(SectionNameGlobal, "clock source %s not selectable: %w", config.Source, ErrFeatureUnavailable)
	}
	if !containsRate(params.AvailableRates, config.Rate) {
		return sectionErr(SectionNameGlobal, "clock rate %s not selectable: %w", config.Rate, ErrFeatureUnavailable)
	}

	raw := make([]byte, 4)
	buildClockConfig(config, raw)

	if err := Write(tr, section.Offset+globalClockConfigOffset, raw, timeout); err != nil {
		return &SectionError{Section: SectionNameGlobal, Err: err}
	}

	return nil
}

func containsRate(rates []ClockRate, rate ClockRate) bool {
	for _, r := range rates {
		if r == rate {
			return true
		}
	}
	return false
}

// UpdateStreamingEnable writes the streaming enable register.
func UpdateStreamingEnable(tr Transport, section Section, enable bool, timeout time.Duration) error {
	if err := checkSection(section, globalMinSize, SectionNameGlobal); err != nil {
		return err
	}

	raw := make([]byte, 4)
	putBoolQuadlet(raw, enable)

	if err := Write(tr, section.Offset+globalEnableOffset, raw, timeout); err != nil {
		return &SectionError{Section: SectionNameGlobal, Err: err}
	}

	return nil
}
