package extension

import (
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// OpcodeKind is the operation requested through the command section.
type OpcodeKind uint16

const (
	// OpcodeNoOp does nothing.
	OpcodeNoOp OpcodeKind = 0x0000
	// OpcodeLoadRouter applies the router configuration for a rate mode.
	OpcodeLoadRouter OpcodeKind = 0x0001
	// OpcodeLoadStreamConfig applies the stream format configuration for
	// a rate mode.
	OpcodeLoadStreamConfig OpcodeKind = 0x0002
	// OpcodeLoadRouterStreamConfig applies both configurations for a rate
	// mode.
	OpcodeLoadRouterStreamConfig OpcodeKind = 0x0003
	// OpcodeLoadConfigFromFlash loads all configurations from on-board
	// flash memory.
	OpcodeLoadConfigFromFlash OpcodeKind = 0x0004
	// OpcodeStoreConfigToFlash stores all configurations to on-board
	// flash memory.
	OpcodeStoreConfigToFlash OpcodeKind = 0x0005
)

// Opcode is a command with its rate mode argument. The rate mode is only
// meaningful for the load opcodes.
type Opcode struct {
	Kind OpcodeKind
	Rate tcat.RateMode
}

const (
	cmdExecuteFlag = 0x80000000

	cmdRateLowFlag    = 0x00010000
	cmdRateMiddleFlag = 0x00020000
	cmdRateHighFlag   = 0x00040000
)

func rateModeFlag(mode tcat.RateMode) uint32 {
	switch mode {
	case tcat.RateModeMiddle:
		return cmdRateMiddleFlag
	case tcat.RateModeHigh:
		return cmdRateHighFlag
	default:
		return cmdRateLowFlag
	}
}

func (o Opcode) value() uint32 {
	val := uint32(o.Kind)
	switch o.Kind {
	case OpcodeLoadRouter, OpcodeLoadStreamConfig, OpcodeLoadRouterStreamConfig:
		val |= rateModeFlag(o.Rate)
	}
	return val
}

// checkOpcodeCaps verifies that the capability registers allow the
// requested operation.
func checkOpcodeCaps(op Opcode, caps *Caps) error {
	switch op.Kind {
	case OpcodeLoadRouter:
		if caps.Router.IsReadonly {
			return tcat.SectionErrf(tcat.SectionNameCmd,
				"router configuration is immutable: %w", tcat.ErrFeatureUnavailable)
		}
	case OpcodeLoadStreamConfig:
		if !caps.General.DynamicStreamFormat {
			return tcat.SectionErrf(tcat.SectionNameCmd,
				"stream format configuration is immutable: %w", tcat.ErrFeatureUnavailable)
		}
	case OpcodeLoadRouterStreamConfig:
		if caps.Router.IsReadonly && !caps.General.DynamicStreamFormat {
			return tcat.SectionErrf(tcat.SectionNameCmd,
				"any configuration is immutable: %w", tcat.ErrFeatureUnavailable)
		}
	case OpcodeLoadConfigFromFlash, OpcodeStoreConfigToFlash:
		if !caps.General.StorageAvail {
			return tcat.SectionErrf(tcat.SectionNameCmd,
				"storage is not available: %w", tcat.ErrFeatureUnavailable)
		}
	}
	return nil
}

const (
	cmdOpcodeOffset = 0x00
	cmdReturnOffset = 0x04

	cmdPollInterval = 50 * time.Millisecond
	cmdPollCount    = 10
)

// InitiateCommand writes the opcode with the execute flag set, polls
// until the device clears the flag, and returns the content of the
// return register. The command completes asynchronously on the device;
// polling gives up after ten attempts.
func InitiateCommand(tr tcat.Transport, sections *Sections, caps *Caps, op Opcode, timeout time.Duration) (uint32, error) {
	if err := checkOpcodeCaps(op, caps); err != nil {
		return 0, err
	}

	raw := make([]byte, 4)
	putQuadlet(raw, op.value()|cmdExecuteFlag)
	if err := writeSection(tr, sections.Cmd, cmdOpcodeOffset, raw, timeout); err != nil {
		return 0, &tcat.SectionError{Section: tcat.SectionNameCmd, Err: err}
	}

	for i := 0; i < cmdPollCount; i++ {
		time.Sleep(cmdPollInterval)

		if err := readSection(tr, sections.Cmd, cmdOpcodeOffset, raw, timeout); err != nil {
			return 0, &tcat.SectionError{Section: tcat.SectionNameCmd, Err: err}
		}
		if getQuadlet(raw)&cmdExecuteFlag != 0 {
			continue
		}

		if err := readSection(tr, sections.Cmd, cmdReturnOffset, raw, timeout); err != nil {
			return 0, &tcat.SectionError{Section: tcat.SectionNameCmd, Err: err}
		}
		return getQuadlet(raw), nil
	}

	return 0, tcat.SectionErrf(tcat.SectionNameCmd, "operation timeout")
}
