package extension

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// cmdTransport models the asynchronous command execution: the opcode
// register keeps the execute flag set for a number of polls before the
// device clears it.
type cmdTransport struct {
	opcodeAddr      uint64
	opcode          uint32
	ret             uint32
	pollsUntilClear int
	writes          int
}

func newCmdTransport(sections *Sections, polls int, ret uint32) *cmdTransport {
	return &cmdTransport{
		opcodeAddr:      tcat.BaseAddress + Offset + uint64(sections.Cmd.Offset),
		pollsUntilClear: polls,
		ret:             ret,
	}
}

func (t *cmdTransport) Read(addr uint64, buf []byte, timeout time.Duration) error {
	switch addr {
	case t.opcodeAddr:
		val := t.opcode
		if t.pollsUntilClear > 0 {
			t.pollsUntilClear--
		} else {
			val &^= cmdExecuteFlag
		}
		putQuadlet(buf, val)
		return nil
	case t.opcodeAddr + cmdReturnOffset:
		putQuadlet(buf, t.ret)
		return nil
	default:
		return fmt.Errorf("unexpected read at %#x", addr)
	}
}

func (t *cmdTransport) Write(addr uint64, buf []byte, timeout time.Duration) error {
	if addr != t.opcodeAddr {
		return fmt.Errorf("unexpected write at %#x", addr)
	}
	t.writes++
	t.opcode = getQuadlet(buf)
	return nil
}

func cmdTestCaps() *Caps {
	return &Caps{
		Router:  RouterCaps{IsExposed: true, MaximumEntryCount: 64},
		General: GeneralCaps{DynamicStreamFormat: true, StorageAvail: true},
	}
}

func TestOpcodeValue(t *testing.T) {
	tests := []struct {
		op   Opcode
		want uint32
	}{
		{Opcode{Kind: OpcodeNoOp}, 0x00000000},
		{Opcode{Kind: OpcodeLoadRouter, Rate: tcat.RateModeLow}, 0x00010001},
		{Opcode{Kind: OpcodeLoadRouter, Rate: tcat.RateModeMiddle}, 0x00020001},
		{Opcode{Kind: OpcodeLoadStreamConfig, Rate: tcat.RateModeHigh}, 0x00040002},
		{Opcode{Kind: OpcodeLoadRouterStreamConfig, Rate: tcat.RateModeLow}, 0x00010003},
		{Opcode{Kind: OpcodeStoreConfigToFlash, Rate: tcat.RateModeHigh}, 0x00000005},
	}
	for _, tt := range tests {
		if got := tt.op.value(); got != tt.want {
			t.Errorf("opcode %d rate %s value = %#08x, want %#08x",
				tt.op.Kind, tt.op.Rate, got, tt.want)
		}
	}
}

func TestInitiateCommand(t *testing.T) {
	sections := &Sections{Cmd: tcatSection(0x40, 0x08)}
	tr := newCmdTransport(sections, 2, 0xdeadbeef)

	op := Opcode{Kind: OpcodeLoadRouter, Rate: tcat.RateModeMiddle}
	ret, err := InitiateCommand(tr, sections, cmdTestCaps(), op, 0)
	if err != nil {
		t.Fatalf("InitiateCommand: %v", err)
	}
	if ret != 0xdeadbeef {
		t.Errorf("return register = %#08x, want 0xdeadbeef", ret)
	}
	if tr.writes != 1 {
		t.Errorf("write transactions = %d, want 1", tr.writes)
	}
	if want := uint32(cmdExecuteFlag | 0x00020001); tr.opcode != want {
		t.Errorf("written opcode = %#08x, want %#08x", tr.opcode, want)
	}
}

func TestInitiateCommandTimeout(t *testing.T) {
	sections := &Sections{Cmd: tcatSection(0x40, 0x08)}
	tr := newCmdTransport(sections, cmdPollCount+1, 0)

	_, err := InitiateCommand(tr, sections, cmdTestCaps(), Opcode{Kind: OpcodeNoOp}, 0)
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("InitiateCommand error = %v, want operation timeout", err)
	}
}

func TestInitiateCommandCapabilityGating(t *testing.T) {
	sections := &Sections{Cmd: tcatSection(0x40, 0x08)}

	tests := []struct {
		name string
		caps Caps
		op   Opcode
	}{
		{
			"router readonly",
			Caps{Router: RouterCaps{IsExposed: true, IsReadonly: true}},
			Opcode{Kind: OpcodeLoadRouter},
		},
		{
			"static stream format",
			Caps{},
			Opcode{Kind: OpcodeLoadStreamConfig},
		},
		{
			"both immutable",
			Caps{Router: RouterCaps{IsReadonly: true}},
			Opcode{Kind: OpcodeLoadRouterStreamConfig},
		},
		{
			"no storage",
			Caps{},
			Opcode{Kind: OpcodeStoreConfigToFlash},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newCmdTransport(sections, 0, 0)
			_, err := InitiateCommand(tr, sections, &tt.caps, tt.op, 0)
			if !errors.Is(err, tcat.ErrFeatureUnavailable) {
				t.Fatalf("InitiateCommand error = %v, want ErrFeatureUnavailable", err)
			}
			if tr.writes != 0 {
				t.Errorf("write transactions = %d, want 0", tr.writes)
			}
		})
	}
}
