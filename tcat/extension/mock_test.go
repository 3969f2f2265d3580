package extension

import (
	"fmt"
	"time"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// memTransport serves transactions from a byte image of the extension
// register space.
type memTransport struct {
	base   uint64
	image  []byte
	reads  int
	writes int
}

func newMemTransport(size int) *memTransport {
	return &memTransport{
		base:  tcat.BaseAddress + Offset,
		image: make([]byte, size),
	}
}

func (t *memTransport) slice(addr uint64, length int) ([]byte, error) {
	if addr < t.base || int(addr-t.base)+length > len(t.image) {
		return nil, fmt.Errorf("address range %#x..%#x outside image", addr, addr+uint64(length))
	}
	pos := int(addr - t.base)
	return t.image[pos : pos+length], nil
}

func (t *memTransport) Read(addr uint64, buf []byte, timeout time.Duration) error {
	t.reads++
	data, err := t.slice(addr, len(buf))
	if err != nil {
		return err
	}
	copy(buf, data)
	return nil
}

func (t *memTransport) Write(addr uint64, buf []byte, timeout time.Duration) error {
	t.writes++
	data, err := t.slice(addr, len(buf))
	if err != nil {
		return err
	}
	copy(data, buf)
	return nil
}
