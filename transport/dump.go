// Package transport provides Transport implementations independent of the
// protocol packages: a read-only register dump snapshot, and a retrying
// wrapper around another Transport.
package transport

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrReadOnly is returned for write transactions on a snapshot.
var ErrReadOnly = errors.New("read-only transport")

// Dump serves read transactions from a register image captured from a
// device, typically a hexdump converted to a binary file. Writes fail.
type Dump struct {
	base  uint64
	image []byte
}

// NewDump wraps an image whose first byte sits at the given bus address.
func NewDump(base uint64, image []byte) *Dump {
	return &Dump{base: base, image: image}
}

// LoadDump reads a binary register image from a file.
func LoadDump(path string, base uint64) (*Dump, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewDump(base, image), nil
}

// Size reports the image size in bytes.
func (d *Dump) Size() int {
	return len(d.image)
}

// Read copies registers out of the image.
func (d *Dump) Read(addr uint64, buf []byte, timeout time.Duration) error {
	if addr < d.base {
		return fmt.Errorf("address %#x below dump base %#x", addr, d.base)
	}
	pos := int(addr - d.base)
	if pos+len(buf) > len(d.image) {
		return fmt.Errorf("address range %#x+%d beyond dump end", addr, len(buf))
	}
	copy(buf, d.image[pos:pos+len(buf)])
	return nil
}

// Write always fails; a snapshot has no device behind it.
func (d *Dump) Write(addr uint64, buf []byte, timeout time.Duration) error {
	return ErrReadOnly
}
